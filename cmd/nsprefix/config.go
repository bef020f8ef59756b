package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"nsprefix/internal/config"
)

var configFormat string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect nsprefix configuration",
	Long:  "View the configuration stored in .nsprefix/config.json",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Display the configuration after defaults and environment overrides.

Examples:
  nsprefix config show
  nsprefix config show --format json`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configEnvCmd = &cobra.Command{
	Use:   "env",
	Short: "List supported environment variables",
	Args:  cobra.NoArgs,
	Run:   runConfigEnv,
}

func init() {
	configShowCmd.Flags().StringVar(&configFormat, "format", "human", "Output format (json, human)")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEnvCmd)
	rootCmd.AddCommand(configCmd)
}

// envVars documents the NSPREFIX_* overrides.
var envVars = []struct {
	Name, Field string
}{
	{"NSPREFIX_VENDOR_PREFIX", "vendorPrefix"},
	{"NSPREFIX_ROOT_NAMESPACE", "rootNamespace"},
	{"NSPREFIX_WORKERS", "workers"},
	{"NSPREFIX_LOG_LEVEL", "logging.level"},
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	root, err := getRoot()
	if err != nil {
		return err
	}
	cfg, err := config.LoadConfig(root)
	if err != nil {
		return err
	}
	output, err := FormatResponse(cfg, OutputFormat(configFormat))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), output)
	if verr := cfg.Validate(); verr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "\nWarning: %v\n", verr)
	}
	return nil
}

func runConfigEnv(cmd *cobra.Command, args []string) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Supported environment variables:")
	names := make([]string, 0, len(envVars))
	for _, v := range envVars {
		value := "(unset)"
		if env, ok := os.LookupEnv(v.Name); ok {
			value = env
		}
		names = append(names, fmt.Sprintf("  %-26s %-15s %s", v.Name, v.Field, value))
	}
	sort.Strings(names)
	fmt.Fprintln(out, strings.Join(names, "\n"))
}
