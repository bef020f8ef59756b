package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"nsprefix/internal/config"
	"nsprefix/internal/errors"
	"nsprefix/internal/manifest"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the configuration and an example manifest",
	Long: `Create .nsprefix/config.json with the default configuration and an
example nsprefix.toml manifest in the project root. Existing files are kept
unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite existing files")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	root, err := getRoot()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	configPath := filepath.Join(root, config.Dir, "config.json")
	if exists(configPath) && !initForce {
		fmt.Fprintf(out, "Configuration already exists at %s\n", configPath)
	} else {
		if err := config.DefaultConfig().Save(root); err != nil {
			return errors.New(errors.IOError, "failed to write configuration", err)
		}
		fmt.Fprintf(out, "Configuration written to %s\n", configPath)
	}

	manifestPath := filepath.Join(root, manifest.DefaultFile)
	if exists(manifestPath) && !initForce {
		fmt.Fprintf(out, "Manifest already exists at %s\n", manifestPath)
	} else {
		if err := manifest.Write(manifestPath, manifest.Example()); err != nil {
			return errors.New(errors.IOError, "failed to write manifest", err)
		}
		fmt.Fprintf(out, "Example manifest written to %s\n", manifestPath)
	}

	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintln(out, "  1. List your dependencies and extensions in", manifest.DefaultFile)
	fmt.Fprintln(out, "  2. Run 'composer dump-autoload --classmap-authoritative'")
	fmt.Fprintln(out, "  3. Run 'nsprefix prefix --dry-run' to preview the changes")
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
