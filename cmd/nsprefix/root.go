package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"nsprefix/internal/config"
	"nsprefix/internal/errors"
	"nsprefix/internal/slogutil"
	"nsprefix/internal/version"
)

var (
	rootFlag    string
	verboseFlag int
	quietFlag   bool
)

var rootCmd = &cobra.Command{
	Use:   "nsprefix",
	Short: "nsprefix - relocate vendored PHP classes under a prefix namespace",
	Long: `nsprefix rewrites a PHP project and its vendored dependencies so that every
class belonging to a dependency lives under a vendor prefix namespace. Class
references in code, string literals and configuration documents are updated
to match, so the prefixed project can be shipped without clashing with the
versions its users install.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate(version.Full() + "\n")
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", "", "Project root (default: current directory)")
	rootCmd.PersistentFlags().CountVarP(&verboseFlag, "verbose", "v", "Increase log output (-v info, -vv debug)")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress log output")
}

// getRoot returns the absolute project root.
func getRoot() (string, error) {
	root := rootFlag
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		root = wd
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", errors.New(errors.IOError, fmt.Sprintf("project root %s cannot be read", abs), err)
	}
	if !info.IsDir() {
		return "", errors.New(errors.IOError, fmt.Sprintf("project root %s is not a directory", abs), nil)
	}
	return abs, nil
}

// loadConfig loads and validates the configuration of root.
func loadConfig(root string) (*config.Config, error) {
	cfg, err := config.LoadConfig(root)
	if err != nil {
		return nil, errors.New(errors.ConfigInvalid, "configuration cannot be loaded", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.New(errors.ConfigInvalid, err.Error(), err)
	}
	return cfg, nil
}

// cliLevel is nil unless -v or -q was given.
func cliLevel() *slog.Level {
	if verboseFlag == 0 && !quietFlag {
		return nil
	}
	level := slogutil.LevelFromVerbosity(verboseFlag, quietFlag)
	return &level
}

// newLogger builds the command logger. The returned closer releases the
// log file.
func newLogger(root string, cfg *config.Config, stderr io.Writer) (*slog.Logger, io.Closer, error) {
	factory := slogutil.NewLoggerFactory(root, cfg, cliLevel())
	logger, err := factory.CLILogger(stderr)
	if err != nil {
		return nil, nil, errors.New(errors.IOError, "log file cannot be opened", err)
	}
	return logger, factory, nil
}

// newContext is cancelled on interrupt.
func newContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}
