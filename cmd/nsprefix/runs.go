package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"nsprefix/internal/errors"
	"nsprefix/internal/journal"
)

var (
	runsFormat string
	runsLimit  int
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded prefixing runs",
	Long: `List the runs recorded in the journal, newest first.

Examples:
  nsprefix runs
  nsprefix runs --limit 5 --format json
  nsprefix runs show 3f2a9c`,
	Args: cobra.NoArgs,
	RunE: runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the files a run changed",
	Long: `Show a run and every file it changed. The id may be abbreviated to any
unique prefix.`,
	Args: cobra.ExactArgs(1),
	RunE: runRunsShow,
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Forget a run and its snapshots",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsDelete,
}

func init() {
	runsCmd.PersistentFlags().StringVar(&runsFormat, "format", "human", "Output format (json, human)")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "Maximum runs to list")

	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsDeleteCmd)
	rootCmd.AddCommand(runsCmd)
}

// RunsResponse is the output of "runs".
type RunsResponse struct {
	Runs []*journal.Run `json:"runs"`
}

// RunDetail is the output of "runs show".
type RunDetail struct {
	Run     *journal.Run    `json:"run"`
	Entries []journal.Entry `json:"entries"`
}

// withJournal opens the project's journal for a read or restore command.
func withJournal(cmd *cobra.Command, fn func(*journal.Store) error) error {
	root, err := getRoot()
	if err != nil {
		return err
	}
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	logger, closer, err := newLogger(root, cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closer.Close()

	store, err := openJournal(root, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func findRun(store *journal.Store, id string) (*journal.Run, error) {
	run, err := store.GetRun(id)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, errors.New(errors.RunNotFound, fmt.Sprintf("run %s not found", id), nil)
	}
	return run, nil
}

func printResponse(cmd *cobra.Command, resp any, format string) error {
	output, err := FormatResponse(resp, OutputFormat(format))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), output)
	return nil
}

func runRunsList(cmd *cobra.Command, args []string) error {
	return withJournal(cmd, func(store *journal.Store) error {
		runs, err := store.ListRuns(runsLimit)
		if err != nil {
			return err
		}
		return printResponse(cmd, &RunsResponse{Runs: runs}, runsFormat)
	})
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	return withJournal(cmd, func(store *journal.Store) error {
		run, err := findRun(store, args[0])
		if err != nil {
			return err
		}
		entries, err := store.Entries(run.ID)
		if err != nil {
			return err
		}
		return printResponse(cmd, &RunDetail{Run: run, Entries: entries}, runsFormat)
	})
}

func runRunsDelete(cmd *cobra.Command, args []string) error {
	return withJournal(cmd, func(store *journal.Store) error {
		run, err := findRun(store, args[0])
		if err != nil {
			return err
		}
		if err := store.DeleteRun(run.ID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", run.ID)
		return nil
	})
}
