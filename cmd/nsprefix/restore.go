package main

import (
	"github.com/spf13/cobra"

	"nsprefix/internal/journal"
)

var (
	restoreForce  bool
	restoreFormat string
)

var restoreCmd = &cobra.Command{
	Use:   "restore <run-id>",
	Short: "Undo a prefixing run",
	Long: `Write back the original contents of every file a run changed.

Files edited since the run are conflicts: nothing is restored unless
--force is given, in which case those edits are overwritten too.

Examples:
  nsprefix restore 3f2a9c
  nsprefix restore 3f2a9c --force`,
	Args: cobra.ExactArgs(1),
	RunE: runRestore,
}

func init() {
	restoreCmd.Flags().BoolVar(&restoreForce, "force", false, "Overwrite files changed since the run")
	restoreCmd.Flags().StringVar(&restoreFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(restoreCmd)
}

func runRestore(cmd *cobra.Command, args []string) error {
	ctx, cancel := newContext()
	defer cancel()

	return withJournal(cmd, func(store *journal.Store) error {
		result, err := store.Restore(ctx, args[0], restoreForce)
		if result != nil {
			if perr := printResponse(cmd, result, restoreFormat); perr != nil && err == nil {
				err = perr
			}
		}
		return err
	})
}
