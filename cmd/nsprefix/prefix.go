package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"nsprefix/internal/configdoc"
	"nsprefix/internal/runner"
	"nsprefix/internal/walker"
)

var (
	prefixDryRun    bool
	prefixKeepGoing bool
	prefixWorkers   int
	prefixNoJournal bool
	prefixFormat    string
)

var prefixCmd = &cobra.Command{
	Use:   "prefix",
	Short: "Relocate dependency classes under the vendor prefix",
	Long: `Rewrite every selected file of the project in place.

Core files are the project's PHP files, the manifest's bins and its
configuration documents, plus everything under vendor/<dependency>/.
Each extension package listed in the manifest is then rewritten on its own,
leaving its not-prefixed namespaces alone.

Every run that changes files is recorded in the journal and can be undone
with 'nsprefix restore'.

Examples:
  nsprefix prefix --dry-run
  nsprefix prefix --workers 8 -v
  nsprefix prefix --keep-going --format json`,
	Args: cobra.NoArgs,
	RunE: runPrefix,
}

func init() {
	prefixCmd.Flags().BoolVar(&prefixDryRun, "dry-run", false, "Report the files that would change without writing them")
	prefixCmd.Flags().BoolVar(&prefixKeepGoing, "keep-going", false, "Report failing files and continue instead of aborting")
	prefixCmd.Flags().IntVar(&prefixWorkers, "workers", 0, "Files rewritten in parallel (default: config workers)")
	prefixCmd.Flags().BoolVar(&prefixNoJournal, "no-journal", false, "Do not record the run")
	prefixCmd.Flags().StringVar(&prefixFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(prefixCmd)
}

func runPrefix(cmd *cobra.Command, args []string) error {
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

	ctx, cancel := newContext()
	defer cancel()

	p, err := openProject(root, cfg, logger)
	if err != nil {
		return err
	}

	var docExts []string
	for _, ext := range cfg.Documents.Extensions {
		if configdoc.Supported(ext) {
			docExts = append(docExts, ext)
		} else {
			logger.Warn("Ignoring unsupported document extension", "extension", ext)
		}
	}

	groups, err := walker.Walk(ctx, walker.Options{
		Root:               root,
		Manifest:           p.manifest,
		DocumentExtensions: docExts,
		Skip:               []string{cfg.Manifest},
		Logger:             logger,
	})
	if err != nil {
		return err
	}

	opts := runner.Options{
		Root:      root,
		Groups:    groups,
		Policy:    p.policy,
		PHP:       p.phpRewriter(),
		TypeKeys:  cfg.Documents.TypeKeys,
		Sigil:     cfg.Documents.Sigil,
		Workers:   cfg.Workers,
		DryRun:    prefixDryRun,
		KeepGoing: prefixKeepGoing,
		Logger:    logger,
	}
	if prefixWorkers > 0 {
		opts.Workers = prefixWorkers
	}
	if cfg.Journal.Enabled && !prefixNoJournal && !prefixDryRun {
		store, err := openJournal(root, cfg, logger)
		if err != nil {
			return err
		}
		defer store.Close()
		opts.Journal = store
	}

	summary, runErr := runner.Run(ctx, opts)
	if summary != nil {
		output, err := FormatResponse(summary, OutputFormat(prefixFormat))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), output)
	}
	if runErr != nil {
		return runErr
	}
	if len(summary.Failures) > 0 {
		return fmt.Errorf("%d file(s) could not be rewritten", len(summary.Failures))
	}
	return nil
}
