package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"nsprefix/internal/configdoc"
	"nsprefix/internal/errors"
	"nsprefix/internal/paths"
)

var rewriteWrite bool

var rewriteCmd = &cobra.Command{
	Use:   "rewrite <file>",
	Short: "Rewrite a single PHP file or configuration document",
	Long: `Rewrite one file with the project's policy and print the result.

PHP files are rewritten with the rules of the group the file belongs to:
files under vendor/<extension>/ keep the extension's not-prefixed
namespaces. YAML and TOML documents have their class names and service
references rewritten.

With --write the file is replaced in place. Single-file rewrites are not
recorded in the journal.

Examples:
  nsprefix rewrite src/Rule.php
  nsprefix rewrite conf/services.yaml --write`,
	Args: cobra.ExactArgs(1),
	RunE: runRewrite,
}

func init() {
	rewriteCmd.Flags().BoolVarP(&rewriteWrite, "write", "w", false, "Write the result back to the file")
	rootCmd.AddCommand(rewriteCmd)
}

func runRewrite(cmd *cobra.Command, args []string) error {
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

	path := paths.Resolve(root, args[0])
	if !paths.IsWithin(path, root) {
		return errors.New(errors.IOError, fmt.Sprintf("%s is outside the project root %s", args[0], root), nil)
	}
	rel, err := paths.Canonicalize(path, root)
	if err != nil {
		return errors.New(errors.IOError, fmt.Sprintf("cannot resolve %s", args[0]), err)
	}
	pol := p.policyFor(rel)

	var original, rewritten []byte
	if p.isDocument(path) {
		res, err := configdoc.NewRewriter(pol, cfg.Documents.TypeKeys, cfg.Documents.Sigil).RewriteFile(path)
		if err != nil {
			return err
		}
		original, rewritten = res.Original, res.Rewritten
	} else {
		res, err := p.phpRewriter().WithPolicy(pol).RewriteFile(ctx, path)
		if err != nil {
			return err
		}
		original, rewritten = res.Original, res.Rewritten
	}

	if !rewriteWrite {
		_, err := cmd.OutOrStdout().Write(rewritten)
		return err
	}
	if string(original) == string(rewritten) {
		logger.Info("Unchanged", "path", rel)
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, rewritten, info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write %s: %w", rel, err)
	}
	logger.Info("Rewrote file", "path", rel)
	return nil
}
