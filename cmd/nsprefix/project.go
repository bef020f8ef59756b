package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"nsprefix/internal/classmap"
	"nsprefix/internal/config"
	"nsprefix/internal/configdoc"
	"nsprefix/internal/errors"
	"nsprefix/internal/journal"
	"nsprefix/internal/manifest"
	"nsprefix/internal/paths"
	"nsprefix/internal/phptoken"
	"nsprefix/internal/policy"
	"nsprefix/internal/rewriter"
)

// project is everything a command needs to rewrite files of one root.
type project struct {
	root     string
	cfg      *config.Config
	manifest *manifest.Manifest
	policy   *policy.Policy
	logger   *slog.Logger
}

// openProject loads the manifest and the classmap and derives the base
// policy. Group-specific namespace overrides are applied later.
func openProject(root string, cfg *config.Config, logger *slog.Logger) (*project, error) {
	m, err := manifest.Load(root, cfg.Manifest)
	if err != nil {
		return nil, err
	}

	cm, err := classmap.Load(paths.Resolve(root, cfg.Classmap))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ClassmapInvalid, fmt.Sprintf("classmap %s not found", cfg.Classmap), err)
		}
		return nil, err
	}
	members := cm.Membership(m.Dependencies)

	logger.Info("Loaded project",
		"root", root,
		"dependencies", len(m.Dependencies),
		"extensions", len(m.Extensions),
		"classes", len(cm),
		"members", len(members),
	)

	return &project{
		root:     root,
		cfg:      cfg,
		manifest: m,
		policy:   policy.New(cfg.VendorPrefix, cfg.RootNamespace, members, nil, nil),
		logger:   logger,
	}, nil
}

// phpRewriter builds the PHP rewriter. Grammar validation is pooled so the
// rewriter can be shared by parallel workers.
func (p *project) phpRewriter() *rewriter.Rewriter {
	opts := rewriter.Options{
		Policy:          p.policy,
		RewriteComments: p.cfg.RewriteComments,
	}
	if p.cfg.SyntaxCheck {
		if phptoken.IsAvailable() {
			opts.Validator = phptoken.NewValidatorPool()
		} else {
			p.logger.Debug("Grammar validation not compiled in; using lexer checks only")
		}
	}
	return rewriter.New(opts)
}

// policyFor returns the policy for a single file: the extension's
// exclusions under vendor/<extension>/, the force-prefix list elsewhere.
func (p *project) policyFor(rel string) *policy.Policy {
	for _, ext := range p.manifest.Extensions {
		if strings.HasPrefix(rel, "vendor/"+ext.Package+"/") {
			return p.policy.WithNamespaces(nil, ext.NotPrefixed)
		}
	}
	return p.policy.WithNamespaces(p.manifest.ForcePrefix, nil)
}

// isDocument reports whether path is a configuration document this
// project rewrites.
func (p *project) isDocument(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if !configdoc.Supported(ext) {
		return false
	}
	for _, e := range p.cfg.Documents.Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// openJournal opens the journal database of root.
func openJournal(root string, cfg *config.Config, logger *slog.Logger) (*journal.Store, error) {
	path := paths.Resolve(root, cfg.Journal.Path)
	store, err := journal.OpenStore(path, logger)
	if err != nil {
		return nil, errors.New(errors.IOError, fmt.Sprintf("journal %s cannot be opened", path), err)
	}
	return store, nil
}
