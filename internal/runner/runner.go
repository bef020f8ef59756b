// Package runner rewrites every selected file of a project and records the
// changes in the journal.
package runner

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"nsprefix/internal/configdoc"
	"nsprefix/internal/journal"
	"nsprefix/internal/policy"
	"nsprefix/internal/rewriter"
	"nsprefix/internal/walker"
)

// Options configures a run.
type Options struct {
	Root   string
	Groups []walker.Group

	// Policy carries the membership set and prefixes; each group replaces
	// its force-include and force-exclude lists.
	Policy *policy.Policy

	// PHP is the rewriter for PHP files. Its policy is replaced per group.
	PHP *rewriter.Rewriter

	// TypeKeys and Sigil configure the document rewriter.
	TypeKeys []string
	Sigil    string

	// Workers bounds the files processed concurrently; values below 1 mean
	// one.
	Workers int

	// DryRun reports changes without writing or journaling them.
	DryRun bool

	// KeepGoing records failing files and carries on instead of aborting.
	KeepGoing bool

	// Journal is optional.
	Journal *journal.Store

	Logger *slog.Logger
}

// Failure is a file that could not be rewritten.
type Failure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// Summary describes a finished run.
type Summary struct {
	RunID    string        `json:"runId,omitempty"`
	DryRun   bool          `json:"dryRun"`
	Scanned  int           `json:"scanned"` // includes failed files
	Changed  []string      `json:"changed"`
	Failures []Failure     `json:"failures,omitempty"`
	Duration time.Duration `json:"duration"`
}

// settings are stored with the run.
type settings struct {
	VendorPrefix  string   `json:"vendorPrefix"`
	RootNamespace string   `json:"rootNamespace"`
	Members       int      `json:"members"`
	Groups        []string `json:"groups"`
}

// Run processes every group in order. Files within a group may be
// processed concurrently. The first failure aborts the run unless
// KeepGoing is set; the returned summary is valid in both cases.
func Run(ctx context.Context, opts Options) (*Summary, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Policy == nil {
		opts.Policy = policy.New("", "", nil, nil, nil)
	}
	if opts.PHP == nil {
		opts.PHP = rewriter.New(rewriter.Options{Policy: opts.Policy})
	}

	start := time.Now()
	r := &run{opts: opts, summary: &Summary{DryRun: opts.DryRun}}

	if opts.Journal != nil && !opts.DryRun {
		s := settings{
			VendorPrefix:  opts.Policy.VendorPrefix,
			RootNamespace: opts.Policy.RootNamespace,
			Members:       len(opts.Policy.Membership),
		}
		for _, g := range opts.Groups {
			s.Groups = append(s.Groups, g.Name)
		}
		rec, err := journal.NewRun(opts.Root, s)
		if err != nil {
			return nil, err
		}
		if err := opts.Journal.CreateRun(rec); err != nil {
			return nil, err
		}
		r.record = rec
		r.summary.RunID = rec.ID
	}

	var err error
	for _, g := range opts.Groups {
		if err = r.group(ctx, g); err != nil {
			break
		}
	}
	r.summary.Duration = time.Since(start)
	sort.Strings(r.summary.Changed)
	sort.Slice(r.summary.Failures, func(i, j int) bool { return r.summary.Failures[i].Path < r.summary.Failures[j].Path })

	if r.record != nil {
		if err != nil {
			r.record.MarkFailed(err)
		} else {
			r.record.MarkCompleted(r.summary.Scanned, len(r.summary.Changed), len(r.summary.Failures))
		}
		if uerr := opts.Journal.UpdateRun(r.record); uerr != nil && err == nil {
			err = uerr
		}
	}

	opts.Logger.Info("Prefixing finished",
		"scanned", r.summary.Scanned,
		"changed", len(r.summary.Changed),
		"failed", len(r.summary.Failures),
		"dryRun", opts.DryRun,
		"duration", r.summary.Duration.Round(time.Millisecond),
	)
	return r.summary, err
}

type run struct {
	opts    Options
	record  *journal.Run
	mu      sync.Mutex
	summary *Summary
}

func (r *run) group(ctx context.Context, g walker.Group) error {
	pol := r.opts.Policy.WithNamespaces(g.ForceInclude, g.ForceExclude)
	php := r.opts.PHP.WithPolicy(pol)
	docs := configdoc.NewRewriter(pol, r.opts.TypeKeys, r.opts.Sigil)

	r.opts.Logger.Info("Prefixing group", "group", g.Name, "files", len(g.Files))

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(r.opts.Workers)
	for _, f := range g.Files {
		if gctx.Err() != nil {
			break
		}
		eg.Go(func() error {
			err := r.file(gctx, g.Name, f, php, docs)
			if err == nil {
				return nil
			}
			r.mu.Lock()
			r.summary.Failures = append(r.summary.Failures, Failure{Path: f.Rel, Error: err.Error()})
			r.mu.Unlock()
			if r.opts.KeepGoing {
				r.opts.Logger.Warn("Skipping file", "path", f.Rel, "error", err)
				return nil
			}
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// file rewrites one file. Content is read whole, transformed in memory and
// written only when it differs.
func (r *run) file(ctx context.Context, group string, f walker.File, php *rewriter.Rewriter, docs *configdoc.Rewriter) error {
	r.mu.Lock()
	r.summary.Scanned++
	r.mu.Unlock()

	var original, rewritten []byte
	switch f.Kind {
	case walker.Document:
		res, err := docs.RewriteFile(f.Path)
		if err != nil {
			return err
		}
		original, rewritten = res.Original, res.Rewritten
	default:
		res, err := php.RewriteFile(ctx, f.Path)
		if err != nil {
			return err
		}
		original, rewritten = res.Original, res.Rewritten
	}

	if bytes.Equal(original, rewritten) {
		r.opts.Logger.Debug("Unchanged", "path", f.Rel)
		return nil
	}
	r.opts.Logger.Debug("Prefixing", "path", f.Rel, "kind", f.Kind)

	if !r.opts.DryRun {
		if r.record != nil {
			if err := r.opts.Journal.RecordFile(r.record.ID, f.Rel, group, f.Kind.String(), original, rewritten); err != nil {
				return err
			}
		}
		if err := writeFile(f.Path, rewritten); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.Rel, err)
		}
	}

	r.mu.Lock()
	r.summary.Changed = append(r.summary.Changed, f.Rel)
	r.mu.Unlock()
	return nil
}

// writeFile keeps the file mode so executables stay executable.
func writeFile(path string, data []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, info.Mode().Perm())
}
