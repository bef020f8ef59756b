// Package walker selects the files a prefixing run rewrites.
package walker

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"nsprefix/internal/manifest"
)

// FileKind tells the runner which rewriter handles a file.
type FileKind uint8

const (
	PHP FileKind = iota
	Document
)

func (k FileKind) String() string {
	if k == Document {
		return "document"
	}
	return "php"
}

// File is one candidate file.
type File struct {
	Path string // absolute
	Rel  string // relative to the root, slash separated
	Kind FileKind
}

// Group is a set of files rewritten with the same namespace overrides.
type Group struct {
	Name         string
	Files        []File
	ForceInclude []string
	ForceExclude []string
}

// CoreGroup names the group of first-party and dependency files.
const CoreGroup = "core"

// vcsDirs are never descended into.
var vcsDirs = map[string]bool{
	".git": true, ".svn": true, ".hg": true, ".bzr": true, "_darcs": true, "CVS": true,
	".nsprefix": true,
}

// Options configures Walk.
type Options struct {
	Root     string
	Manifest *manifest.Manifest

	// DocumentExtensions select configuration documents, e.g. ".yaml".
	DocumentExtensions []string

	// Skip lists root-relative files never selected, such as the manifest.
	Skip []string

	Logger *slog.Logger
}

// Walk returns the core group followed by one group per extension package.
// Core files are PHP files, manifest bins and documents outside vendor/ or
// inside vendor/<dependency>/. Extension groups hold every PHP file under
// vendor/<package>/ and exclude the extension's not-prefixed namespaces.
func Walk(ctx context.Context, opts Options) ([]Group, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	m := opts.Manifest
	if m == nil {
		m = &manifest.Manifest{Version: 1}
	}
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, err
	}

	deps := make(map[string]bool, len(m.Dependencies))
	for _, d := range m.Dependencies {
		deps[strings.Trim(d, "/")] = true
	}
	for _, e := range m.Extensions {
		delete(deps, e.Package)
	}
	bins := make(map[string]bool, len(m.Bins))
	for _, b := range m.Bins {
		bins[filepath.ToSlash(filepath.Clean(b))] = true
	}
	docExts := make(map[string]bool, len(opts.DocumentExtensions))
	for _, e := range opts.DocumentExtensions {
		docExts[strings.ToLower(e)] = true
	}

	skip := make(map[string]bool, len(opts.Skip))
	for _, s := range opts.Skip {
		skip[filepath.ToSlash(filepath.Clean(s))] = true
	}

	core := Group{Name: CoreGroup, ForceInclude: m.ForcePrefix}
	err = walk(ctx, root, root, func(f File) {
		if skip[f.Rel] {
			return
		}
		pkg, vendored := vendorPackage(f.Rel)
		if vendored && !deps[pkg] {
			return
		}
		switch {
		case strings.EqualFold(filepath.Ext(f.Rel), ".php"), bins[f.Rel]:
			f.Kind = PHP
		case docExts[strings.ToLower(filepath.Ext(f.Rel))]:
			f.Kind = Document
		default:
			return
		}
		core.Files = append(core.Files, f)
	}, func(rel string) bool {
		rest, ok := strings.CutPrefix(rel, "vendor/")
		if !ok {
			return true
		}
		parts := strings.SplitN(rest, "/", 3)
		if len(parts) == 1 {
			return hasPackageUnder(deps, parts[0])
		}
		return deps[parts[0]+"/"+parts[1]]
	})
	if err != nil {
		return nil, err
	}
	opts.Logger.Debug("Selected core files", "count", len(core.Files))

	groups := []Group{core}
	for _, ext := range m.Extensions {
		dir := filepath.Join(root, "vendor", filepath.FromSlash(ext.Package))
		g := Group{Name: ext.Package, ForceExclude: ext.NotPrefixed}
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			opts.Logger.Warn("Extension package not installed", "package", ext.Package)
			groups = append(groups, g)
			continue
		}
		err := walk(ctx, root, dir, func(f File) {
			if strings.EqualFold(filepath.Ext(f.Rel), ".php") {
				g.Files = append(g.Files, f)
			}
		}, nil)
		if err != nil {
			return nil, err
		}
		opts.Logger.Debug("Selected extension files", "package", ext.Package, "count", len(g.Files))
		groups = append(groups, g)
	}
	return groups, nil
}

// walk visits the regular files under dir. descend, when set, prunes
// directories by their root-relative path.
func walk(ctx context.Context, root, dir string, visit func(File), descend func(rel string) bool) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if rel == "." {
				return nil
			}
			if vcsDirs[d.Name()] || (descend != nil && !descend(rel)) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			visit(File{Path: path, Rel: rel})
		}
		return nil
	})
}

// vendorPackage returns the "vendor/name" package of a path under vendor/.
// A file directly in vendor/ or one level below belongs to no package.
func vendorPackage(rel string) (string, bool) {
	rest, ok := strings.CutPrefix(rel, "vendor/")
	if !ok {
		return "", false
	}
	parts := strings.SplitN(rest, "/", 3)
	if len(parts) < 3 {
		return "", true
	}
	return parts[0] + "/" + parts[1], true
}

// hasPackageUnder reports whether a dependency is published by vendor.
func hasPackageUnder(deps map[string]bool, vendor string) bool {
	prefix := vendor + "/"
	for d := range deps {
		if strings.HasPrefix(d, prefix) {
			return true
		}
	}
	return false
}
