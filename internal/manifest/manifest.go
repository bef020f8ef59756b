// Package manifest loads nsprefix.toml, the list of packages whose classes
// are relocated and the namespace overrides applied to them.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"nsprefix/internal/errors"
	"nsprefix/internal/paths"
)

// DefaultFile is the manifest filename looked up in the project root.
const DefaultFile = "nsprefix.toml"

// InstalledFile is composer's record of installed packages.
const InstalledFile = "vendor/composer/installed.json"

// Manifest is the root structure of nsprefix.toml.
type Manifest struct {
	// Version is the schema version
	Version int `toml:"version"`

	// Dependencies are composer package names (vendor/name) whose classes are
	// relocated. When empty, the packages recorded in
	// vendor/composer/installed.json are used.
	Dependencies []string `toml:"dependencies,omitempty"`

	// ForcePrefix namespaces are relocated in the core files even when the
	// classmap does not list them.
	ForcePrefix []string `toml:"forcePrefix,omitempty"`

	// Bins are extension-less PHP executables, relative to the root.
	Bins []string `toml:"bins,omitempty"`

	// Extensions are processed separately with their own exclusions.
	Extensions []Extension `toml:"extension,omitempty"`
}

// Extension is a package rewritten after the core files. Names under its
// NotPrefixed namespaces keep their original location inside its files.
type Extension struct {
	Package     string   `toml:"package"`
	NotPrefixed []string `toml:"notPrefixed,omitempty"`
}

// Parse reads and validates a manifest file.
func Parse(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, errors.New(errors.ManifestInvalid, fmt.Sprintf("failed to parse %s", path), err)
	}
	if m.Version < 1 {
		m.Version = 1
	}
	m.normalize()
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Load reads the manifest at file (relative to root unless absolute). A
// missing file yields an empty manifest. Dependencies fall back to the
// installed packages.
func Load(root, file string) (*Manifest, error) {
	if file == "" {
		file = DefaultFile
	}
	file = paths.Resolve(root, file)

	m := &Manifest{Version: 1}
	if _, err := os.Stat(file); err == nil {
		if m, err = Parse(file); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if len(m.Dependencies) == 0 {
		deps, err := InstalledPackages(root)
		if err != nil {
			return nil, err
		}
		m.Dependencies = deps
	}
	return m, nil
}

// Validate checks package names and namespaces.
func (m *Manifest) Validate() error {
	invalid := func(format string, args ...any) error {
		return errors.New(errors.ManifestInvalid, fmt.Sprintf(format, args...), nil)
	}
	for _, dep := range m.Dependencies {
		if !validPackage(dep) {
			return invalid("dependency %q is not a vendor/name package", dep)
		}
	}
	seen := map[string]bool{}
	for _, ext := range m.Extensions {
		if !validPackage(ext.Package) {
			return invalid("extension package %q is not a vendor/name package", ext.Package)
		}
		if seen[ext.Package] {
			return invalid("extension %q listed twice", ext.Package)
		}
		seen[ext.Package] = true
	}
	for _, bin := range m.Bins {
		if filepath.IsAbs(bin) || strings.HasPrefix(filepath.Clean(bin), "..") {
			return invalid("bin %q must be relative to the project root", bin)
		}
	}
	return nil
}

// normalize turns namespaces into "Vendor\" prefixes.
func (m *Manifest) normalize() {
	m.ForcePrefix = normalizeNamespaces(m.ForcePrefix)
	for i := range m.Extensions {
		m.Extensions[i].NotPrefixed = normalizeNamespaces(m.Extensions[i].NotPrefixed)
	}
}

func normalizeNamespaces(ns []string) []string {
	out := make([]string, 0, len(ns))
	for _, n := range ns {
		n = strings.Trim(strings.TrimSpace(n), `\`)
		if n != "" {
			out = append(out, n+`\`)
		}
	}
	return out
}

func validPackage(name string) bool {
	vendor, pkg, ok := strings.Cut(name, "/")
	return ok && vendor != "" && pkg != "" && !strings.ContainsAny(pkg, `/\ `)
}

// InstalledPackages returns the package names recorded by composer under
// root. Both the composer 1 (array) and composer 2 ({"packages": [...]})
// formats are read. A missing file yields no packages.
func InstalledPackages(root string) ([]string, error) {
	data, err := os.ReadFile(paths.Join(root, InstalledFile))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	type pkg struct {
		Name string `json:"name"`
	}
	var pkgs []pkg
	if err := json.Unmarshal(data, &pkgs); err != nil {
		var v2 struct {
			Packages []pkg `json:"packages"`
		}
		if err2 := json.Unmarshal(data, &v2); err2 != nil {
			return nil, errors.New(errors.ManifestInvalid, fmt.Sprintf("failed to parse %s", InstalledFile), err2)
		}
		pkgs = v2.Packages
	}

	names := make([]string, 0, len(pkgs))
	for _, p := range pkgs {
		if p.Name != "" {
			names = append(names, p.Name)
		}
	}
	return names, nil
}

// Write writes m to path, creating the directory if needed.
func Write(path string, m *Manifest) error {
	data, err := toml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// Example is the manifest written by "nsprefix init".
func Example() *Manifest {
	return &Manifest{
		Version:      1,
		Dependencies: []string{"nikic/php-parser", "nette/di"},
		ForcePrefix:  []string{`Nette\`, `Symfony\`, `Tracy\`},
		Bins:         []string{"bin/phpstan"},
		Extensions: []Extension{
			{Package: "phpstan/phpstan-nette", NotPrefixed: []string{`Nette\`, `Tracy\`, `Latte\`}},
		},
	}
}
