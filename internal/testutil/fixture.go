// Package testutil provides golden-file helpers for rewriter tests.
package testutil

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// goldenSuffix marks expected outputs next to their inputs:
// foo.php is rewritten and compared with foo.golden.php.
const goldenSuffix = ".golden"

// Fixture is one input file and its expected output.
type Fixture struct {
	Name   string
	Input  string
	Golden string
}

// Read returns the input contents.
func (f Fixture) Read(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(f.Input)
	if err != nil {
		t.Fatalf("Failed to read fixture %s: %v", f.Name, err)
	}
	return data
}

// LoadFixtures lists the inputs in dir, sorted by name. Every file whose
// name does not carry the golden suffix is an input.
func LoadFixtures(t *testing.T, dir string) []Fixture {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read fixtures directory: %v", err)
	}

	var fixtures []Fixture
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		ext := filepath.Ext(e.Name())
		base := strings.TrimSuffix(e.Name(), ext)
		if strings.HasSuffix(base, goldenSuffix) {
			continue
		}
		fixtures = append(fixtures, Fixture{
			Name:   base,
			Input:  filepath.Join(dir, e.Name()),
			Golden: filepath.Join(dir, base+goldenSuffix+ext),
		})
	}
	if len(fixtures) == 0 {
		t.Fatalf("No fixtures in %s", dir)
	}
	sort.Slice(fixtures, func(i, j int) bool { return fixtures[i].Name < fixtures[j].Name })
	return fixtures
}
