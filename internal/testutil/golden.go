package testutil

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// updateGolden rewrites golden files instead of comparing:
//
//	go test ./internal/rewriter -run TestGolden -update
var updateGolden = flag.Bool("update", false, "update golden files")

// ShouldUpdate returns true if golden files should be updated.
func ShouldUpdate() bool {
	return *updateGolden
}

// CompareGolden fails with a line diff when got differs from the golden
// file. With -update the golden file is written instead.
func CompareGolden(t *testing.T, goldenPath string, got []byte) {
	t.Helper()

	if *updateGolden {
		if err := os.MkdirAll(filepath.Dir(goldenPath), 0o755); err != nil {
			t.Fatalf("Failed to create golden directory: %v", err)
		}
		if err := os.WriteFile(goldenPath, got, 0o644); err != nil {
			t.Fatalf("Failed to write golden file: %v", err)
		}
		t.Logf("Updated golden: %s", goldenPath)
		return
	}

	expected, err := os.ReadFile(goldenPath)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("Golden file missing: %s\n\nGot:\n%s\n\nRun with -update to create it.", goldenPath, got)
		}
		t.Fatalf("Failed to read golden file: %v", err)
	}

	if !bytes.Equal(got, expected) {
		t.Fatalf("Golden mismatch for %s:\n%s\nRun with -update to refresh.",
			filepath.Base(goldenPath), lineDiff(string(expected), string(got)))
	}
}

// lineDiff lists the differing lines by number. Line endings are shown so
// that whitespace-only differences stay visible.
func lineDiff(expected, got string) string {
	exp := strings.SplitAfter(expected, "\n")
	act := strings.SplitAfter(got, "\n")

	var b strings.Builder
	n := len(exp)
	if len(act) > n {
		n = len(act)
	}
	for i := 0; i < n; i++ {
		var e, a string
		if i < len(exp) {
			e = exp[i]
		}
		if i < len(act) {
			a = act[i]
		}
		if e == a {
			continue
		}
		fmt.Fprintf(&b, "@@ line %d\n", i+1)
		if e != "" {
			fmt.Fprintf(&b, "-%q\n", e)
		}
		if a != "" {
			fmt.Fprintf(&b, "+%q\n", a)
		}
	}
	return b.String()
}
