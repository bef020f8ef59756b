package paths

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestResolve(t *testing.T) {
	root := t.TempDir()
	abs := filepath.Join(root, "elsewhere", "x.php")

	if got := Resolve(root, abs); got != abs {
		t.Errorf("Resolve(abs) = %s, want %s", got, abs)
	}
	if got, want := Resolve(root, "src/X.php"), filepath.Join(root, "src", "X.php"); got != want {
		t.Errorf("Resolve(rel) = %s, want %s", got, want)
	}
}

func TestCanonicalize(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "src", "Rules"), 0o755); err != nil {
		t.Fatal(err)
	}
	file := filepath.Join(root, "src", "Rules", "Rule.php")
	if err := os.WriteFile(file, []byte("<?php\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		want string
	}{
		{"existing file", file, "src/Rules/Rule.php"},
		{"missing file", filepath.Join(root, "src", "New.php"), "src/New.php"},
		{"root itself", root, "."},
		{"outside", filepath.Dir(root), ".."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Canonicalize(tt.path, root)
			if err != nil {
				t.Fatalf("Canonicalize() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Canonicalize() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCanonicalize_Symlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	real := t.TempDir()
	link := filepath.Join(t.TempDir(), "project")
	if err := os.Symlink(real, link); err != nil {
		t.Skipf("symlink: %v", err)
	}
	file := filepath.Join(real, "a.php")
	if err := os.WriteFile(file, []byte("<?php\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Canonicalize(filepath.Join(link, "a.php"), real)
	if err != nil {
		t.Fatal(err)
	}
	if got != "a.php" {
		t.Errorf("Canonicalize() through symlink = %s, want a.php", got)
	}
}

func TestIsWithin(t *testing.T) {
	root := t.TempDir()
	tests := []struct {
		path string
		want bool
	}{
		{filepath.Join(root, "src", "X.php"), true},
		{root, true},
		{filepath.Join(root, "..dots.php"), true},
		{filepath.Join(filepath.Dir(root), "other", "X.php"), false},
	}
	for _, tt := range tests {
		if got := IsWithin(tt.path, root); got != tt.want {
			t.Errorf("IsWithin(%s) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestJoin(t *testing.T) {
	root := filepath.Join("tmp", "project")
	want := filepath.Join("tmp", "project", "vendor", "acme", "X.php")
	for _, rel := range []string{"vendor/acme/X.php", `vendor\acme\X.php`} {
		if got := Join(root, rel); got != want {
			t.Errorf("Join(%q) = %s, want %s", rel, got, want)
		}
	}
}
