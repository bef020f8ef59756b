// Package paths converts between absolute paths and the slash-separated,
// project-relative paths used in logs, the journal and extension rules.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// Resolve returns p unchanged when absolute, otherwise joined to root.
func Resolve(root, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(root, p)
}

// Canonicalize converts an absolute path to a project-relative path with
// forward slashes. Symlinks are resolved on both sides; for a path that
// does not exist yet only its parent directory is resolved.
func Canonicalize(absolutePath, root string) (string, error) {
	resolved, err := evalSymlinks(absolutePath)
	if err != nil {
		return "", err
	}
	rootResolved, err := evalSymlinks(root)
	if err != nil {
		return "", err
	}

	rel, err := filepath.Rel(rootResolved, resolved)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

func evalSymlinks(p string) (string, error) {
	resolved, err := filepath.EvalSymlinks(p)
	if err != nil {
		if os.IsNotExist(err) {
			dir, base := filepath.Split(filepath.Clean(p))
			if parent, perr := filepath.EvalSymlinks(dir); perr == nil {
				return filepath.Join(parent, base), nil
			}
			return p, nil
		}
		return "", err
	}
	return resolved, nil
}

// IsWithin reports whether path lies inside root.
func IsWithin(path, root string) bool {
	rel, err := Canonicalize(path, root)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, "../")
}

// Normalize converts backslashes to forward slashes.
func Normalize(p string) string {
	return strings.ReplaceAll(filepath.ToSlash(p), `\`, "/")
}

// Join joins root with a canonical project-relative path.
func Join(root, canonical string) string {
	parts := strings.Split(Normalize(canonical), "/")
	return filepath.Join(append([]string{root}, parts...)...)
}
