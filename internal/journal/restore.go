package journal

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"nsprefix/internal/errors"
	"nsprefix/internal/paths"
)

// RestoreResult lists what Restore did.
type RestoreResult struct {
	RunID     string   `json:"runId"`
	Restored  []string `json:"restored"`
	Conflicts []string `json:"conflicts,omitempty"`
}

// Restore writes back the original contents of every file a run changed.
// Files modified since the run are conflicts: without force nothing is
// written and a RESTORE_CONFLICT error lists them; with force they are
// overwritten too.
func (s *Store) Restore(ctx context.Context, runID string, force bool) (*RestoreResult, error) {
	run, err := s.GetRun(runID)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, errors.New(errors.RunNotFound, fmt.Sprintf("run %s not found", runID), nil)
	}
	entries, err := s.Entries(run.ID)
	if err != nil {
		return nil, err
	}

	result := &RestoreResult{RunID: run.ID}
	for _, e := range entries {
		current, err := os.ReadFile(entryPath(run.Root, e.Path))
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		if err != nil || Checksum(current) != e.AfterSum {
			result.Conflicts = append(result.Conflicts, e.Path)
		}
	}
	if len(result.Conflicts) > 0 && !force {
		return result, errors.New(errors.RestoreConflict,
			fmt.Sprintf("%d file(s) changed since run %s", len(result.Conflicts), run.ID), nil).
			WithDetails(map[string]string{"files": strings.Join(result.Conflicts, ", ")})
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		original, err := Decompress(e.snapshot)
		if err != nil {
			return result, errors.New(errors.InternalError, fmt.Sprintf("snapshot of %s is corrupt", e.Path), err)
		}
		if Checksum(original) != e.BeforeSum {
			return result, errors.New(errors.InternalError, fmt.Sprintf("snapshot of %s does not match its checksum", e.Path), nil)
		}
		path := entryPath(run.Root, e.Path)
		if current, err := os.ReadFile(path); err == nil && bytes.Equal(current, original) {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return result, err
		}
		if err := writeFile(path, original); err != nil {
			return result, err
		}
		result.Restored = append(result.Restored, e.Path)
	}

	run.MarkRestored()
	if err := s.UpdateRun(run); err != nil {
		return result, err
	}
	s.logger.Info("Restored run", "runId", run.ID, "files", len(result.Restored))
	return result, nil
}

func entryPath(root, rel string) string {
	return paths.Join(root, rel)
}

// writeFile keeps the mode of an existing file.
func writeFile(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	return os.WriteFile(path, data, mode)
}
