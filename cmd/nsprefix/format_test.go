package main

import (
	"strings"
	"testing"
	"time"

	"nsprefix/internal/config"
	"nsprefix/internal/journal"
	"nsprefix/internal/runner"
)

func TestFormatResponse_JSON(t *testing.T) {
	resp := &runner.Summary{Scanned: 3, Changed: []string{"src/A.php"}}

	result, err := FormatResponse(resp, FormatJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{`"scanned": 3`, `"changed": [`, `"src/A.php"`} {
		if !strings.Contains(result, want) {
			t.Errorf("JSON output missing %s:\n%s", want, result)
		}
	}
}

func TestFormatResponse_UnsupportedFormat(t *testing.T) {
	_, err := FormatResponse(map[string]string{"key": "value"}, "xml")
	if err == nil || !strings.Contains(err.Error(), "unsupported format") {
		t.Errorf("FormatResponse(xml) error = %v", err)
	}
}

func TestFormatHuman(t *testing.T) {
	completed := time.Date(2026, 3, 1, 10, 0, 2, 0, time.UTC)
	run := &journal.Run{
		ID:           "3f2a9c71-0000-4000-8000-000000000000",
		Root:         "/project",
		Status:       journal.RunCompleted,
		CreatedAt:    completed.Add(-2 * time.Second),
		CompletedAt:  &completed,
		FilesScanned: 10,
		FilesChanged: 2,
	}

	tests := []struct {
		name string
		resp interface{}
		want []string
	}{
		{
			name: "summary",
			resp: &runner.Summary{
				RunID:    run.ID,
				Scanned:  10,
				Changed:  []string{"src/A.php", "conf/services.yaml"},
				Failures: []runner.Failure{{Path: "src/Bad.php", Error: "file src/Bad.php cannot be parsed"}},
			},
			want: []string{"Scanned: 10", "Changed: 2", "Failed: 1", "  M src/A.php", "✗ src/Bad.php", "nsprefix restore 3f2a9c71"},
		},
		{
			name: "dry run summary",
			resp: &runner.Summary{DryRun: true, Changed: []string{"src/A.php"}},
			want: []string{"dry run", "Would change: 1"},
		},
		{
			name: "runs",
			resp: &RunsResponse{Runs: []*journal.Run{run}},
			want: []string{"RUN", "3f2a9c71", "completed"},
		},
		{
			name: "no runs",
			resp: &RunsResponse{},
			want: []string{"No runs recorded."},
		},
		{
			name: "run detail",
			resp: &RunDetail{Run: run, Entries: []journal.Entry{{Path: "src/A.php", Group: "core", Kind: "php"}}},
			want: []string{"Run " + run.ID, "Status: completed", "Duration: 2s", "Files (1):", "src/A.php"},
		},
		{
			name: "restore",
			resp: &journal.RestoreResult{RunID: run.ID, Restored: []string{"src/A.php"}, Conflicts: []string{"conf/x.yaml"}},
			want: []string{"Restore of run 3f2a9c71", "Restored: 1", "✓ src/A.php", "! conf/x.yaml"},
		},
		{
			name: "config",
			resp: config.DefaultConfig(),
			want: []string{"vendorPrefix", "PHPStanVendor", "documents.typeKeys", "type, class"},
		},
		{
			name: "unknown type falls back to JSON",
			resp: map[string]int{"n": 1},
			want: []string{`"n": 1`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := FormatResponse(tt.resp, FormatHuman)
			if err != nil {
				t.Fatalf("FormatResponse() error = %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("3f2a9c71-aaaa"); got != "3f2a9c71" {
		t.Errorf("shortID() = %q", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Errorf("shortID() = %q", got)
	}
}
