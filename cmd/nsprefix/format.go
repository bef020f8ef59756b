package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"nsprefix/internal/config"
	"nsprefix/internal/journal"
	"nsprefix/internal/runner"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatHuman OutputFormat = "human"
)

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *runner.Summary:
		return formatSummaryHuman(v), nil
	case *RunsResponse:
		return formatRunsHuman(v), nil
	case *RunDetail:
		return formatRunDetailHuman(v), nil
	case *journal.RestoreResult:
		return formatRestoreHuman(v), nil
	case *config.Config:
		return formatConfigHuman(v), nil
	default:
		// unknown types fall back to JSON
		return formatJSON(resp)
	}
}

func formatSummaryHuman(s *runner.Summary) string {
	var b strings.Builder

	title := "Prefixing run"
	if s.DryRun {
		title = "Prefixing run (dry run, nothing written)"
	}
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	verb := "Changed"
	if s.DryRun {
		verb = "Would change"
	}
	fmt.Fprintf(&b, "Scanned: %d\n", s.Scanned)
	fmt.Fprintf(&b, "%s: %d\n", verb, len(s.Changed))
	if len(s.Failures) > 0 {
		fmt.Fprintf(&b, "Failed: %d\n", len(s.Failures))
	}
	fmt.Fprintf(&b, "Duration: %s\n", s.Duration.Round(time.Millisecond))
	if s.RunID != "" {
		fmt.Fprintf(&b, "Run: %s\n", s.RunID)
	}

	if len(s.Changed) > 0 {
		b.WriteString("\nFiles:\n")
		for _, path := range s.Changed {
			fmt.Fprintf(&b, "  M %s\n", path)
		}
	}
	if len(s.Failures) > 0 {
		b.WriteString("\nFailures:\n")
		for _, f := range s.Failures {
			fmt.Fprintf(&b, "  ✗ %s\n    %s\n", f.Path, f.Error)
		}
	}
	if s.RunID != "" && len(s.Changed) > 0 {
		fmt.Fprintf(&b, "\nUndo with: nsprefix restore %s\n", shortID(s.RunID))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatRunsHuman(r *RunsResponse) string {
	if len(r.Runs) == 0 {
		return "No runs recorded."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-10s %-10s %-20s %8s %8s %8s\n", "RUN", "STATUS", "STARTED", "SCANNED", "CHANGED", "FAILED")
	for _, run := range r.Runs {
		fmt.Fprintf(&b, "%-10s %-10s %-20s %8d %8d %8d\n",
			shortID(run.ID), run.Status, run.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			run.FilesScanned, run.FilesChanged, run.FilesFailed)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatRunDetailHuman(d *RunDetail) string {
	var b strings.Builder
	run := d.Run
	fmt.Fprintf(&b, "Run %s\n", run.ID)
	b.WriteString(strings.Repeat("=", 60) + "\n\n")
	fmt.Fprintf(&b, "Root: %s\n", run.Root)
	fmt.Fprintf(&b, "Status: %s\n", run.Status)
	fmt.Fprintf(&b, "Started: %s\n", run.CreatedAt.Local().Format(time.RFC3339))
	if run.CompletedAt != nil {
		fmt.Fprintf(&b, "Duration: %s\n", run.Duration().Round(time.Millisecond))
	}
	if run.Error != "" {
		fmt.Fprintf(&b, "Error: %s\n", run.Error)
	}
	if run.Settings != "" {
		fmt.Fprintf(&b, "Settings: %s\n", run.Settings)
	}

	if len(d.Entries) > 0 {
		fmt.Fprintf(&b, "\nFiles (%d):\n", len(d.Entries))
		for _, e := range d.Entries {
			fmt.Fprintf(&b, "  %-8s %-9s %s\n", e.Group, e.Kind, e.Path)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatRestoreHuman(r *journal.RestoreResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Restore of run %s\n", shortID(r.RunID))
	fmt.Fprintf(&b, "Restored: %d\n", len(r.Restored))
	for _, path := range r.Restored {
		fmt.Fprintf(&b, "  ✓ %s\n", path)
	}
	if len(r.Conflicts) > 0 {
		fmt.Fprintf(&b, "Changed since the run: %d\n", len(r.Conflicts))
		for _, path := range r.Conflicts {
			fmt.Fprintf(&b, "  ! %s\n", path)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatConfigHuman(c *config.Config) string {
	var b strings.Builder
	b.WriteString("nsprefix configuration\n")
	b.WriteString(strings.Repeat("─", 50) + "\n")

	row := func(key string, value any) {
		fmt.Fprintf(&b, "  %-22s %v\n", key, value)
	}
	row("vendorPrefix", c.VendorPrefix)
	row("rootNamespace", c.RootNamespace)
	row("rewriteComments", c.RewriteComments)
	row("workers", c.Workers)
	row("manifest", c.Manifest)
	row("classmap", c.Classmap)
	row("syntaxCheck", c.SyntaxCheck)
	row("documents.extensions", strings.Join(c.Documents.Extensions, ", "))
	row("documents.typeKeys", strings.Join(c.Documents.TypeKeys, ", "))
	row("documents.sigil", c.Documents.Sigil)
	row("journal.enabled", c.Journal.Enabled)
	row("journal.path", c.Journal.Path)
	row("logging.level", c.Logging.Level)
	if c.Logging.File != "" {
		row("logging.file", c.Logging.File)
		row("logging.maxSize", c.Logging.MaxSize)
	}
	return strings.TrimRight(b.String(), "\n")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
