package journal

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultPath is the journal database relative to the project root.
const DefaultPath = ".nsprefix/journal.db"

// Store persists runs and their file entries in SQLite.
type Store struct {
	conn   *sql.DB
	logger *slog.Logger
	dbPath string
}

// OpenStore opens or creates the journal database at dbPath.
func OpenStore(dbPath string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}
	dbExists := fileExists(dbPath)

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}
	// parallel workers record entries through one connection
	conn.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	store := &Store{conn: conn, logger: logger, dbPath: dbPath}
	if !dbExists {
		logger.Debug("Creating journal database", "path", dbPath)
	}
	if err := store.initializeSchema(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize journal schema: %w", err)
	}
	return store, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (s *Store) initializeSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			root TEXT NOT NULL,
			settings TEXT,
			status TEXT NOT NULL DEFAULT 'running',
			created_at TEXT NOT NULL,
			completed_at TEXT,
			error TEXT,
			files_scanned INTEGER DEFAULT 0,
			files_changed INTEGER DEFAULT 0,
			files_failed INTEGER DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC);

		CREATE TABLE IF NOT EXISTS entries (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			path TEXT NOT NULL,
			grp TEXT NOT NULL,
			kind TEXT NOT NULL,
			before_sum TEXT NOT NULL,
			after_sum TEXT NOT NULL,
			size INTEGER NOT NULL,
			snapshot BLOB NOT NULL,
			PRIMARY KEY (run_id, path)
		);

		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);
		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// Path returns the database file.
func (s *Store) Path() string { return s.dbPath }

// Close closes the database connection.
func (s *Store) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// CreateRun inserts a new run.
func (s *Store) CreateRun(run *Run) error {
	_, err := s.conn.Exec(`
		INSERT INTO runs (id, root, settings, status, created_at, completed_at, error, files_scanned, files_changed, files_failed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Root,
		nullString(run.Settings),
		run.Status,
		run.CreatedAt.Format(time.RFC3339),
		nullTime(run.CompletedAt),
		nullString(run.Error),
		run.FilesScanned,
		run.FilesChanged,
		run.FilesFailed,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	s.logger.Debug("Created run", "runId", run.ID)
	return nil
}

// UpdateRun stores the status and counts of an existing run.
func (s *Store) UpdateRun(run *Run) error {
	result, err := s.conn.Exec(`
		UPDATE runs SET
			status = ?,
			completed_at = ?,
			error = ?,
			files_scanned = ?,
			files_changed = ?,
			files_failed = ?
		WHERE id = ?
	`,
		run.Status,
		nullTime(run.CompletedAt),
		nullString(run.Error),
		run.FilesScanned,
		run.FilesChanged,
		run.FilesFailed,
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("run not found: %s", run.ID)
	}
	return nil
}

const runColumns = `id, root, settings, status, created_at, completed_at, error, files_scanned, files_changed, files_failed`

// GetRun retrieves a run by ID or unique ID prefix. It returns nil when no
// run matches.
func (s *Store) GetRun(id string) (*Run, error) {
	rows, err := s.conn.Query(`SELECT `+runColumns+` FROM runs WHERE id = ? OR id LIKE ? ORDER BY id LIMIT 2`, id, id+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var found []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		if run.ID == id {
			return run, nil
		}
		found = append(found, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	switch len(found) {
	case 0:
		return nil, nil
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("run id prefix %q is ambiguous", id)
	}
}

// ListRuns returns the most recent runs first.
func (s *Store) ListRuns(limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.conn.Query(`SELECT `+runColumns+` FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RecordFile stores a changed file of a run.
func (s *Store) RecordFile(runID, path, group, kind string, original, rewritten []byte) error {
	snapshot, err := Compress(original)
	if err != nil {
		return fmt.Errorf("failed to compress snapshot: %w", err)
	}
	_, err = s.conn.Exec(`
		INSERT OR REPLACE INTO entries (run_id, path, grp, kind, before_sum, after_sum, size, snapshot)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, runID, path, group, kind, Checksum(original), Checksum(rewritten), len(original), snapshot)
	if err != nil {
		return fmt.Errorf("failed to record %s: %w", path, err)
	}
	return nil
}

// Entries returns the files changed by a run, ordered by path.
func (s *Store) Entries(runID string) ([]Entry, error) {
	rows, err := s.conn.Query(`
		SELECT run_id, path, grp, kind, before_sum, after_sum, size, snapshot
		FROM entries WHERE run_id = ? ORDER BY path
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.RunID, &e.Path, &e.Group, &e.Kind, &e.BeforeSum, &e.AfterSum, &e.Size, &e.snapshot); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteRun removes a run and its entries.
func (s *Store) DeleteRun(id string) error {
	if _, err := s.conn.Exec(`DELETE FROM runs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	return nil
}

func scanRun(rows *sql.Rows) (*Run, error) {
	var run Run
	var settings, completedAt, errMsg sql.NullString
	var createdAt string

	err := rows.Scan(
		&run.ID,
		&run.Root,
		&settings,
		&run.Status,
		&createdAt,
		&completedAt,
		&errMsg,
		&run.FilesScanned,
		&run.FilesChanged,
		&run.FilesFailed,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan run row: %w", err)
	}

	run.Settings = settings.String
	run.Error = errMsg.String
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		run.CreatedAt = t
	}
	if completedAt.Valid {
		if t, err := time.Parse(time.RFC3339, completedAt.String); err == nil {
			run.CompletedAt = &t
		}
	}
	return &run, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(time.RFC3339), Valid: true}
}
