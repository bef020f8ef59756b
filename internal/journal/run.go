// Package journal records prefixing runs so their changes can be listed and
// undone.
//
// Each run gets a UUID. For every file a run changes the journal keeps the
// blake2b checksums of the original and rewritten contents and a
// zstd-compressed snapshot of the original.
package journal

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// RunStatus represents the state of a run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
	RunRestored  RunStatus = "restored"
)

// Run is one invocation of the prefix command.
type Run struct {
	ID          string     `json:"id"`
	Root        string     `json:"root"`
	Settings    string     `json:"settings,omitempty"` // JSON-encoded policy settings
	Status      RunStatus  `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Error       string     `json:"error,omitempty"`

	FilesScanned int `json:"filesScanned"`
	FilesChanged int `json:"filesChanged"`
	FilesFailed  int `json:"filesFailed"`
}

// NewRun creates a running run for root.
func NewRun(root string, settings any) (*Run, error) {
	var settingsJSON string
	if settings != nil {
		data, err := json.Marshal(settings)
		if err != nil {
			return nil, err
		}
		settingsJSON = string(data)
	}
	return &Run{
		ID:        uuid.New().String(),
		Root:      root,
		Settings:  settingsJSON,
		Status:    RunRunning,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// IsTerminal returns true once the run no longer changes.
func (r *Run) IsTerminal() bool {
	return r.Status != RunRunning
}

// MarkCompleted records the final counts.
func (r *Run) MarkCompleted(scanned, changed, failed int) {
	now := time.Now().UTC()
	r.Status = RunCompleted
	r.CompletedAt = &now
	r.FilesScanned, r.FilesChanged, r.FilesFailed = scanned, changed, failed
}

// MarkFailed records the error that aborted the run.
func (r *Run) MarkFailed(err error) {
	now := time.Now().UTC()
	r.Status = RunFailed
	r.CompletedAt = &now
	if err != nil {
		r.Error = err.Error()
	}
}

// MarkRestored records that the run's changes were undone.
func (r *Run) MarkRestored() {
	r.Status = RunRestored
}

// Duration returns how long the run took, or has been running.
func (r *Run) Duration() time.Duration {
	end := time.Now().UTC()
	if r.CompletedAt != nil {
		end = *r.CompletedAt
	}
	return end.Sub(r.CreatedAt)
}

// Entry is one file changed by a run.
type Entry struct {
	RunID     string `json:"runId"`
	Path      string `json:"path"` // relative to the run root, slash separated
	Group     string `json:"group"`
	Kind      string `json:"kind"`
	BeforeSum string `json:"beforeSum"`
	AfterSum  string `json:"afterSum"`
	Size      int    `json:"size"`

	snapshot []byte
}
