// Package history stores final pipeline snapshots for later retrieval.
//
// The pipeline itself never persists anything; the surrounding
// application records the snapshot after a run terminates. Two
// implementations are provided: MemoryStore for tests and ephemeral use,
// SQLiteStore for single-process production use.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/randalmurphal/postflow/pkg/postflow"
)

// Sentinel errors.
var (
	// ErrNotFound indicates no run exists with the given ID.
	ErrNotFound = errors.New("run not found")

	// ErrStoreClosed indicates an operation on a closed store.
	ErrStoreClosed = errors.New("store is closed")
)

// Summary is the listing row for one recorded run.
type Summary struct {
	RunID     string    `json:"run_id"`
	Topic     string    `json:"topic"`
	Platform  string    `json:"platform"`
	Tone      string    `json:"tone"`
	Outcome   string    `json:"outcome"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists terminal pipeline snapshots.
// Implementations are safe for concurrent use.
type Store interface {
	// Save records one terminal snapshot, keyed by its run ID.
	Save(ctx context.Context, st *postflow.State) error

	// Get loads the snapshot for one run.
	// Returns ErrNotFound if the run is unknown.
	Get(ctx context.Context, runID string) (*postflow.State, error)

	// List returns the most recent runs, newest first.
	// limit <= 0 means no limit.
	List(ctx context.Context, limit int) ([]Summary, error)

	// Prune deletes the oldest runs so that at most keep remain.
	// keep <= 0 removes everything. Returns the number of runs removed.
	Prune(ctx context.Context, keep int) (int, error)

	// Close releases resources. Subsequent calls return ErrStoreClosed.
	Close() error
}
