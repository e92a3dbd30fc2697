package checkpoint

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound indicates no checkpoint exists for the requested thread.
var ErrNotFound = errors.New("checkpoint not found")

// Checkpoint is a durable snapshot of a graph run, keyed by thread id.
// Only the latest checkpoint per thread is retained; each Put replaces
// the previous entry for the same thread.
type Checkpoint struct {
	ThreadID string          `json:"threadId"`
	Next     string          `json:"next"`
	State    json.RawMessage `json:"state"`
	Step     int             `json:"step"`
	SavedAt  time.Time       `json:"savedAt"`
}

// Store persists checkpoints. Implementations must be safe for
// concurrent use by independent sessions.
type Store interface {
	// Put saves the checkpoint, replacing any existing entry for the thread.
	Put(ctx context.Context, cp Checkpoint) error

	// Latest returns the most recent checkpoint for the thread.
	// Returns ErrNotFound if the thread has never been checkpointed.
	Latest(ctx context.Context, threadID string) (Checkpoint, error)

	// Delete removes the checkpoint for the thread, if any.
	Delete(ctx context.Context, threadID string) error

	// Close releases store resources.
	Close() error
}
