package checkpoint

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS checkpoints (
	thread_id TEXT PRIMARY KEY,
	next      TEXT NOT NULL,
	state     BLOB NOT NULL,
	step      INTEGER NOT NULL,
	saved_at  TIMESTAMP NOT NULL
);
`

// SQLiteStore persists checkpoints in a SQLite database so sessions
// survive process restarts. One row per thread; Put upserts.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and ensures
// the checkpoint table exists. Use ":memory:" for an ephemeral database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open checkpoint db: %w", err)
	}

	// SQLite handles one writer at a time; serialize through a single conn.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init checkpoint schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Put saves the checkpoint, replacing any existing entry for the thread.
func (s *SQLiteStore) Put(ctx context.Context, cp Checkpoint) error {
	savedAt := cp.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO checkpoints (thread_id, next, state, step, saved_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(thread_id) DO UPDATE SET
			next = excluded.next,
			state = excluded.state,
			step = excluded.step,
			saved_at = excluded.saved_at`,
		cp.ThreadID, cp.Next, []byte(cp.State), cp.Step, savedAt)
	if err != nil {
		return fmt.Errorf("put checkpoint %s: %w", cp.ThreadID, err)
	}
	return nil
}

// Latest returns the most recent checkpoint for the thread.
func (s *SQLiteStore) Latest(ctx context.Context, threadID string) (Checkpoint, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT thread_id, next, state, step, saved_at
		FROM checkpoints WHERE thread_id = ?`, threadID)

	var cp Checkpoint
	var state []byte
	err := row.Scan(&cp.ThreadID, &cp.Next, &state, &cp.Step, &cp.SavedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Checkpoint{}, ErrNotFound
	}
	if err != nil {
		return Checkpoint{}, fmt.Errorf("load checkpoint %s: %w", threadID, err)
	}
	cp.State = state
	return cp, nil
}

// Delete removes the checkpoint for the thread.
func (s *SQLiteStore) Delete(ctx context.Context, threadID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM checkpoints WHERE thread_id = ?`, threadID); err != nil {
		return fmt.Errorf("delete checkpoint %s: %w", threadID, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
