package checkpoint

import (
	"context"
	"sync"
)

// MemoryStore keeps checkpoints in process memory. Intended for tests
// and single-process development; state does not survive restarts.
type MemoryStore struct {
	mu          sync.RWMutex
	checkpoints map[string]Checkpoint
}

// NewMemoryStore creates an empty in-memory checkpoint store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		checkpoints: make(map[string]Checkpoint),
	}
}

// Put saves the checkpoint, replacing any existing entry for the thread.
func (s *MemoryStore) Put(_ context.Context, cp Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Copy the state bytes so callers can reuse their buffer.
	stored := cp
	stored.State = append([]byte(nil), cp.State...)
	s.checkpoints[cp.ThreadID] = stored
	return nil
}

// Latest returns the most recent checkpoint for the thread.
func (s *MemoryStore) Latest(_ context.Context, threadID string) (Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp, ok := s.checkpoints[threadID]
	if !ok {
		return Checkpoint{}, ErrNotFound
	}
	return cp, nil
}

// Delete removes the checkpoint for the thread.
func (s *MemoryStore) Delete(_ context.Context, threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.checkpoints, threadID)
	return nil
}

// Len returns the number of stored threads.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.checkpoints)
}

// Close is a no-op for the memory store.
func (s *MemoryStore) Close() error { return nil }
