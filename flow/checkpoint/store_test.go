package checkpoint

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

// storeTest exercises the Store contract shared by every backend.
func storeTest(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Latest(ctx, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Latest(missing) error = %v, want ErrNotFound", err)
	}

	cp := Checkpoint{
		ThreadID: "t1",
		Next:     "human_input",
		State:    []byte(`{"stage":"build"}`),
		Step:     3,
		SavedAt:  time.Now().UTC().Truncate(time.Second),
	}
	if err := store.Put(ctx, cp); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	got, err := store.Latest(ctx, "t1")
	if err != nil {
		t.Fatalf("Latest() error: %v", err)
	}
	if got.Next != cp.Next || got.Step != cp.Step || string(got.State) != string(cp.State) {
		t.Errorf("Latest() = %+v, want %+v", got, cp)
	}

	// Put replaces: only the latest checkpoint per thread survives.
	cp.Next = "assembler"
	cp.Step = 4
	if err := store.Put(ctx, cp); err != nil {
		t.Fatalf("Put() replace error: %v", err)
	}
	got, err = store.Latest(ctx, "t1")
	if err != nil {
		t.Fatalf("Latest() after replace error: %v", err)
	}
	if got.Next != "assembler" || got.Step != 4 {
		t.Errorf("Latest() after replace = %+v", got)
	}

	// Threads are independent.
	other := Checkpoint{ThreadID: "t2", Next: "planner", State: []byte(`{}`), SavedAt: time.Now()}
	if err := store.Put(ctx, other); err != nil {
		t.Fatalf("Put(t2) error: %v", err)
	}
	got, _ = store.Latest(ctx, "t1")
	if got.Next != "assembler" {
		t.Errorf("t1 checkpoint disturbed by t2 write: %+v", got)
	}

	if err := store.Delete(ctx, "t1"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := store.Latest(ctx, "t1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Latest() after delete error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	storeTest(t, store)
}

func TestMemoryStore_CopiesState(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	buf := []byte(`{"a":1}`)
	if err := store.Put(ctx, Checkpoint{ThreadID: "t1", Next: "n", State: buf}); err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	copy(buf, []byte(`{"b":2}`))

	got, err := store.Latest(ctx, "t1")
	if err != nil {
		t.Fatalf("Latest() error: %v", err)
	}
	if string(got.State) != `{"a":1}` {
		t.Errorf("stored state mutated through caller buffer: %s", got.State)
	}
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoints.db")
	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error: %v", err)
	}
	defer store.Close()
	storeTest(t, store)
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoints.db")
	ctx := context.Background()

	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error: %v", err)
	}
	cp := Checkpoint{
		ThreadID: "session-1",
		Next:     "human_input",
		State:    []byte(`{"stage":"build","turn":7}`),
		Step:     9,
		SavedAt:  time.Now().UTC(),
	}
	if err := store.Put(ctx, cp); err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	// A new process opening the same file sees the suspended thread.
	reopened, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Latest(ctx, "session-1")
	if err != nil {
		t.Fatalf("Latest() after reopen error: %v", err)
	}
	if got.Next != "human_input" || got.Step != 9 || string(got.State) != string(cp.State) {
		t.Errorf("Latest() after reopen = %+v, want %+v", got, cp)
	}
}
