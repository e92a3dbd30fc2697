package integrationtest

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/randalmurphal/prdflow"
	prderrors "github.com/randalmurphal/prdflow/errors"
	"github.com/randalmurphal/prdflow/flow/checkpoint"
	"github.com/randalmurphal/prdflow/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSessionSurvivesProcessRestart closes the store between turns and
// reopens the same SQLite file from a fresh Builder, simulating a
// process restart mid-conversation.
func TestSessionSurvivesProcessRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoints.db")
	ctx := testutil.TestContext(t)

	store, err := checkpoint.NewSQLiteStore(path)
	require.NoError(t, err)

	b := newBuilder(t, store,
		"A scheduling app for independent dog walkers.",
		"Question 1?",
	)
	res, err := b.StartSession(ctx, "user-1", "An app that helps dog walkers schedule and track their appointments")
	require.NoError(t, err)
	sessionID := res.SessionID
	require.NoError(t, store.Close())

	// "Restart": a new store over the same file, a new Builder, no
	// shared memory.
	store, err = checkpoint.NewSQLiteStore(path)
	require.NoError(t, err)
	defer store.Close()

	b = newBuilder(t, store,
		testutil.ClassifierReply("section_update", "", 0.9),
		testutil.UpdateReply("Problem draft.", 0.9, "complete"),
		"Question 2?",
	)
	res, err = b.SendMessage(ctx, sessionID, sectionAnswer)
	require.NoError(t, err)
	assert.Equal(t, 1, res.CompletedSections)
	assert.Equal(t, "Question 2?", res.Reply)

	draft, err := b.Draft(ctx, sessionID)
	require.NoError(t, err)
	assert.Contains(t, draft.Snapshot, "Problem draft.")
}

// TestSessionsAreIndependent interleaves two sessions on one store and
// checks neither leaks into the other.
func TestSessionsAreIndependent(t *testing.T) {
	store := checkpoint.NewMemoryStore()
	ctx := testutil.TestContext(t)

	b := newBuilder(t, store,
		"Product one.", "Q?",
		"Product two.", "Q?",
		testutil.ClassifierReply("section_update", "", 0.9),
		testutil.UpdateReply("Session one draft.", 0.9, "complete"),
		"Next question?",
	)

	first, err := b.StartSession(ctx, "user-1", "An app that helps dog walkers schedule and track their appointments")
	require.NoError(t, err)
	second, err := b.StartSession(ctx, "user-2", "A marketplace that connects home cooks with hungry neighbors nearby")
	require.NoError(t, err)
	require.NotEqual(t, first.SessionID, second.SessionID)

	res, err := b.SendMessage(ctx, first.SessionID, sectionAnswer)
	require.NoError(t, err)
	assert.Equal(t, 1, res.CompletedSections)

	otherDraft, err := b.Draft(ctx, second.SessionID)
	require.NoError(t, err)
	for _, section := range otherDraft.Sections {
		assert.Empty(t, section.Content, "section %s leaked across sessions", section.Key)
	}
}

func TestUnknownSession(t *testing.T) {
	b := newBuilder(t, checkpoint.NewMemoryStore())
	ctx := testutil.TestContext(t)

	_, err := b.SendMessage(ctx, "no-such-session", "hello")
	assert.True(t, errors.Is(err, prderrors.ErrSessionNotFound), "got %v", err)

	_, err = b.Draft(ctx, "no-such-session")
	assert.True(t, errors.Is(err, prderrors.ErrSessionNotFound), "got %v", err)

	_, err = b.Export(ctx, "no-such-session", prdflow.FormatMarkdown)
	assert.True(t, errors.Is(err, prderrors.ErrSessionNotFound), "got %v", err)
}
