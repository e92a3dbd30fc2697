package integrationtest

import (
	"testing"

	"github.com/randalmurphal/prdflow"
	"github.com/randalmurphal/prdflow/flow/checkpoint"
	"github.com/randalmurphal/prdflow/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFullDocumentLifecycle drives a session through every built-in
// section to an exported version: idea, nine mandatory sections, review,
// export.
func TestFullDocumentLifecycle(t *testing.T) {
	const mandatorySections = 9

	store := checkpoint.NewMemoryStore()
	b := newBuilder(t, store, fullSessionReplies(mandatorySections)...)
	ctx := testutil.TestContext(t)

	res, err := b.StartSession(ctx, "user-1", "An app that helps dog walkers schedule and track their appointments")
	require.NoError(t, err)
	require.NotEmpty(t, res.SessionID)
	assert.Equal(t, prdflow.StageBuild, res.Stage)
	assert.True(t, res.AwaitingInput)
	assert.Equal(t, "Question 1?", res.Reply)
	assert.Equal(t, 10, res.TotalSections)

	sessionID := res.SessionID
	for i := 0; i < mandatorySections; i++ {
		res, err = b.SendMessage(ctx, sessionID, sectionAnswer)
		require.NoError(t, err, "turn %d", i+1)
		assert.Equal(t, i+1, res.CompletedSections, "turn %d", i+1)
	}

	// The last completion assembles the document and hands it over for
	// review.
	assert.Equal(t, prdflow.StageReview, res.Stage)
	assert.True(t, res.AwaitingInput)
	assert.Contains(t, res.Reply, "# Product Requirements Document")

	draft, err := b.Draft(ctx, sessionID)
	require.NoError(t, err)
	assert.NotEmpty(t, draft.Snapshot)
	assert.Len(t, draft.Sections, 10)
	assert.Empty(t, draft.Issues)
	for _, section := range draft.Sections {
		if section.Key == "technical_architecture" {
			assert.Equal(t, prdflow.StatusPending, section.Status)
			continue
		}
		assert.Equal(t, prdflow.StatusCompleted, section.Status, section.Key)
	}

	res, err = b.SendMessage(ctx, sessionID, "looks good, export it")
	require.NoError(t, err)
	assert.True(t, res.Done)
	assert.Equal(t, prdflow.StageExport, res.Stage)

	versions, err := b.ListVersions(ctx, sessionID)
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, prdflow.FormatMarkdown, versions[0].Format)
	assert.Contains(t, versions[0].Content, "Draft 1.")
	assert.Contains(t, versions[0].Content, "## Problem Statement")
}

// TestRevisionRipplesThroughDependents revises a completed section and
// checks that the snapshot is rebuilt with the new text and that the
// document reports the section's dependents as needing review.
func TestRevisionRipplesThroughDependents(t *testing.T) {
	store := checkpoint.NewMemoryStore()
	replies := fullSessionReplies(9)
	replies = append(replies,
		// Revision turn after the full draft.
		revisionClassification(),
		revisionUpdate(),
	)
	b := newBuilder(t, store, replies...)
	ctx := testutil.TestContext(t)

	res, err := b.StartSession(ctx, "user-1", "An app that helps dog walkers schedule and track their appointments")
	require.NoError(t, err)
	sessionID := res.SessionID
	for i := 0; i < 9; i++ {
		_, err = b.SendMessage(ctx, sessionID, sectionAnswer)
		require.NoError(t, err)
	}

	// The revision turn ends on the reassembled document, with the
	// invalidated dependents listed as open issues.
	res, err = b.SendMessage(ctx, sessionID, "Actually the problem is bigger than we wrote: the product must serve whole kennels of users, not just individual walkers, so the problem statement needs a rewrite.")
	require.NoError(t, err)
	assert.Contains(t, res.Reply, "needs review after an upstream revision")

	draft, err := b.Draft(ctx, sessionID)
	require.NoError(t, err)
	statuses := make(map[string]prdflow.Status, len(draft.Sections))
	for _, section := range draft.Sections {
		statuses[section.Key] = section.Status
	}
	// Direct dependents of the revised section are stale; transitive
	// ones keep their status.
	assert.Equal(t, prdflow.StatusInProgress, statuses["problem_statement"])
	assert.Equal(t, prdflow.StatusStale, statuses["goals"])
	assert.Equal(t, prdflow.StatusStale, statuses["user_personas"])
	assert.Equal(t, prdflow.StatusCompleted, statuses["success_metrics"])

	// The revision turn reassembles the document, so an export freezes
	// the revised text, not the pre-revision draft.
	assert.Contains(t, draft.Snapshot, "The problem spans whole kennels.")
	version, err := b.Export(ctx, sessionID, prdflow.FormatMarkdown)
	require.NoError(t, err)
	assert.Contains(t, version.Content, "The problem spans whole kennels.")
	assert.NotContains(t, version.Content, "Draft 1.")
}

// TestRefineThenExport polishes the assembled document and freezes the
// polished text.
func TestRefineThenExport(t *testing.T) {
	store := checkpoint.NewMemoryStore()
	replies := append(fullSessionReplies(9),
		"# Product Requirements Document\n\nPolished and tightened.")
	b := newBuilder(t, store, replies...)
	ctx := testutil.TestContext(t)

	res, err := b.StartSession(ctx, "user-1", "An app that helps dog walkers schedule and track their appointments")
	require.NoError(t, err)
	sessionID := res.SessionID
	for i := 0; i < 9; i++ {
		_, err = b.SendMessage(ctx, sessionID, sectionAnswer)
		require.NoError(t, err)
	}

	res, err = b.Refine(ctx, sessionID)
	require.NoError(t, err)
	assert.Contains(t, res.Reply, "Polished and tightened.")

	version, err := b.Export(ctx, sessionID, prdflow.FormatMarkdown)
	require.NoError(t, err)
	assert.Contains(t, version.Content, "Polished and tightened.")

	got, err := b.GetVersion(ctx, sessionID, version.ID)
	require.NoError(t, err)
	assert.Equal(t, version.Content, got.Content)
}

func revisionClassification() string {
	return `{"intent": "revision", "target_section": "problem_statement", "confidence": 0.9}`
}

func revisionUpdate() string {
	return `{"updated_content": "The problem spans whole kennels.", "completion_score": 0.9, "next_questions": "complete"}`
}
