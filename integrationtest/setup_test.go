package integrationtest

import (
	"fmt"
	"testing"

	"github.com/randalmurphal/prdflow"
	"github.com/randalmurphal/prdflow/flow/checkpoint"
	"github.com/randalmurphal/prdflow/testutil"
	"github.com/stretchr/testify/require"
)

// sectionAnswer is long enough for the router's fast path and names the
// product and its users, so no substantive-gate call is consumed.
const sectionAnswer = "For this part of the product: our users are independent dog walkers who juggle bookings by text message today, and they need one shared schedule."

// newBuilder wires a Builder with a scripted LLM client over the given
// store. Tuning disables the assembly cooldown and summary refreshes so
// scripted replies line up turn for turn.
func newBuilder(t *testing.T, store checkpoint.Store, replies ...string) *prdflow.Builder {
	t.Helper()
	b, err := prdflow.NewBuilder(
		prdflow.WithLLMClient(testutil.ScriptedClient(replies...)),
		prdflow.WithCheckpointStore(store),
		prdflow.WithWorkflowTuning(prdflow.Tuning{MaxIterations: 100}),
	)
	require.NoError(t, err)
	return b
}

// fullSessionReplies scripts every model call of a session that answers
// each section once and completes it: normalization, the first question,
// then classify/update per section with a follow-up question between
// sections.
func fullSessionReplies(sections int) []string {
	replies := []string{
		"A scheduling app for independent dog walkers.",
		"Question 1?",
	}
	for i := 0; i < sections; i++ {
		replies = append(replies,
			testutil.ClassifierReply("section_update", "", 0.9),
			testutil.UpdateReply(fmt.Sprintf("Draft %d.", i+1), 0.9, "complete"),
		)
		if i < sections-1 {
			replies = append(replies, fmt.Sprintf("Question %d?", i+2))
		}
	}
	return replies
}
