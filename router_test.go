package prdflow

import (
	"strings"
	"testing"

	"github.com/randalmurphal/prdflow/testutil"
)

func TestRouteAfterNormalize(t *testing.T) {
	ctx := testCtx(t, testutil.ScriptedClient("unused"))

	state := buildState()
	state.AwaitingInput = true
	if got := routeAfterNormalize(ctx, state); got != NodeHumanInput {
		t.Errorf("awaiting clarification routed to %q", got)
	}

	state.AwaitingInput = false
	if got := routeAfterNormalize(ctx, state); got != NodePlanner {
		t.Errorf("normalized idea routed to %q", got)
	}
}

func TestRouteAfterQuestioner(t *testing.T) {
	ctx := testCtx(t, testutil.ScriptedClient("unused"))

	state := buildState()
	if got := routeAfterQuestioner(ctx, state); got != NodeHumanInput {
		t.Errorf("pending question routed to %q", got)
	}

	state.Stage = StageAssemble
	if got := routeAfterQuestioner(ctx, state); got != NodeAssembler {
		t.Errorf("exhausted plan routed to %q", got)
	}
}

func TestRouteAfterHumanInput_InitFeedsNormalization(t *testing.T) {
	ctx := testCtx(t, testutil.ScriptedClient("unused"))
	state := NewConversationState("user-1", "an app?")
	state.ClarifyAsked = true
	state.AppendUser("it's for dog walkers")

	if got := routeAfterHumanInput(ctx, state); got != NodeNormalize {
		t.Errorf("init-stage turn routed to %q", got)
	}
}

func TestRouteAfterHumanInput_ReviewCommands(t *testing.T) {
	tests := []struct {
		name  string
		stage Stage
		input string
		want  string
	}{
		{"export from review", StageReview, "export it please", NodeExporter},
		{"finalize from review", StageReview, "let's finalize", NodeExporter},
		{"ship it from review", StageReview, "ok ship it", NodeExporter},
		{"refine from review", StageReview, "refine the wording", NodeRefiner},
		{"polish from review", StageReview, "can you polish this", NodeRefiner},
		{"re-export after export", StageExport, "export again", NodeExporter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testCtx(t, testutil.ScriptedClient("unused"))
			state := buildState()
			state.Stage = tt.stage
			state.AppendUser(tt.input)

			if got := routeAfterHumanInput(ctx, state); got != tt.want {
				t.Errorf("routeAfterHumanInput(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRouteAfterHumanInput_ReviewKeywordsIgnoredWhileBuilding(t *testing.T) {
	// "export" mid-build is just content; the gate decides as usual.
	ctx := testCtx(t, testutil.ScriptedClient(testutil.SubstantiveReply(0.9)))
	state := buildState()
	state.AppendUser("we should export reports as CSV")

	if got := routeAfterHumanInput(ctx, state); got != NodeClassifier {
		t.Errorf("build-stage export mention routed to %q", got)
	}
}

func TestRouteAfterHumanInput_FastPathSkipsGate(t *testing.T) {
	client := testutil.ScriptedClient("should not be called")
	ctx := testCtx(t, client)
	state := buildState()
	long := strings.Repeat("the product solves a real scheduling problem for hospital nurses ", 3)
	state.AppendUser(long)

	if got := routeAfterHumanInput(ctx, state); got != NodeClassifier {
		t.Errorf("fast-path message routed to %q", got)
	}
	if client.CallCount() != 0 {
		t.Errorf("fast path still called the model %d times", client.CallCount())
	}
}

func TestRouteAfterHumanInput_LongMessageWithoutKeywordsIsGated(t *testing.T) {
	client := testutil.ScriptedClient(testutil.SubstantiveReply(0.9))
	ctx := testCtx(t, client)
	state := buildState()
	state.AppendUser(strings.Repeat("lorem ipsum dolor sit amet again and again ", 4))

	if got := routeAfterHumanInput(ctx, state); got != NodeClassifier {
		t.Errorf("gated long message routed to %q", got)
	}
	if client.CallCount() != 1 {
		t.Errorf("gate called the model %d times, want 1", client.CallCount())
	}
}

func TestRouteAfterHumanInput_SubstantiveGate(t *testing.T) {
	tests := []struct {
		name   string
		reply  string
		stage  Stage
		active string
		want   string
	}{
		{"substantive passes", testutil.SubstantiveReply(0.8), StageBuild, "problem_statement", NodeClassifier},
		{"build chatter re-asks the section", testutil.SubstantiveReply(0.2), StageBuild, "problem_statement", NodeQuestioner},
		{"review chatter bounces", testutil.SubstantiveReply(0.2), StageReview, "", NodeOffTopicResponder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testCtx(t, testutil.ScriptedClient(tt.reply))
			state := buildState()
			state.Stage = tt.stage
			state.Config.ActiveSection = tt.active
			state.AppendUser("short reply")

			if got := routeAfterHumanInput(ctx, state); got != tt.want {
				t.Errorf("routeAfterHumanInput() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRouteAfterHumanInput_GateFallbackOnModelFailure(t *testing.T) {
	// Unparseable gate output falls back to length scoring: a short
	// message re-asks the section, a long one classifies.
	ctx := testCtx(t, testutil.ScriptedClient("not json"))

	state := buildState()
	state.AppendUser("ok")
	if got := routeAfterHumanInput(ctx, state); got != NodeQuestioner {
		t.Errorf("short fallback routed to %q", got)
	}

	state = buildState()
	state.AppendUser(strings.Repeat("detailed answer without magic words ", 4))
	if got := routeAfterHumanInput(testCtx(t, testutil.ScriptedClient("not json")), state); got != NodeClassifier {
		t.Errorf("long fallback routed to %q", got)
	}
}

func TestRouteAfterClassification(t *testing.T) {
	ctx := testCtx(t, testutil.ScriptedClient("unused"))
	tests := []struct {
		intent Intent
		want   string
	}{
		{IntentMetaQuery, NodeMetaResponder},
		{IntentOffTopic, NodeOffTopicResponder},
		{IntentSectionUpdate, NodeUpdater},
		{IntentOffTargetUpdate, NodeUpdater},
		{IntentRevision, NodeUpdater},
	}

	for _, tt := range tests {
		state := buildState()
		state.Intent = tt.intent
		if got := routeAfterClassification(ctx, state); got != tt.want {
			t.Errorf("routeAfterClassification(%s) = %q, want %q", tt.intent, got, tt.want)
		}
	}
}

func TestRouteAfterUpdate(t *testing.T) {
	ctx := testCtx(t, testutil.ScriptedClient("unused"))

	state := buildState()
	state.RunAssembler = true
	if got := routeAfterUpdate(ctx, state); got != NodeAssembler {
		t.Errorf("completed section routed to %q", got)
	}

	state.RunAssembler = false
	if got := routeAfterUpdate(ctx, state); got != NodeHumanInput {
		t.Errorf("in-progress section routed to %q", got)
	}

	// A revision made after the plan is exhausted rebuilds the snapshot
	// even though the updater did not request assembly.
	state.Config.ActiveSection = ""
	if got := routeAfterUpdate(ctx, state); got != NodeAssembler {
		t.Errorf("review-stage revision routed to %q", got)
	}
}

func TestRouteAfterAssembler(t *testing.T) {
	ctx := testCtx(t, testutil.ScriptedClient("unused"))

	state := buildState()
	if got := routeAfterAssembler(ctx, state); got != NodeQuestioner {
		t.Errorf("mid-build assembly routed to %q", got)
	}

	state.AwaitingInput = true
	if got := routeAfterAssembler(ctx, state); got != NodeHumanInput {
		t.Errorf("review handoff routed to %q", got)
	}

	// A dropped assembly in review must not loop back through the
	// questioner.
	state.AwaitingInput = false
	state.Config.ActiveSection = ""
	if got := routeAfterAssembler(ctx, state); got != NodeHumanInput {
		t.Errorf("exhausted plan routed to %q", got)
	}
}
