package prdflow

import (
	"strings"

	"github.com/randalmurphal/prdflow/flow"
)

// minSubstantiveScore is the gate for sending a message into intent
// classification rather than bouncing it as chatter.
const minSubstantiveScore = 0.6

// fastPathLength is the message length past which an on-topic message
// skips the substantive gate entirely.
const fastPathLength = 120

var fastPathKeywords = []string{"product", "users", "user", "value"}

var exportKeywords = []string{"export", "finalize", "finish", "ship it"}

var refineKeywords = []string{"refine", "polish", "improve", "clean up"}

// routeAfterNormalize sends a clarification round to the human and a
// normalized idea on to planning.
func routeAfterNormalize(_ flow.Context, s ConversationState) string {
	if s.AwaitingInput {
		return NodeHumanInput
	}
	return NodePlanner
}

// routeAfterQuestioner hands exhausted plans to assembly, otherwise
// waits for the user's answers.
func routeAfterQuestioner(_ flow.Context, s ConversationState) string {
	if s.Stage == StageAssemble {
		return NodeAssembler
	}
	return NodeHumanInput
}

// routeAfterHumanInput is the main turn dispatcher. The first turns of
// a session feed normalization; review-stage commands go straight to
// the exporter or refiner; everything else passes a substantive gate
// before classification. Long messages naming the product or its users
// skip the gate.
func routeAfterHumanInput(ctx flow.Context, s ConversationState) string {
	if s.Stage == StageInit {
		return NodeNormalize
	}

	input := s.LastMessage()
	lower := strings.ToLower(input)

	if s.Stage == StageReview || s.Stage == StageExport {
		switch {
		case containsAny(lower, exportKeywords):
			return NodeExporter
		case containsAny(lower, refineKeywords):
			return NodeRefiner
		}
	}

	if len(input) >= fastPathLength && containsAny(lower, fastPathKeywords) {
		return NodeClassifier
	}
	if substantiveScore(ctx, &s, input) >= minSubstantiveScore {
		return NodeClassifier
	}
	// Mid-build, a reply that fails the gate gets the section's
	// questions again rather than an off-topic redirect.
	if s.Stage == StageBuild && s.Config.ActiveSection != "" {
		return NodeQuestioner
	}
	return NodeOffTopicResponder
}

// routeAfterClassification dispatches on the tagged intent. All three
// update-shaped intents share the updater; it reads the intent to pick
// its behavior.
func routeAfterClassification(_ flow.Context, s ConversationState) string {
	switch s.Intent {
	case IntentMetaQuery:
		return NodeMetaResponder
	case IntentOffTopic:
		return NodeOffTopicResponder
	default:
		return NodeUpdater
	}
}

// routeAfterUpdate runs assembly when a section just completed or when
// the execution order is already exhausted, so revisions made during
// review land in a rebuilt snapshot. Otherwise it returns to the human
// for the next message.
func routeAfterUpdate(_ flow.Context, s ConversationState) string {
	if s.RunAssembler || s.Config.ActiveSection == "" {
		return NodeAssembler
	}
	return NodeHumanInput
}

// routeAfterAssembler continues questioning while sections remain;
// once the plan is exhausted the document sits with the human.
func routeAfterAssembler(_ flow.Context, s ConversationState) string {
	if s.AwaitingInput || s.Config.ActiveSection == "" {
		return NodeHumanInput
	}
	return NodeQuestioner
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
