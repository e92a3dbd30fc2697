package prdflow

import (
	"github.com/randalmurphal/prdflow/flow"
)

// nodeClassifier tags the latest message with an intent and resolves
// which section it targets. A section update always lands on the active
// section; off-target updates and revisions follow the classifier's
// target, falling back to the active section when it names none.
func nodeClassifier(ctx flow.Context, s ConversationState) (ConversationState, error) {
	input := s.LastMessage()
	result := classifyIntent(ctx, &s, input)

	s.Intent = Intent(result.Intent)
	switch s.Intent {
	case IntentSectionUpdate:
		s.TargetSection = s.Config.ActiveSection
	case IntentOffTargetUpdate, IntentRevision:
		s.TargetSection = result.TargetSection
		if s.TargetSection == "" {
			s.TargetSection = s.Config.ActiveSection
		}
	default:
		s.TargetSection = ""
	}
	return s, nil
}
