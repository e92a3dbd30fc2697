package prdflow

import (
	"github.com/randalmurphal/prdflow/flow"
)

// nodeQuestioner asks targeted questions for the active section, or
// hands off to assembly when the execution order is exhausted.
func nodeQuestioner(ctx flow.Context, s ConversationState) (ConversationState, error) {
	section := s.ActiveSection()
	if section == nil {
		s.Stage = StageAssemble
		s.RunAssembler = true
		return s, nil
	}

	catalog := CatalogFrom(ctx)

	// Already asked for this section and still waiting; don't pile on
	// another round of questions.
	if s.AwaitSection == section.Key && s.AwaitingInput {
		return s, nil
	}

	if section.Status == StatusPending {
		section.Status = StatusInProgress
	}

	s.AppendAssistant(sectionQuestions(ctx, &s, section))
	s.RequestInput("gathering information for "+catalog.Title(section.Key), section.Key)
	return s, nil
}
