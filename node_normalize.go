package prdflow

import (
	"strings"

	"github.com/randalmurphal/prdflow/flow"
	"github.com/randalmurphal/prdflow/llm"
)

// minIdeaLength is the shortest raw idea accepted without a
// clarification round.
const minIdeaLength = 20

// nodeNormalize turns the raw idea into a neutral product summary and
// seeds the section map. An idea too thin to work with triggers one
// clarification round; whatever arrives after that is accepted as-is.
func nodeNormalize(ctx flow.Context, s ConversationState) (ConversationState, error) {
	idea := collectIdea(&s)

	if len(idea) < minIdeaLength && !s.ClarifyAsked {
		s.ClarifyAsked = true
		s.AppendAssistant("Tell me a bit more about your product idea: what is it, and who is it for?")
		s.RequestInput("clarifying the product idea", "")
		return s, nil
	}

	s.NormalizedIdea = normalizeIdea(ctx, &s, idea)

	catalog := CatalogFrom(ctx)
	s.Sections = catalog.Sections()
	s.SectionOrder = catalog.PlanOrder()
	s.Stage = StagePlan
	s.ClearInput()
	return s, nil
}

// collectIdea joins every user message sent so far, so a clarification
// reply extends the original idea instead of replacing it.
func collectIdea(s *ConversationState) string {
	var parts []string
	for _, m := range s.Messages {
		if m.Role == llm.RoleUser {
			parts = append(parts, strings.TrimSpace(m.Content))
		}
	}
	return strings.Join(parts, "\n")
}
