package prdflow

import (
	"github.com/randalmurphal/prdflow/flow"
)

// nodeRefiner rewrites the assembled snapshot for consistency and
// tightness without changing its meaning. The refined text replaces the
// snapshot; section drafts are untouched, so a later assembly pass
// rebuilds from the sections.
func nodeRefiner(ctx flow.Context, s ConversationState) (ConversationState, error) {
	if err := s.Validate(RequireSnapshot); err != nil {
		return s, err
	}

	s.Snapshot = refineDocument(ctx, &s)
	s.Stage = StageReview
	s.AppendAssistant("I've polished the document:\n\n" + s.Snapshot +
		"\n\nSay \"export\" to finalize, or keep revising.")
	s.RequestInput("document refined; awaiting review", "")
	return s, nil
}
