package prdflow

import (
	"fmt"
	"strings"

	"github.com/randalmurphal/prdflow/flow"
)

// nodeMetaResponder answers questions about the session itself with a
// progress report built from the section statuses. No section content
// changes on this path.
func nodeMetaResponder(ctx flow.Context, s ConversationState) (ConversationState, error) {
	catalog := CatalogFrom(ctx)
	byStatus := s.SectionsByStatus()

	var b strings.Builder
	fmt.Fprintf(&b, "Progress: %d of %d sections completed (stage: %s).\n",
		s.CompletedCount(), len(s.Sections), s.Stage)
	writeStatusLine(&b, catalog, "Completed", byStatus[StatusCompleted])
	writeStatusLine(&b, catalog, "In progress", byStatus[StatusInProgress])
	writeStatusLine(&b, catalog, "Needs review", byStatus[StatusStale])
	writeStatusLine(&b, catalog, "Not started", byStatus[StatusPending])
	if active := s.Config.ActiveSection; active != "" {
		fmt.Fprintf(&b, "We're currently working on %s.", catalog.Title(active))
	}

	s.AppendAssistant(strings.TrimSpace(b.String()))
	s.RequestInput("answered a status question", s.AwaitSection)
	return s, nil
}

func writeStatusLine(b *strings.Builder, catalog *Catalog, label string, keys []string) {
	if len(keys) == 0 {
		return
	}
	titles := make([]string, len(keys))
	for i, key := range keys {
		titles[i] = catalog.Title(key)
	}
	fmt.Fprintf(b, "%s: %s\n", label, strings.Join(titles, ", "))
}

// nodeOffTopicResponder acknowledges an unrelated message and steers
// the conversation back to the section being built.
func nodeOffTopicResponder(ctx flow.Context, s ConversationState) (ConversationState, error) {
	catalog := CatalogFrom(ctx)
	msg := "Let's keep building the document."
	if active := s.Config.ActiveSection; active != "" {
		msg = fmt.Sprintf("Let's get back to the %s section. Anything to add there?",
			catalog.Title(active))
	}
	s.AppendAssistant(msg)
	s.RequestInput("redirecting to the document", s.Config.ActiveSection)
	return s, nil
}
