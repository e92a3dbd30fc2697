package prdflow

import (
	"fmt"
	"strings"

	"github.com/randalmurphal/prdflow/flow"
)

// nodePlanner fixes the execution order for mandatory sections and
// points the workflow at the first one. The order itself comes from the
// catalog's topological sort; this stage only announces it.
func nodePlanner(ctx flow.Context, s ConversationState) (ConversationState, error) {
	if err := s.Validate(RequireIdea, RequireSections, RequireOrder); err != nil {
		return s, err
	}

	catalog := CatalogFrom(ctx)
	s.Config.ActiveSection = s.SectionOrder[0]
	s.Stage = StageBuild

	var b strings.Builder
	b.WriteString("Here's the plan. We'll build the document section by section:\n")
	for i, key := range s.SectionOrder {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, catalog.Title(key))
	}
	b.WriteString("Starting with ")
	b.WriteString(catalog.Title(s.Config.ActiveSection))
	b.WriteString(".")
	s.AppendAssistant(b.String())

	return s, nil
}
