package prdflow

import (
	"strings"
	"time"

	"github.com/randalmurphal/prdflow/flow"
)

// minProgressScore is the completion score under which an update is
// judged too thin and the user is asked to elaborate.
const minProgressScore = 0.3

// nodeUpdater merges the user's message into the target section and
// drives the section lifecycle: completion past the threshold advances
// the pointer and requests assembly, a revision re-opens the section
// and flags its completed dependents, and a thin update asks for more.
func nodeUpdater(ctx flow.Context, s ConversationState) (ConversationState, error) {
	catalog := CatalogFrom(ctx)
	section := s.Sections[s.TargetSection]
	if section == nil {
		s.AppendAssistant("I couldn't tell which section that belongs to. Could you rephrase?")
		s.RequestInput("resolving the target section", s.Config.ActiveSection)
		return s, nil
	}

	result := updateSection(ctx, &s, section, s.LastMessage())
	section.Content = result.UpdatedContent
	section.CompletionScore = result.CompletionScore
	section.LastUpdated = time.Now().UTC()

	title := catalog.Title(section.Key)
	switch {
	case s.Intent == IntentRevision:
		// A revision never auto-completes or advances the pointer; the
		// user sees the ripple and decides what to revisit.
		section.Status = StatusInProgress
		msg := "Updated " + title + "."
		if affected := MarkStale(s.Sections, section.Key); len(affected) > 0 {
			titles := make([]string, len(affected))
			for i, key := range affected {
				titles[i] = catalog.Title(key)
			}
			sortStrings(titles)
			msg += " These sections depend on it and need review: " + strings.Join(titles, ", ") + "."
		}
		s.AppendAssistant(msg)
		s.RequestInput("revising "+title, section.Key)

	case section.Completable():
		section.Status = StatusCompleted
		s.AppendAssistant("✅ " + title + " section completed!")
		if section.Key == s.Config.ActiveSection {
			s.AdvanceFrom(section.Key)
		}
		s.RunAssembler = true

	case result.CompletionScore < minProgressScore:
		section.Status = StatusInProgress
		msg := "I need more detail for " + title + "."
		if result.NextQuestions != "" {
			msg += "\n" + result.NextQuestions
		}
		s.AppendAssistant(msg)
		s.RequestInput("needs more detail for "+title, section.Key)

	default:
		section.Status = StatusInProgress
		if result.NextQuestions != "" && !strings.EqualFold(result.NextQuestions, "complete") {
			s.AppendAssistant(result.NextQuestions)
		}
		s.RequestInput("building "+title, section.Key)
	}

	tuning := TuningFrom(ctx)
	if tuning.SummaryInterval > 0 && s.Config.TurnCounter > 0 &&
		s.Config.TurnCounter%tuning.SummaryInterval == 0 {
		refreshSummary(ctx, &s)
	}
	return s, nil
}
