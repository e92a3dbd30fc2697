package prdflow

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/randalmurphal/prdflow/flow"
)

// nodeAssembler stitches the drafted sections into a single document
// snapshot. Assembly is rate-limited: a request inside the cooldown
// window is dropped outright rather than queued, since the next
// completed section will request it again.
func nodeAssembler(ctx flow.Context, s ConversationState) (ConversationState, error) {
	tuning := TuningFrom(ctx)
	if !s.LastAssembledAt.IsZero() && time.Since(s.LastAssembledAt) < tuning.AssemblerCooldown {
		s.RunAssembler = false
		return s, nil
	}
	s.RunAssembler = false
	s.LastAssembledAt = time.Now().UTC()

	catalog := CatalogFrom(ctx)
	s.Snapshot = assembleDocument(catalog, &s)
	s.Issues = collectIssues(catalog, &s)
	collectGlossary(&s)

	if s.Config.ActiveSection == "" {
		s.Stage = StageReview
		msg := "All sections are drafted. Here's the assembled document:\n\n" + s.Snapshot +
			"\n\nSay \"refine\" to polish it, \"export\" to finalize, or revise any section."
		if len(s.Issues) > 0 {
			msg += "\nOpen issues:\n- " + strings.Join(s.Issues, "\n- ")
		}
		s.AppendAssistant(msg)
		s.RequestInput("document assembled; awaiting review", "")
	} else {
		s.Stage = StageBuild
		s.ClearInput()
	}
	return s, nil
}

// assembleDocument renders the snapshot: a fixed header, the product
// summary, then every drafted section in execution order. Each section
// appears at most once, and a heading the model already wrote into the
// content is not doubled.
func assembleDocument(catalog *Catalog, s *ConversationState) string {
	var b strings.Builder
	b.WriteString("# Product Requirements Document\n\n")
	if s.NormalizedIdea != "" {
		b.WriteString(s.NormalizedIdea)
		b.WriteString("\n\n")
	}

	seen := make(map[string]bool, len(s.Sections))
	for _, key := range s.orderedKeys() {
		if seen[key] {
			continue
		}
		seen[key] = true

		section := s.Sections[key]
		if section.Content == "" {
			continue
		}
		title := catalog.Title(key)
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", title, stripHeading(section.Content, title))
	}
	return strings.TrimSpace(b.String()) + "\n"
}

// stripHeading drops a leading markdown heading that repeats the
// section title.
func stripHeading(content, title string) string {
	trimmed := strings.TrimSpace(content)
	first, rest, found := strings.Cut(trimmed, "\n")
	heading := strings.TrimSpace(strings.TrimLeft(first, "# "))
	if strings.HasPrefix(first, "#") && strings.EqualFold(heading, title) {
		if !found {
			return ""
		}
		return strings.TrimSpace(rest)
	}
	return trimmed
}

// collectIssues lists what still blocks a final document: sections
// invalidated by revisions and mandatory sections without completed
// content.
func collectIssues(catalog *Catalog, s *ConversationState) []string {
	var issues []string
	for _, key := range s.orderedKeys() {
		section := s.Sections[key]
		title := catalog.Title(key)
		switch {
		case section.Status == StatusStale:
			issues = append(issues, title+" needs review after an upstream revision")
		case section.Status != StatusCompleted:
			if entry, ok := catalog.Entry(key); ok && entry.Mandatory {
				issues = append(issues, title+" is not completed")
			}
		}
	}
	return issues
}

var acronymPattern = regexp.MustCompile(`\b[A-Z][A-Z0-9]{1,5}\b`)

// collectGlossary records acronyms used in the document so undefined
// terms surface as issues instead of shipping unexplained.
func collectGlossary(s *ConversationState) {
	if s.Glossary == nil {
		s.Glossary = make(map[string]string)
	}
	for _, term := range acronymPattern.FindAllString(s.Snapshot, -1) {
		if _, ok := s.Glossary[term]; !ok {
			s.Glossary[term] = ""
		}
	}
	for _, term := range sortedGlossaryTerms(s.Glossary) {
		if s.Glossary[term] == "" {
			s.Issues = append(s.Issues, "glossary term "+term+" is undefined")
		}
	}
}

func sortedGlossaryTerms(glossary map[string]string) []string {
	terms := make([]string, 0, len(glossary))
	for term := range glossary {
		terms = append(terms, term)
	}
	sortStrings(terms)
	return terms
}
