package prdflow

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/randalmurphal/prdflow/llm"
	"github.com/randalmurphal/prdflow/task"
)

// =============================================================================
// LLM Capability Wrappers
// =============================================================================
// Each wrapper renders a prompt template, calls the model picked for the
// task type, accumulates token usage on the state, and parses the reply.
// Structured calls fall back to deterministic heuristics when the model
// output cannot be parsed, so a malformed reply never stalls a session.

// complete renders nothing itself: it sends an already-rendered prompt
// as a single user message and returns the trimmed reply.
func complete(ctx context.Context, state *ConversationState, t task.Type, rendered string) (string, error) {
	client := MustLLM(ctx)
	resp, err := client.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: rendered}},
		Model:    string(Models(ctx).Model(t)),
	})
	if err != nil {
		return "", err
	}
	state.AddTokens(resp.Usage)
	return strings.TrimSpace(resp.Content), nil
}

// render loads and renders a prompt template by name.
func render(ctx context.Context, name string, vars map[string]any) (string, error) {
	return MustPrompts(ctx).LoadWithVars(name, vars)
}

// extractJSON pulls the first JSON object out of a model reply that may
// wrap it in prose or code fences.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

// normalizeIdea rewrites the raw idea as a neutral product summary.
// On model failure it falls back to the whitespace-collapsed raw text.
func normalizeIdea(ctx context.Context, state *ConversationState, idea string) string {
	rendered, err := render(ctx, "normalize-idea", map[string]any{
		"Idea":    idea,
		"Context": state.RAGContext,
	})
	if err == nil {
		if out, cerr := complete(ctx, state, task.Normalize, rendered); cerr == nil && out != "" {
			return out
		}
	}
	return strings.Join(strings.Fields(idea), " ")
}

// intentResult is the parsed classifier reply.
type intentResult struct {
	Intent        string  `json:"intent"`
	TargetSection string  `json:"target_section"`
	Confidence    float64 `json:"confidence"`
}

// minIntentConfidence is the floor under which a parsed classification
// is treated as off-topic rather than acted on.
const minIntentConfidence = 0.6

// classifyIntent routes a user message to an intent. Unparseable model
// output is treated as a section update at half confidence so drafting
// keeps moving; a parsed but uncertain result is downgraded to
// off-topic instead.
func classifyIntent(ctx context.Context, state *ConversationState, input string) intentResult {
	fallback := intentResult{Intent: string(IntentSectionUpdate), Confidence: 0.5}

	catalog := CatalogFrom(ctx)
	rendered, err := render(ctx, "classify-intent", map[string]any{
		"ActiveTitle": catalog.Title(state.Config.ActiveSection),
		"SectionKeys": catalog.Keys(),
		"Input":       input,
	})
	if err != nil {
		return fallback
	}
	out, err := complete(ctx, state, task.Classify, rendered)
	if err != nil {
		return fallback
	}

	var result intentResult
	if err := json.Unmarshal([]byte(extractJSON(out)), &result); err != nil || !ValidIntent(result.Intent) {
		return fallback
	}
	if result.Confidence < minIntentConfidence {
		return intentResult{Intent: string(IntentOffTopic), Confidence: result.Confidence}
	}
	if result.TargetSection != "" && !catalog.Has(result.TargetSection) {
		result.TargetSection = ""
	}
	return result
}

// updateResult is the parsed section-update reply.
type updateResult struct {
	UpdatedContent  string  `json:"updated_content"`
	CompletionScore float64 `json:"completion_score"`
	NextQuestions   string  `json:"next_questions"`
}

// updateSection merges user input into a section draft. The fallback
// appends the input verbatim and scores the result against the
// checklist by keyword presence.
func updateSection(ctx context.Context, state *ConversationState, section *Section, input string) updateResult {
	catalog := CatalogFrom(ctx)
	rendered, err := render(ctx, "update-section", map[string]any{
		"SectionTitle": catalog.Title(section.Key),
		"Idea":         state.NormalizedIdea,
		"Content":      section.Content,
		"Input":        input,
		"Context":      state.RAGContext,
		"Checklist":    section.Checklist,
	})
	if err == nil {
		if out, cerr := complete(ctx, state, task.Update, rendered); cerr == nil {
			var result updateResult
			if jerr := json.Unmarshal([]byte(extractJSON(out)), &result); jerr == nil && result.UpdatedContent != "" {
				result.CompletionScore = clamp01(result.CompletionScore)
				return result
			}
		}
	}

	content := section.Content
	if content != "" {
		content += "\n\n"
	}
	content += strings.TrimSpace(input)
	return updateResult{
		UpdatedContent:  content,
		CompletionScore: checklistScore(content, section.Checklist),
	}
}

// substantiveScore judges whether input carries real product
// information. The fallback scores by input length, saturating at 200
// characters.
func substantiveScore(ctx context.Context, state *ConversationState, input string) float64 {
	rendered, err := render(ctx, "substantive-check", map[string]any{"Input": input})
	if err == nil {
		if out, cerr := complete(ctx, state, task.Substantive, rendered); cerr == nil {
			var result struct {
				Substantive float64 `json:"substantive"`
			}
			if jerr := json.Unmarshal([]byte(extractJSON(out)), &result); jerr == nil {
				return clamp01(result.Substantive)
			}
		}
	}
	return clamp01(float64(len(input)) / 200)
}

// sectionQuestions asks the model for targeted questions for the
// section. The fallback walks the checklist.
func sectionQuestions(ctx context.Context, state *ConversationState, section *Section) string {
	catalog := CatalogFrom(ctx)
	rendered, err := render(ctx, "section-questions", map[string]any{
		"SectionTitle": catalog.Title(section.Key),
		"Idea":         state.NormalizedIdea,
		"Summary":      state.Summary,
		"Content":      section.Content,
		"Checklist":    section.Checklist,
	})
	if err == nil {
		if out, cerr := complete(ctx, state, task.Question, rendered); cerr == nil && out != "" {
			return out
		}
	}

	var b strings.Builder
	b.WriteString("To flesh out ")
	b.WriteString(catalog.Title(section.Key))
	b.WriteString(", tell me about:\n")
	for _, item := range section.Checklist {
		b.WriteString("- ")
		b.WriteString(item)
		b.WriteString("\n")
	}
	return b.String()
}

// refreshSummary rewrites the rolling conversation summary. On failure
// the previous summary is kept.
func refreshSummary(ctx context.Context, state *ConversationState) {
	messages := state.Messages
	if len(messages) > 12 {
		messages = messages[len(messages)-12:]
	}
	rendered, err := render(ctx, "summarize-conversation", map[string]any{
		"Previous": state.Summary,
		"Messages": messages,
	})
	if err != nil {
		return
	}
	if out, cerr := complete(ctx, state, task.Summarize, rendered); cerr == nil && out != "" {
		state.Summary = out
	}
}

// refineDocument polishes the assembled snapshot. On failure the
// snapshot is returned unchanged.
func refineDocument(ctx context.Context, state *ConversationState) string {
	rendered, err := render(ctx, "refine-document", map[string]any{
		"Document": state.Snapshot,
		"Issues":   state.Issues,
	})
	if err != nil {
		return state.Snapshot
	}
	out, cerr := complete(ctx, state, task.Refine, rendered)
	if cerr != nil || out == "" {
		return state.Snapshot
	}
	return out
}

// checklistScore is the fraction of checklist items with at least one
// significant word present in the content.
func checklistScore(content string, checklist []string) float64 {
	if len(checklist) == 0 {
		return 0
	}
	lower := strings.ToLower(content)
	hits := 0
	for _, item := range checklist {
		for _, word := range strings.Fields(strings.ToLower(item)) {
			if len(word) >= 5 && strings.Contains(lower, word) {
				hits++
				break
			}
		}
	}
	return float64(hits) / float64(len(checklist))
}

func clamp01(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}
