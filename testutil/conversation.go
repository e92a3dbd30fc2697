package testutil

import (
	"encoding/json"
	"fmt"

	"github.com/randalmurphal/prdflow/llm"
)

// ScriptedClient returns a mock LLM client that cycles through the
// given replies in order.
func ScriptedClient(replies ...string) *llm.MockClient {
	return llm.NewMockClient("ok").WithResponses(replies...)
}

// ClassifierReply builds the JSON a classifier call is expected to
// return.
func ClassifierReply(intent, targetSection string, confidence float64) string {
	return mustJSON(map[string]any{
		"intent":         intent,
		"target_section": targetSection,
		"confidence":     confidence,
	})
}

// UpdateReply builds the JSON a section-update call is expected to
// return.
func UpdateReply(content string, score float64, nextQuestions string) string {
	return mustJSON(map[string]any{
		"updated_content":  content,
		"completion_score": score,
		"next_questions":   nextQuestions,
	})
}

// SubstantiveReply builds the JSON a substantive-gate call is expected
// to return.
func SubstantiveReply(score float64) string {
	return mustJSON(map[string]any{"substantive": score})
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("testutil: encode reply: %v", err))
	}
	return string(data)
}
