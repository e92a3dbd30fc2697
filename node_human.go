package prdflow

import (
	"encoding/json"
	"fmt"

	"github.com/randalmurphal/prdflow/flow"
)

// nodeHumanInput absorbs one human turn. It runs in two ways: a resume
// delivers the user's reply as the resume payload, while a fresh
// re-entry finds the message already staged in LatestInput and gets a
// nil payload. Either way the message lands in the log, the await flags
// clear, and the turn counter advances.
func nodeHumanInput(ctx flow.Context, s ConversationState) (ConversationState, error) {
	switch payload := flow.ResumeValue(ctx).(type) {
	case nil:
		// Fresh-message path: LatestInput was staged by the caller.
	case string:
		s.LatestInput = payload
	case map[string]any:
		if msg, ok := payload["data"].(string); ok {
			s.LatestInput = msg
		}
		if err := mergePayload(&s, payload); err != nil {
			return s, err
		}
	default:
		return s, fmt.Errorf("unsupported resume payload type %T", payload)
	}

	if err := s.Validate(RequireInput); err != nil {
		return s, err
	}

	if s.LastMessage() != s.LatestInput {
		s.AppendUser(s.LatestInput)
	}
	s.ClearInput()
	s.Config.TurnCounter++
	return s, nil
}

// mergePayload applies the non-message keys of a structured resume
// payload onto the state via a JSON round trip, so a payload can flip
// fields like rag_enabled or stage alongside the message.
func mergePayload(s *ConversationState, payload map[string]any) error {
	extras := make(map[string]any, len(payload))
	for k, v := range payload {
		if k != "data" {
			extras[k] = v
		}
	}
	if len(extras) == 0 {
		return nil
	}
	raw, err := json.Marshal(extras)
	if err != nil {
		return fmt.Errorf("encode resume payload: %w", err)
	}
	if err := json.Unmarshal(raw, s); err != nil {
		return fmt.Errorf("apply resume payload: %w", err)
	}
	return nil
}
