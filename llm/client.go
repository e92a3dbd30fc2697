// Package llm defines the text-generation capability boundary: a
// request/response client interface, a subprocess-backed Claude CLI
// implementation, and a mock for tests.
package llm

import "context"

// Role tags a message with its speaker.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one role-tagged turn in a completion request.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Usage reports token consumption for a completion.
type Usage struct {
	InputTokens  int     `json:"inputTokens"`
	OutputTokens int     `json:"outputTokens"`
	CostUSD      float64 `json:"costUsd"`
}

// CompletionRequest is a role-tagged instruction set for the model.
type CompletionRequest struct {
	SystemPrompt string    `json:"systemPrompt,omitempty"`
	Messages     []Message `json:"messages"`
	Model        string    `json:"model,omitempty"`
}

// CompletionResponse is the model's reply.
type CompletionResponse struct {
	Content   string `json:"content"`
	Usage     Usage  `json:"usage"`
	SessionID string `json:"sessionId,omitempty"`
}

// Client is the text-generation capability. Implementations must be
// safe for concurrent use.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}
