package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Claude CLI errors.
var (
	// ErrClaudeNotFound indicates the claude CLI binary was not found.
	ErrClaudeNotFound = errors.New("claude CLI not found")

	// ErrClaudeTimeout indicates the claude CLI execution timed out.
	ErrClaudeTimeout = errors.New("claude CLI timed out")

	// ErrClaudeFailed indicates the claude CLI exited with an error.
	ErrClaudeFailed = errors.New("claude CLI failed")
)

// ClaudeCLI implements Client by shelling out to the claude CLI binary.
type ClaudeCLI struct {
	binaryPath string
	model      string
	timeout    time.Duration
}

// ClaudeConfig configures the Claude CLI client.
type ClaudeConfig struct {
	BinaryPath string        // Path to claude binary (default: "claude")
	Model      string        // Default model (empty = use claude default)
	Timeout    time.Duration // Default timeout (default: 2m)
}

// NewClaudeCLI creates a Claude CLI client.
// Returns ErrClaudeNotFound if the claude binary is not installed.
func NewClaudeCLI(cfg ClaudeConfig) (*ClaudeCLI, error) {
	binaryPath := cfg.BinaryPath
	if binaryPath == "" {
		binaryPath = "claude"
	}
	if _, err := exec.LookPath(binaryPath); err != nil {
		return nil, ErrClaudeNotFound
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 2 * time.Minute
	}

	return &ClaudeCLI{
		binaryPath: binaryPath,
		model:      cfg.Model,
		timeout:    timeout,
	}, nil
}

// Complete sends the request to the claude CLI and parses its JSON
// output. Non-JSON output degrades to the raw text.
func (c *ClaudeCLI) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	args := c.buildArgs(req)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.binaryPath, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: after %v", ErrClaudeTimeout, c.timeout)
		}
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, ctx.Err()
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", ErrClaudeFailed, msg)
		}
		return nil, fmt.Errorf("%w: %v", ErrClaudeFailed, err)
	}

	resp, err := parseClaudeOutput(stdout.Bytes())
	if err != nil {
		// Fall back to raw output.
		resp = &CompletionResponse{Content: strings.TrimSpace(stdout.String())}
	}
	return resp, nil
}

// buildArgs constructs command line arguments for the claude CLI.
func (c *ClaudeCLI) buildArgs(req CompletionRequest) []string {
	args := []string{"--print", "--output-format", "json"}

	model := req.Model
	if model == "" {
		model = c.model
	}
	if model != "" {
		args = append(args, "--model", model)
	}
	if req.SystemPrompt != "" {
		args = append(args, "--system-prompt", req.SystemPrompt)
	}

	args = append(args, "-p", flattenMessages(req.Messages))
	return args
}

// flattenMessages renders role-tagged messages into a single prompt.
// The CLI takes one prompt string; prior turns are labeled inline.
func flattenMessages(messages []Message) string {
	if len(messages) == 1 && messages[0].Role == RoleUser {
		return messages[0].Content
	}
	var b strings.Builder
	for i, m := range messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch m.Role {
		case RoleAssistant:
			b.WriteString("Assistant: ")
		default:
			b.WriteString("User: ")
		}
		b.WriteString(m.Content)
	}
	return b.String()
}

// claudeJSONOutput represents the JSON output from the claude CLI.
type claudeJSONOutput struct {
	Result       string  `json:"result"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	TokensIn     int     `json:"tokens_in"`
	TokensOut    int     `json:"tokens_out"`
	Cost         float64 `json:"cost"`
	CostUSD      float64 `json:"cost_usd"`
	SessionID    string  `json:"session_id"`
}

// parseClaudeOutput parses the JSON output from the claude CLI. The
// JSON object may be surrounded by other content.
func parseClaudeOutput(data []byte) (*CompletionResponse, error) {
	data = bytes.TrimSpace(data)

	var output claudeJSONOutput
	if err := json.Unmarshal(data, &output); err != nil {
		start := bytes.Index(data, []byte("{"))
		end := bytes.LastIndex(data, []byte("}"))
		if start < 0 || end <= start {
			return nil, fmt.Errorf("no json found in output")
		}
		if err := json.Unmarshal(data[start:end+1], &output); err != nil {
			return nil, fmt.Errorf("parse json output: %w", err)
		}
	}

	tokensIn := output.TokensIn
	if tokensIn == 0 {
		tokensIn = output.InputTokens
	}
	tokensOut := output.TokensOut
	if tokensOut == 0 {
		tokensOut = output.OutputTokens
	}
	cost := output.Cost
	if cost == 0 {
		cost = output.CostUSD
	}

	return &CompletionResponse{
		Content: output.Result,
		Usage: Usage{
			InputTokens:  tokensIn,
			OutputTokens: tokensOut,
			CostUSD:      cost,
		},
		SessionID: output.SessionID,
	}, nil
}

// BinaryPath returns the path to the claude binary.
func (c *ClaudeCLI) BinaryPath() string { return c.binaryPath }

// DefaultModel returns the default model.
func (c *ClaudeCLI) DefaultModel() string { return c.model }
