package llm

import (
	"context"
	"sync"
)

// MockClient is a scriptable Client for tests. Responses are returned
// in order and cycle once exhausted.
type MockClient struct {
	mu           sync.Mutex
	defaultResp  string
	responses    []string
	completeFunc func(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	calls        int
	requests     []CompletionRequest
}

// NewMockClient creates a mock that returns defaultResponse when no
// scripted responses are set.
func NewMockClient(defaultResponse string) *MockClient {
	return &MockClient{defaultResp: defaultResponse}
}

// WithResponses scripts sequential responses. After the last one,
// responses cycle from the start.
func (m *MockClient) WithResponses(responses ...string) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = responses
	return m
}

// WithCompleteFunc installs a custom completion handler, overriding
// scripted responses.
func (m *MockClient) WithCompleteFunc(fn func(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completeFunc = fn
	return m
}

// Complete returns the next scripted response.
func (m *MockClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	m.mu.Lock()
	fn := m.completeFunc
	var content string
	if fn == nil {
		if len(m.responses) > 0 {
			content = m.responses[m.calls%len(m.responses)]
		} else {
			content = m.defaultResp
		}
	}
	m.calls++
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	return &CompletionResponse{Content: content}, nil
}

// CallCount returns how many times Complete was invoked.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Requests returns a copy of all received requests.
func (m *MockClient) Requests() []CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CompletionRequest, len(m.requests))
	copy(out, m.requests)
	return out
}
