package llm

import (
	"context"
	"fmt"
	"sync"
)

// MockClient implements Client for testing. Responses are returned in FIFO
// order; when the queue is empty the fallback response (or an error) is used.
type MockClient struct {
	mu        sync.Mutex
	model     string
	responses []string
	fallback  string
	err       error
	requests  []CompletionRequest
}

// NewMockClient creates a mock that replays the given responses in order.
func NewMockClient(responses ...string) *MockClient {
	return &MockClient{
		model:     "mock-model",
		responses: responses,
	}
}

// WithFallback sets the response used after the queue is drained.
func (m *MockClient) WithFallback(content string) *MockClient {
	m.fallback = content
	return m
}

// WithError makes every call fail with err.
func (m *MockClient) WithError(err error) *MockClient {
	m.err = err
	return m
}

// Complete returns the next queued response.
func (m *MockClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}

	content := m.fallback
	if len(m.responses) > 0 {
		content = m.responses[0]
		m.responses = m.responses[1:]
	} else if m.fallback == "" {
		return nil, fmt.Errorf("mock client: no responses left")
	}

	return &CompletionResponse{
		Content:    content,
		StopReason: "end_turn",
		Usage:      TokenUsage{PromptTokens: 100, CompletionTokens: 50, TotalTokens: 150},
	}, nil
}

// Model returns the mock model identifier.
func (m *MockClient) Model() string {
	return m.model
}

// Requests returns a copy of every request seen so far.
func (m *MockClient) Requests() []CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CompletionRequest, len(m.requests))
	copy(out, m.requests)
	return out
}
