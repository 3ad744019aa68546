package llm

import (
	"context"
	"time"
)

// Client represents any LLM provider.
type Client interface {
	// Complete sends messages and returns a response (non-streaming).
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// Model returns the model identifier.
	Model() string
}

// CompletionRequest contains all parameters for an LLM completion.
type CompletionRequest struct {
	System      string    `json:"system,omitempty"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// CompletionResponse is the LLM's response.
type CompletionResponse struct {
	Content    string     `json:"content"`
	StopReason string     `json:"stop_reason"`
	Usage      TokenUsage `json:"usage"`
}

// TokenUsage tracks token consumption.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Message represents a conversation message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Config holds provider connection settings shared by HTTP-based clients.
type Config struct {
	APIKey     string
	BaseURL    string
	MaxTokens  int
	Timeout    time.Duration
	MaxRetries int
}
