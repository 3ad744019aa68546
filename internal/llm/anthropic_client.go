package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"hopqa/internal/logging"
)

const defaultAnthropicBaseURL = "https://api.anthropic.com/v1"

// AnthropicClient implements Client against the Anthropic Messages API.
type AnthropicClient struct {
	model      string
	apiKey     string
	baseURL    string
	maxTokens  int
	maxRetries int
	httpClient *http.Client
	logger     logging.Logger
}

// NewAnthropicClient creates a client for the given model.
func NewAnthropicClient(model string, config Config, logger logging.Logger) (*AnthropicClient, error) {
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}
	if config.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(config.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultAnthropicBaseURL
	}
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	maxTokens := config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1500
	}
	maxRetries := config.MaxRetries
	if maxRetries == 0 {
		maxRetries = 3
	}

	return &AnthropicClient{
		model:      model,
		apiKey:     config.APIKey,
		baseURL:    baseURL,
		maxTokens:  maxTokens,
		maxRetries: maxRetries,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logging.OrNop(logger),
	}, nil
}

// Model returns the model name used by this client.
func (c *AnthropicClient) Model() string {
	return c.model
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
	MaxTokens int                `json:"max_tokens"`
	// Temperature is a pointer so 0 means "not set" on the wire.
	Temperature *float64 `json:"temperature,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends a Messages API request, retrying transient failures with
// exponential backoff.
func (c *AnthropicClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("no messages provided")
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.maxTokens
	}
	apiReq := anthropicRequest{
		Model:     c.model,
		System:    req.System,
		MaxTokens: maxTokens,
	}
	if req.Temperature > 0 {
		apiReq.Temperature = &req.Temperature
	}
	for _, msg := range req.Messages {
		apiReq.Messages = append(apiReq.Messages, anthropicMessage(msg))
	}

	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			c.logger.Debug("retrying anthropic request (attempt %d/%d)", attempt+1, c.maxRetries)
		}

		resp, retryable, err := c.doRequest(ctx, body)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return nil, fmt.Errorf("anthropic complete: %w", lastErr)
}

func (c *AnthropicClient) doRequest(ctx context.Context, body []byte) (*CompletionResponse, bool, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return nil, false, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	c.logger.Debug("=== LLM Request ===")
	c.logger.Debug("URL: POST %s/messages", c.baseURL)
	c.logger.Debug("Model: %s, body %d bytes, key %s", c.model, len(body), logging.SanitizeAPIKey(c.apiKey))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// Network and timeout errors are worth retrying.
		return nil, true, fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug("=== LLM Response ===")
	c.logger.Debug("Status: %d, %d bytes", resp.StatusCode, len(respBody))

	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, retryable, fmt.Errorf("API error %d: %s", resp.StatusCode, truncateForLog(string(respBody), 500))
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, false, fmt.Errorf("decode response: %w", err)
	}
	if apiResp.Error != nil {
		return nil, false, fmt.Errorf("API error %s: %s", apiResp.Error.Type, apiResp.Error.Message)
	}

	var content strings.Builder
	for _, block := range apiResp.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}

	result := &CompletionResponse{
		Content:    content.String(),
		StopReason: apiResp.StopReason,
		Usage: TokenUsage{
			PromptTokens:     apiResp.Usage.InputTokens,
			CompletionTokens: apiResp.Usage.OutputTokens,
			TotalTokens:      apiResp.Usage.InputTokens + apiResp.Usage.OutputTokens,
		},
	}

	c.logger.Debug("Stop Reason: %s, content %d chars, %d total tokens",
		result.StopReason, len(result.Content), result.Usage.TotalTokens)

	return result, false, nil
}

func truncateForLog(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
