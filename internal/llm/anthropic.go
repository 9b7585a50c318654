package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	anthropicVersion = "2023-06-01"
	defaultBaseURL   = "https://api.anthropic.com/v1/messages"
	defaultMaxTokens = 2048
	transportRetries = 2
)

// AnthropicClient is a direct HTTP client for the Anthropic messages API.
type AnthropicClient struct {
	apiKey    string
	baseURL   string
	maxTokens int
	client    *http.Client
}

func NewAnthropicClient(apiKey, baseURL string, timeout time.Duration) *AnthropicClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &AnthropicClient{
		apiKey:    apiKey,
		baseURL:   baseURL,
		maxTokens: defaultMaxTokens,
		client:    &http.Client{Timeout: timeout},
	}
}

func (c *AnthropicClient) Name() string { return "anthropic" }

// Complete sends a non-streaming messages request. Network failures and
// 5xx responses are retried a few times with exponential backoff; API
// errors come back as *ProviderError carrying the status code.
func (c *AnthropicClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	payload, err := json.Marshal(c.buildRequestBody(req))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var result anthropicResponse
	op := func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("x-api-key", c.apiKey)
		httpReq.Header.Set("anthropic-version", anthropicVersion)

		resp, err := c.client.Do(httpReq)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			perr := &ProviderError{
				Provider: c.Name(),
				Message:  apiErrorMessage(body),
				Code:     resp.StatusCode,
			}
			if resp.StatusCode >= 500 {
				return perr
			}
			return backoff.Permanent(perr)
		}

		if err := json.Unmarshal(body, &result); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to parse response: %w", err))
		}
		return nil
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), transportRetries), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		return nil, err
	}
	return result.toCompletion(time.Since(start)), nil
}

func (c *AnthropicClient) buildRequestBody(req CompletionRequest) map[string]any {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}

	body := map[string]any{
		"model":      req.Model,
		"messages":   messagesToWire(req.Messages),
		"max_tokens": maxTokens,
	}
	if req.System != "" {
		body["system"] = req.System
	}
	if req.Temperature != nil {
		body["temperature"] = *req.Temperature
	}
	if len(req.Tools) > 0 {
		tools := make([]map[string]any, len(req.Tools))
		for i, t := range req.Tools {
			tools[i] = map[string]any{
				"name":         t.Name,
				"description":  t.Description,
				"input_schema": t.InputSchema,
			}
		}
		body["tools"] = tools
	}
	return body
}

func messagesToWire(msgs []Message) []map[string]string {
	wire := make([]map[string]string, len(msgs))
	for i, m := range msgs {
		wire[i] = map[string]string{"role": m.Role, "content": m.Content}
	}
	return wire
}

func apiErrorMessage(body []byte) string {
	var parsed struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		if parsed.Error.Type != "" {
			return parsed.Error.Type + ": " + parsed.Error.Message
		}
		return parsed.Error.Message
	}
	return strings.TrimSpace(string(body))
}

// API response structures.

type anthropicResponse struct {
	ID         string           `json:"id"`
	Content    []contentBlock   `json:"content"`
	Model      string           `json:"model"`
	StopReason string           `json:"stop_reason"`
	Usage      anthropicUsage   `json:"usage"`
}

type contentBlock struct {
	Type  string         `json:"type"`
	Text  string         `json:"text,omitempty"`
	ID    string         `json:"id,omitempty"`
	Name  string         `json:"name,omitempty"`
	Input map[string]any `json:"input,omitempty"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

func (r *anthropicResponse) toCompletion(duration time.Duration) *CompletionResponse {
	var content strings.Builder
	var toolCalls []ToolCall

	for _, block := range r.Content {
		switch block.Type {
		case "text":
			content.WriteString(block.Text)
		case "tool_use":
			args := block.Input
			if args == nil {
				args = map[string]any{}
			}
			toolCalls = append(toolCalls, ToolCall{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: args,
			})
		}
	}

	return &CompletionResponse{
		Content:    content.String(),
		StopReason: r.StopReason,
		ToolCalls:  toolCalls,
		Usage: Usage{
			InputTokens:  r.Usage.InputTokens,
			OutputTokens: r.Usage.OutputTokens,
		},
		Model:    r.Model,
		Duration: duration,
	}
}
