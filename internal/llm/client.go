// Package llm wraps an external chat-completion provider supporting tool
// use, with an ordered model-fallback chain and a process-wide availability
// state.
package llm

import (
	"context"
	"fmt"
	"time"
)

// Role constants for messages.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is a single turn in a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ToolDefinition describes a tool the LLM can invoke.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

// CompletionRequest is the input to a Complete call.
type CompletionRequest struct {
	Model       string           `json:"model,omitempty"`
	System      string           `json:"system,omitempty"`
	Messages    []Message        `json:"messages"`
	Tools       []ToolDefinition `json:"tools,omitempty"`
	MaxTokens   int              `json:"maxTokens,omitempty"`
	Temperature *float64         `json:"temperature,omitempty"`
}

// ToolCall is an LLM request to invoke a tool.
type ToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// Usage tracks token consumption.
type Usage struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
}

// Total returns prompt plus completion tokens.
func (u Usage) Total() int { return u.InputTokens + u.OutputTokens }

// CompletionResponse is the result of a completion.
type CompletionResponse struct {
	Content    string        `json:"content"`
	StopReason string        `json:"stopReason,omitempty"`
	ToolCalls  []ToolCall    `json:"toolCalls,omitempty"`
	Usage      Usage         `json:"usage"`
	Model      string        `json:"model,omitempty"`
	Duration   time.Duration `json:"duration,omitempty"`
}

// Client is the interface all LLM providers must implement.
type Client interface {
	// Complete sends a request and returns the full response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// Name returns the provider name (e.g., "anthropic").
	Name() string
}

// ProviderError is returned when an LLM provider rejects a request.
type ProviderError struct {
	Provider string
	Message  string
	Code     int // HTTP status code (401, 404, 429, 500, ...)
}

func (e *ProviderError) Error() string {
	if e.Code > 0 {
		return fmt.Sprintf("%s: %d %s", e.Provider, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}
