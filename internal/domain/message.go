// Package domain holds the core data model shared across the advisor.
package domain

import "time"

// Role constants for conversation messages.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is a single turn in a conversation. Immutable once appended.
type Message struct {
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Conversation is the per-session ordered message log.
type Conversation struct {
	SessionID string         `json:"session_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Messages  []Message      `json:"messages"`
	Context   map[string]any `json:"context,omitempty"`
}
