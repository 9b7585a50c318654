package domain

// ToolCall is a structured request from the LLM to invoke a local tool.
type ToolCall struct {
	ID        string         `json:"id,omitempty"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ToolResult is the uniform envelope returned by tool dispatch.
// When Success is false, Error carries a non-empty reason.
type ToolResult struct {
	Tool    string `json:"tool"`
	Success bool   `json:"success"`
	Result  any    `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Suggestion is a follow-up action hint attached to a reply.
type Suggestion struct {
	Kind        string `json:"kind"`
	Action      string `json:"action"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// ResponseMeta carries per-turn bookkeeping.
type ResponseMeta struct {
	TokensUsed     int     `json:"tokens_used"`
	ResponseTimeMs int64   `json:"response_time_ms"`
	Model          string  `json:"model"`
	Confidence     float64 `json:"confidence"`
	Error          string  `json:"error,omitempty"`
}

// Response is the advisor's structured reply for one turn.
type Response struct {
	Reply       string       `json:"reply"`
	SessionID   string       `json:"session_id"`
	Suggestions []Suggestion `json:"suggestions,omitempty"`
	ToolResults []ToolResult `json:"tool_results,omitempty"`
	Metadata    ResponseMeta `json:"metadata"`
}
