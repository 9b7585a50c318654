package config

// Config is the root configuration for the advisor.
type Config struct {
	LLM     LLMConfig     `yaml:"llm,omitempty"`
	Store   StoreConfig   `yaml:"store,omitempty"`
	Advisor AdvisorConfig `yaml:"advisor,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
}

// LLMConfig configures the chat-completion provider.
type LLMConfig struct {
	Enabled        bool     `yaml:"enabled"`
	APIKey         string   `yaml:"apiKey,omitempty"` // may reference ${ENV_VAR}
	BaseURL        string   `yaml:"baseUrl,omitempty"`
	Model          string   `yaml:"model,omitempty"`     // primary model id
	Fallbacks      []string `yaml:"fallbacks,omitempty"` // tried in order after the primary
	MaxTokens      int      `yaml:"maxTokens,omitempty"`
	TimeoutSeconds int      `yaml:"timeoutSeconds,omitempty"`
}

// Models returns the ordered model preference list, primary first.
func (c LLMConfig) Models() []string {
	if c.Model == "" {
		return c.Fallbacks
	}
	return append([]string{c.Model}, c.Fallbacks...)
}

// StoreConfig selects the durable conversation backend.
type StoreConfig struct {
	Backend string `yaml:"backend,omitempty"` // "file" | "sqlite" | "memory"
	Path    string `yaml:"path,omitempty"`    // directory (file) or db path (sqlite)
}

// AdvisorConfig tunes orchestrator behavior.
type AdvisorConfig struct {
	Language         string `yaml:"language,omitempty"`         // default reply language: "en" | "vi"
	HistoryLimit     int    `yaml:"historyLimit,omitempty"`     // messages sent to the LLM
	PromptTailLimit  int    `yaml:"promptTailLimit,omitempty"`  // messages shown in the system prompt
	SummaryThreshold int    `yaml:"summaryThreshold,omitempty"` // messages before Summarize kicks in
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	Style string `yaml:"style,omitempty"` // "pretty" | "json"
}
