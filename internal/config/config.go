// Package config loads advisor configuration from YAML with environment
// overlays for credentials.
package config

import "fmt"

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		LLM: LLMConfig{
			Enabled:        true,
			BaseURL:        "https://api.anthropic.com/v1/messages",
			Model:          "claude-sonnet-4-20250514",
			Fallbacks:      []string{"claude-3-5-sonnet-20241022", "claude-3-5-haiku-20241022"},
			MaxTokens:      2048,
			TimeoutSeconds: 60,
		},
		Store: StoreConfig{
			Backend: "file",
		},
		Advisor: AdvisorConfig{
			Language:         "en",
			HistoryLimit:     20,
			PromptTailLimit:  5,
			SummaryThreshold: 10,
		},
		Logging: LoggingConfig{
			Level: "info",
			Style: "pretty",
		},
	}
}
