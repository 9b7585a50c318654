package config

import (
	"os"
	"regexp"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} patterns in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// Unset variables are left unchanged.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		return match
	})
}

// envOverrides are credential and tuning values read from ADVISOR_*
// environment variables. They win over the config file.
type envOverrides struct {
	APIKey   string `envconfig:"API_KEY"`
	Model    string `envconfig:"MODEL"`
	BaseURL  string `envconfig:"BASE_URL"`
	LogLevel string `envconfig:"LOG_LEVEL"`
}

// Load reads the config file, applies defaults, expands credential
// references, and overlays ADVISOR_* environment variables.
// A missing file produces defaults only.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}

	applyDefaults(&cfg)
	cfg.LLM.APIKey = expandEnvVars(cfg.LLM.APIKey)
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// applyDefaults fills zero-value fields with sensible defaults.
func applyDefaults(cfg *Config) {
	def := Defaults()
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = def.LLM.BaseURL
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = def.LLM.Model
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = def.LLM.MaxTokens
	}
	if cfg.LLM.TimeoutSeconds == 0 {
		cfg.LLM.TimeoutSeconds = def.LLM.TimeoutSeconds
	}
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = def.Store.Backend
	}
	if cfg.Advisor.Language == "" {
		cfg.Advisor.Language = def.Advisor.Language
	}
	if cfg.Advisor.HistoryLimit == 0 {
		cfg.Advisor.HistoryLimit = def.Advisor.HistoryLimit
	}
	if cfg.Advisor.PromptTailLimit == 0 {
		cfg.Advisor.PromptTailLimit = def.Advisor.PromptTailLimit
	}
	if cfg.Advisor.SummaryThreshold == 0 {
		cfg.Advisor.SummaryThreshold = def.Advisor.SummaryThreshold
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
	if cfg.Logging.Style == "" {
		cfg.Logging.Style = def.Logging.Style
	}
}

// applyEnvOverrides overlays ADVISOR_* environment variables.
func applyEnvOverrides(cfg *Config) {
	var env envOverrides
	if err := envconfig.Process("ADVISOR", &env); err != nil {
		return
	}
	if env.APIKey != "" {
		cfg.LLM.APIKey = env.APIKey
	}
	if env.Model != "" {
		cfg.LLM.Model = env.Model
	}
	if env.BaseURL != "" {
		cfg.LLM.BaseURL = env.BaseURL
	}
	if env.LogLevel != "" {
		cfg.Logging.Level = strings.ToLower(env.LogLevel)
	}
}
