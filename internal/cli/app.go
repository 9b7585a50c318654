package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/logimind/advisor/internal/advisor"
	"github.com/logimind/advisor/internal/assessment"
	"github.com/logimind/advisor/internal/config"
	"github.com/logimind/advisor/internal/llm"
	"github.com/logimind/advisor/internal/logging"
	"github.com/logimind/advisor/internal/prompt"
	"github.com/logimind/advisor/internal/riskengine"
	"github.com/logimind/advisor/internal/store"
	"github.com/logimind/advisor/internal/tools"
)

// app is the assembled advisor stack behind the ask and chat commands.
type app struct {
	cfg   config.Config
	orch  *advisor.Orchestrator
	slot  *riskengine.Slot
	close func() error
}

// buildApp loads configuration and wires the full pipeline. When
// assessmentFile is non-empty its JSON content is published as the current
// risk assessment.
func buildApp(assessmentFile string) (*app, error) {
	cfg, err := config.Load(paths.Config)
	if err != nil {
		log.Warn().Err(err).Msg("config load failed, using defaults")
		cfg = config.Defaults()
	}
	applyLogConfig(cfg.Logging)

	if err := paths.EnsureDirs(); err != nil {
		return nil, err
	}

	backend, closeFn, err := openBackend(cfg.Store)
	if err != nil {
		return nil, err
	}
	st := store.New(backend, log)

	slot := riskengine.NewSlot()
	if assessmentFile != "" {
		if err := publishAssessment(slot, assessmentFile); err != nil {
			return nil, err
		}
	}

	registry := tools.DefaultRegistry()
	executor := tools.NewExecutor(registry, log)
	tools.NewHandlers(slot, nil, tools.NewExportStore(0), log).RegisterAll(executor)

	reader := assessment.NewReader(slot, nil, log)
	builder := prompt.NewBuilder(registry, cfg.Advisor.PromptTailLimit)

	var client llm.Client
	if cfg.LLM.Enabled && cfg.LLM.APIKey != "" {
		base := llm.NewAnthropicClient(cfg.LLM.APIKey, cfg.LLM.BaseURL,
			time.Duration(cfg.LLM.TimeoutSeconds)*time.Second)
		client = llm.NewFallbackClient(base, cfg.LLM.Models(), llm.NewAvailability(), log)
	} else {
		log.Info().Msg("llm path disabled, deterministic responder only")
	}

	orch := advisor.NewOrchestrator(st, reader, builder, executor, client, log).
		WithHistoryLimit(cfg.Advisor.HistoryLimit).
		WithMaxTokens(cfg.LLM.MaxTokens).
		WithSummaryThreshold(cfg.Advisor.SummaryThreshold)

	return &app{cfg: cfg, orch: orch, slot: slot, close: closeFn}, nil
}

// applyLogConfig rebuilds the root logger once the config file is known.
// The --log-level flag still wins over the configured level.
func applyLogConfig(cfg config.LoggingConfig) {
	level := logLevel
	if level == "" {
		level = cfg.Level
	}
	if cfg.Style == "json" {
		log = logging.NewJSON(nil, level)
		return
	}
	log = logging.New(nil, level)
}

func openBackend(cfg config.StoreConfig) (store.Backend, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case "memory":
		return store.NewMemoryBackend(), noop, nil
	case "sqlite":
		path := cfg.Path
		if path == "" {
			path = filepath.Join(paths.Data, "conversations.db")
		}
		b, err := store.OpenSQLite(path, log)
		if err != nil {
			return nil, nil, err
		}
		return b, b.Close, nil
	default:
		dir := cfg.Path
		if dir == "" {
			dir = paths.Conversations
		}
		b, err := store.NewFileBackend(dir)
		if err != nil {
			return nil, nil, err
		}
		return b, noop, nil
	}
}

func publishAssessment(slot *riskengine.Slot, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read assessment file: %w", err)
	}
	var a map[string]any
	if err := json.Unmarshal(data, &a); err != nil {
		return fmt.Errorf("failed to parse assessment file: %w", err)
	}
	slot.Publish(a)
	log.Info().Str("file", path).Msg("published assessment")
	return nil
}
