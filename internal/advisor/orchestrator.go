// Package advisor holds the conversational core: the orchestrator that
// turns a user utterance into a reply, and the deterministic responder it
// degrades to when the LLM path is down.
package advisor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/logimind/advisor/internal/assessment"
	"github.com/logimind/advisor/internal/domain"
	"github.com/logimind/advisor/internal/llm"
	"github.com/logimind/advisor/internal/logging"
	"github.com/logimind/advisor/internal/prompt"
	"github.com/logimind/advisor/internal/store"
	"github.com/logimind/advisor/internal/tools"
)

// DefaultHistoryLimit caps how many stored messages feed one LLM turn.
const DefaultHistoryLimit = 20

const (
	confidenceLLM           = 0.9
	confidenceDeterministic = 0.7
)

// Orchestrator drives one conversation turn end to end: load history and
// context, build the prompt, ask the LLM (or the deterministic responder),
// dispatch tool calls, persist the turn and attach follow-up suggestions.
type Orchestrator struct {
	store        *store.Store
	reader       *assessment.Reader
	prompts      *prompt.Builder
	executor     *tools.Executor
	client           llm.Client
	historyLimit     int
	maxTokens        int
	summaryThreshold int
	log              *logging.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewOrchestrator(st *store.Store, reader *assessment.Reader, prompts *prompt.Builder, executor *tools.Executor, client llm.Client, log *logging.Logger) *Orchestrator {
	return &Orchestrator{
		store:        st,
		reader:       reader,
		prompts:      prompts,
		executor:     executor,
		client:       client,
		historyLimit: DefaultHistoryLimit,
		log:          log.Sub("advisor"),
		locks:        make(map[string]*sync.Mutex),
	}
}

// WithHistoryLimit overrides how much history feeds the LLM turn.
func (o *Orchestrator) WithHistoryLimit(n int) *Orchestrator {
	if n > 0 {
		o.historyLimit = n
	}
	return o
}

// WithMaxTokens caps the completion size requested from the provider.
func (o *Orchestrator) WithMaxTokens(n int) *Orchestrator {
	o.maxTokens = n
	return o
}

// WithSummaryThreshold adds a topic summary to the prompt once a
// conversation grows past n messages.
func (o *Orchestrator) WithSummaryThreshold(n int) *Orchestrator {
	o.summaryThreshold = n
	return o
}

func (o *Orchestrator) sessionLock(sessionID string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	l, ok := o.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		o.locks[sessionID] = l
	}
	return l
}

// ProcessMessage handles one user turn. It always returns a response;
// internal failures surface as an apology with the error in the metadata.
func (o *Orchestrator) ProcessMessage(ctx context.Context, message, sessionID string, pageContext map[string]any, language string) (resp *domain.Response) {
	defer func() {
		if r := recover(); r != nil {
			o.log.Error().Str("session", sessionID).Interface("panic", r).Msg("orchestrator panicked")
			errStr := fmt.Sprintf("%v", r)
			resp = &domain.Response{
				Reply:     fmt.Sprintf("I'm sorry, something went wrong while processing your message: %s", errStr),
				SessionID: sessionID,
				Metadata: domain.ResponseMeta{
					Model:      "deterministic",
					Confidence: confidenceDeterministic,
					Error:      errStr,
				},
			}
		}
	}()

	lock := o.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	start := time.Now()
	lang := DetectLanguage(message, language)

	// LOAD
	sysCtx := o.reader.SystemContext(sessionID, pageContext)
	history := o.store.GetHistory(ctx, sessionID, o.historyLimit)

	// BUILD
	system := o.prompts.System(sysCtx, lang, history)
	if o.summaryThreshold > 0 && len(history) > o.summaryThreshold {
		if summary := o.store.Summarize(sessionID, o.summaryThreshold); summary != "" {
			system += "\n\nConversation summary:\n" + summary
		}
	}
	messages := append(history, llm.Message{Role: llm.RoleUser, Content: message})

	// INVOKE / FALLBACK
	var (
		reply      string
		calls      []domain.ToolCall
		model      = "deterministic"
		confidence = confidenceDeterministic
		tokens     int
	)
	if o.client != nil {
		completion, err := o.client.Complete(ctx, llm.CompletionRequest{
			System:    system,
			Messages:  messages,
			Tools:     o.executor.Registry().Definitions(),
			MaxTokens: o.maxTokens,
		})
		if err == nil {
			reply = completion.Content
			model = completion.Model
			confidence = confidenceLLM
			tokens = completion.Usage.Total()
			calls = toDomainCalls(completion.ToolCalls)
		} else {
			o.log.Warn().Str("session", sessionID).Err(err).Msg("llm call failed, degrading")
		}
	}
	if model == "deterministic" {
		det := Respond(message, sysCtx, lang)
		reply = det.Text
		calls = det.ToolCalls
	}

	// DISPATCH
	results := o.executor.ExecuteAll(ctx, sessionID, calls)

	// PERSIST, unless the caller already gave up on this turn.
	if ctx.Err() == nil {
		if err := o.store.Append(ctx, sessionID, domain.RoleUser, message, pageContextMeta(pageContext)); err != nil {
			o.log.Error().Str("session", sessionID).Err(err).Msg("failed to persist user message")
		} else if err := o.store.Append(ctx, sessionID, domain.RoleAssistant, reply, map[string]any{"function_calls": len(calls)}); err != nil {
			o.log.Error().Str("session", sessionID).Err(err).Msg("failed to persist assistant reply")
		}
	}

	// SUGGEST + RETURN
	return &domain.Response{
		Reply:       reply,
		SessionID:   sessionID,
		Suggestions: FollowUpSuggestions(reply, results),
		ToolResults: results,
		Metadata: domain.ResponseMeta{
			TokensUsed:     tokens,
			ResponseTimeMs: time.Since(start).Milliseconds(),
			Model:          model,
			Confidence:     confidence,
		},
	}
}

func toDomainCalls(calls []llm.ToolCall) []domain.ToolCall {
	if len(calls) == 0 {
		return nil
	}
	out := make([]domain.ToolCall, len(calls))
	for i, c := range calls {
		args := c.Arguments
		if args == nil {
			args = map[string]any{}
		}
		out[i] = domain.ToolCall{ID: c.ID, Name: c.Name, Arguments: args}
	}
	return out
}

func pageContextMeta(pageContext map[string]any) map[string]any {
	if len(pageContext) == 0 {
		return nil
	}
	return map[string]any{"page_context": pageContext}
}
