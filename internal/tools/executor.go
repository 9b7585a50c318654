package tools

import (
	"context"
	"fmt"

	"github.com/logimind/advisor/internal/domain"
	"github.com/logimind/advisor/internal/logging"
)

// Handler runs one tool invocation with validated arguments.
type Handler func(ctx context.Context, sessionID string, args map[string]any) (any, error)

// Executor dispatches tool calls to registered handlers and wraps every
// outcome, including panics, in a ToolResult envelope.
type Executor struct {
	registry *Registry
	handlers map[string]Handler
	log      *logging.Logger
}

func NewExecutor(registry *Registry, log *logging.Logger) *Executor {
	return &Executor{
		registry: registry,
		handlers: make(map[string]Handler),
		log:      log.Sub("tools"),
	}
}

func (e *Executor) Register(name string, h Handler) {
	e.handlers[name] = h
}

// Registry exposes the catalog backing this executor.
func (e *Executor) Registry() *Registry {
	return e.registry
}

// Execute validates the call's arguments against the tool's schema and
// invokes its handler. Failures never escape as errors; they come back as
// unsuccessful results so one bad call cannot sink a whole turn.
func (e *Executor) Execute(ctx context.Context, sessionID string, call domain.ToolCall) (result domain.ToolResult) {
	result = domain.ToolResult{Tool: call.Name}

	defer func() {
		if r := recover(); r != nil {
			e.log.Error().Str("tool", call.Name).Interface("panic", r).Msg("tool handler panicked")
			result.Success = false
			result.Result = nil
			result.Error = fmt.Sprintf("internal error: %v", r)
		}
	}()

	desc, ok := e.registry.Get(call.Name)
	if !ok {
		result.Error = "Unknown function: " + call.Name
		return result
	}
	handler, ok := e.handlers[call.Name]
	if !ok {
		result.Error = "Unknown function: " + call.Name
		return result
	}

	args, err := desc.Parameters.Validate(call.Arguments)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	out, err := handler(ctx, sessionID, args)
	if err != nil {
		e.log.Warn().Str("tool", call.Name).Err(err).Msg("tool call failed")
		result.Error = err.Error()
		return result
	}

	e.log.Debug().Str("tool", call.Name).Msg("tool call succeeded")
	result.Success = true
	result.Result = out
	return result
}

// ExecuteAll runs calls in order, collecting one envelope per call.
func (e *Executor) ExecuteAll(ctx context.Context, sessionID string, calls []domain.ToolCall) []domain.ToolResult {
	results := make([]domain.ToolResult, 0, len(calls))
	for _, call := range calls {
		results = append(results, e.Execute(ctx, sessionID, call))
	}
	return results
}
