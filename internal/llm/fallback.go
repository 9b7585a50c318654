package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/logimind/advisor/internal/logging"
)

// ErrUnavailable is returned when the LLM layer has been disabled and the
// caller should degrade to the deterministic path.
var ErrUnavailable = errors.New("llm unavailable")

// FallbackClient walks an ordered model list on every call. A model that
// the provider does not know is skipped; an authentication failure or a
// fully exhausted list disables the layer so later turns skip it outright.
type FallbackClient struct {
	inner  Client
	models []string
	avail  *Availability
	log    *logging.Logger
}

func NewFallbackClient(inner Client, models []string, avail *Availability, log *logging.Logger) *FallbackClient {
	if avail == nil {
		avail = NewAvailability()
	}
	return &FallbackClient{
		inner:  inner,
		models: models,
		avail:  avail,
		log:    log.Sub("llm"),
	}
}

func (f *FallbackClient) Name() string { return f.inner.Name() }

// Availability exposes the shared circuit state.
func (f *FallbackClient) Availability() *Availability { return f.avail }

// Complete tries each model in order, always starting from the first.
func (f *FallbackClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if !f.avail.Enabled() {
		_, reason := f.avail.State()
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, reason)
	}
	if len(f.models) == 0 {
		return nil, fmt.Errorf("%w: no models configured", ErrUnavailable)
	}

	var lastErr error
	for _, model := range f.models {
		req.Model = model
		resp, err := f.inner.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		switch classifyError(err) {
		case errModelNotFound:
			f.log.Warn().Str("model", model).Err(err).Msg("model unavailable, trying next")
			continue
		case errAuth:
			f.avail.DisablePermanent("authentication failed: " + err.Error())
			f.log.Error().Err(err).Msg("authentication failed, disabling llm")
			return nil, err
		case errRateLimited:
			f.avail.DisableTransient("rate limited: " + err.Error())
			f.log.Warn().Err(err).Msg("rate limited, disabling llm for cooldown")
			return nil, err
		default:
			// Transport trouble says nothing about the models themselves,
			// leave the layer enabled for the next turn.
			f.log.Warn().Str("model", model).Err(err).Msg("completion failed")
			return nil, err
		}
	}

	f.avail.DisablePermanent("all configured models failed")
	f.log.Error().Err(lastErr).Msg("all models exhausted, disabling llm")
	return nil, fmt.Errorf("all models failed: %w", lastErr)
}

type errClass int

const (
	errTransport errClass = iota
	errModelNotFound
	errAuth
	errRateLimited
)

func classifyError(err error) errClass {
	var perr *ProviderError
	if errors.As(err, &perr) {
		switch perr.Code {
		case 401, 403:
			return errAuth
		case 404:
			return errModelNotFound
		case 429:
			return errRateLimited
		}
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "404") || strings.Contains(msg, "not_found") {
		return errModelNotFound
	}
	if strings.Contains(msg, "401") || strings.Contains(msg, "403") || strings.Contains(msg, "authentication") {
		return errAuth
	}
	return errTransport
}
