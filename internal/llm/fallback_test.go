package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logimind/advisor/internal/logging"
)

var testModels = []string{"model-a", "model-b", "model-c"}

func notFoundErr() MockTurn {
	return MockTurn{Err: &ProviderError{Provider: "mock", Message: "not_found: model unknown", Code: 404}}
}

func textResp(s string) MockTurn {
	return MockTurn{Response: &CompletionResponse{Content: s}}
}

func testFallback(turns ...MockTurn) (*FallbackClient, *MockClient) {
	mock := NewMockClient(turns...)
	return NewFallbackClient(mock, testModels, NewAvailability(), logging.Silent()), mock
}

// --- fallback chain tests ---

func TestFallbackWalksModelsInOrder(t *testing.T) {
	fc, mock := testFallback(notFoundErr(), notFoundErr(), textResp("hello"))

	resp, err := fc.Complete(context.Background(), CompletionRequest{})
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Content)
	assert.Equal(t, "model-c", resp.Model)

	calls := mock.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "model-a", calls[0].Model)
	assert.Equal(t, "model-b", calls[1].Model)
	assert.Equal(t, "model-c", calls[2].Model)
}

func TestFallbackRestartsFromPrimary(t *testing.T) {
	fc, mock := testFallback(notFoundErr(), textResp("first"), textResp("second"))

	_, err := fc.Complete(context.Background(), CompletionRequest{})
	require.NoError(t, err)

	resp, err := fc.Complete(context.Background(), CompletionRequest{})
	require.NoError(t, err)
	assert.Equal(t, "model-a", resp.Model)

	calls := mock.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "model-a", calls[2].Model)
}

func TestFallbackAuthFailureStopsAndDisables(t *testing.T) {
	fc, mock := testFallback(MockTurn{Err: &ProviderError{Provider: "mock", Message: "invalid api key", Code: 401}})

	_, err := fc.Complete(context.Background(), CompletionRequest{})
	require.Error(t, err)
	assert.Equal(t, 1, mock.CallCount())

	state, reason := fc.Availability().State()
	assert.Equal(t, DisabledPermanent, state)
	assert.Contains(t, reason, "authentication")

	// Later turns short-circuit without touching the provider.
	_, err = fc.Complete(context.Background(), CompletionRequest{})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 1, mock.CallCount())
}

func TestFallbackTransportErrorStaysEnabled(t *testing.T) {
	fc, mock := testFallback(MockTurn{Err: errors.New("request failed: connection refused")}, textResp("recovered"))

	_, err := fc.Complete(context.Background(), CompletionRequest{})
	require.Error(t, err)
	assert.Equal(t, 1, mock.CallCount())
	assert.True(t, fc.Availability().Enabled())

	resp, err := fc.Complete(context.Background(), CompletionRequest{})
	require.NoError(t, err)
	assert.Equal(t, "recovered", resp.Content)
}

func TestFallbackExhaustionDisables(t *testing.T) {
	fc, mock := testFallback(notFoundErr(), notFoundErr(), notFoundErr())

	_, err := fc.Complete(context.Background(), CompletionRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all models failed")
	assert.Equal(t, 3, mock.CallCount())

	state, _ := fc.Availability().State()
	assert.Equal(t, DisabledPermanent, state)
}

func TestFallbackRateLimitDisablesTransiently(t *testing.T) {
	fc, _ := testFallback(MockTurn{Err: &ProviderError{Provider: "mock", Message: "rate_limit_error", Code: 429}})

	_, err := fc.Complete(context.Background(), CompletionRequest{})
	require.Error(t, err)

	state, _ := fc.Availability().State()
	assert.Equal(t, DisabledTransient, state)
	assert.False(t, fc.Availability().Enabled())
}

func TestFallbackMatchesNotFoundByMessage(t *testing.T) {
	fc, mock := testFallback(MockTurn{Err: errors.New("API error (404): model does not exist")}, textResp("ok"))

	resp, err := fc.Complete(context.Background(), CompletionRequest{})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, 2, mock.CallCount())
}

// --- availability tests ---

func TestAvailabilityTransientCooldown(t *testing.T) {
	a := NewAvailability()
	now := time.Now()
	a.now = func() time.Time { return now }

	a.DisableTransient("429")
	assert.False(t, a.Enabled())

	now = now.Add(DefaultCooldown + time.Second)
	assert.True(t, a.Enabled())
}

func TestAvailabilityPermanentSticks(t *testing.T) {
	a := NewAvailability()
	a.DisablePermanent("auth")
	a.DisableTransient("later 429")

	state, reason := a.State()
	assert.Equal(t, DisabledPermanent, state)
	assert.Equal(t, "auth", reason)

	a.Reset()
	assert.True(t, a.Enabled())
}

func TestProviderErrorFormat(t *testing.T) {
	err := &ProviderError{Provider: "anthropic", Message: "overloaded", Code: 529}
	assert.Equal(t, "anthropic: 529 overloaded", err.Error())

	err = &ProviderError{Provider: "anthropic", Message: "boom"}
	assert.Equal(t, "anthropic: boom", err.Error())
}
