package llm

import (
	"context"
	"sync"
)

// MockClient is a scripted Client for tests. Responses and errors are
// consumed per call; when the script runs out the last entry repeats.
type MockClient struct {
	mu     sync.Mutex
	script []MockTurn
	calls  []CompletionRequest
}

// MockTurn is one scripted Complete outcome.
type MockTurn struct {
	Response *CompletionResponse
	Err      error
}

func NewMockClient(turns ...MockTurn) *MockClient {
	return &MockClient{script: turns}
}

func (m *MockClient) Name() string { return "mock" }

func (m *MockClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, req)
	if len(m.script) == 0 {
		return &CompletionResponse{Content: "ok", Model: req.Model}, nil
	}

	turn := m.script[0]
	if len(m.script) > 1 {
		m.script = m.script[1:]
	}
	if turn.Err != nil {
		return nil, turn.Err
	}
	resp := *turn.Response
	if resp.Model == "" {
		resp.Model = req.Model
	}
	return &resp, nil
}

// Calls returns every request seen so far.
func (m *MockClient) Calls() []CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CompletionRequest, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns how many times Complete ran.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
