package testutil

import (
	"context"
	"fmt"
	"sync"

	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"mealwheel/model"
)

// Turn is one scripted provider reply. Err, when set, is returned instead
// of Result.
type Turn struct {
	Result model.TurnResult
	Err    error
}

// Request records what a provider was sent for one turn.
type Request struct {
	Messages []model.Message
	Tools    []mcptypes.Tool
	Opts     model.TurnOptions
}

// MockProvider implements model.Provider by replaying scripted turns in
// order and recording every request.
type MockProvider struct {
	// PingFunc overrides the default (always healthy) health check.
	PingFunc func(ctx context.Context) error

	mu           sync.Mutex
	turns        []Turn
	requests     []Request
	currentModel string
}

// NewMockProvider creates a mock provider that will answer with turns.
func NewMockProvider(modelName string, turns ...Turn) *MockProvider {
	return &MockProvider{
		currentModel: modelName,
		turns:        turns,
	}
}

// SendTurn pops the next scripted turn. Running out of script is an error so
// tests notice an unexpected extra round trip.
func (m *MockProvider) SendTurn(ctx context.Context, messages []model.Message, tools []mcptypes.Tool, opts model.TurnOptions) (model.TurnResult, error) {
	if err := ctx.Err(); err != nil {
		return model.TurnResult{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	msgs := make([]model.Message, len(messages))
	copy(msgs, messages)
	m.requests = append(m.requests, Request{Messages: msgs, Tools: tools, Opts: opts})

	if len(m.turns) == 0 {
		return model.TurnResult{}, fmt.Errorf("mock provider: unexpected turn %d", len(m.requests))
	}
	next := m.turns[0]
	m.turns = m.turns[1:]
	return next.Result, next.Err
}

// Requests returns a copy of the recorded requests.
func (m *MockProvider) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Remaining reports how many scripted turns were not consumed.
func (m *MockProvider) Remaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.turns)
}

func (m *MockProvider) GetModel() string {
	return m.currentModel
}

func (m *MockProvider) SetModel(model string) {
	m.currentModel = model
}

func (m *MockProvider) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}
