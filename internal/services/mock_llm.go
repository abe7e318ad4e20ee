package services

import (
	"context"
	"sync"

	"github.com/jwebster45206/turn-engine/pkg/chat"
)

// MockBackend is a scripted Backend for tests and offline play.
type MockBackend struct {
	CompleteFunc func(ctx context.Context, messages []chat.ChatMessage, kind Kind) (string, error)

	responses []string
	calls     []CompleteCall
	mu        sync.Mutex
}

type CompleteCall struct {
	Messages []chat.ChatMessage
	Kind     Kind
}

// NewMockBackend returns a backend that answers with canned responses in
// order, then "Mock response" once they run out.
func NewMockBackend(responses ...string) *MockBackend {
	return &MockBackend{responses: responses}
}

func (m *MockBackend) Name() string { return "mock" }

func (m *MockBackend) Complete(ctx context.Context, messages []chat.ChatMessage, kind Kind) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, CompleteCall{Messages: append([]chat.ChatMessage(nil), messages...), Kind: kind})
	fn := m.CompleteFunc
	var next string
	if fn == nil && len(m.responses) > 0 {
		next, m.responses = m.responses[0], m.responses[1:]
	}
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, messages, kind)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if next == "" {
		next = "Mock response"
	}
	return next, nil
}

// Queue appends canned responses.
func (m *MockBackend) Queue(responses ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, responses...)
}

// SetError makes every call fail with err.
func (m *MockBackend) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CompleteFunc = func(context.Context, []chat.ChatMessage, Kind) (string, error) {
		return "", err
	}
}

// Calls returns a copy of the recorded calls.
func (m *MockBackend) Calls() []CompleteCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CompleteCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// Reset clears recorded calls and queued responses.
func (m *MockBackend) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.responses = nil
	m.CompleteFunc = nil
}
