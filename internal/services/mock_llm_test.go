package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jwebster45206/turn-engine/internal/config"
	"github.com/jwebster45206/turn-engine/pkg/chat"
)

func TestMockBackend_CannedResponses(t *testing.T) {
	mock := NewMockBackend("first", "second")
	messages := []chat.ChatMessage{{Role: chat.ChatRoleUser, Content: "Hello"}}

	for _, want := range []string{"first", "second", "Mock response"} {
		got, err := mock.Complete(context.Background(), messages, KindNarrate)
		if err != nil {
			t.Fatalf("Complete failed: %v", err)
		}
		if got != want {
			t.Errorf("Expected %q, got %q", want, got)
		}
	}

	calls := mock.Calls()
	if len(calls) != 3 {
		t.Fatalf("Expected 3 calls, got %d", len(calls))
	}
	if calls[0].Messages[0].Content != "Hello" || calls[0].Kind != KindNarrate {
		t.Errorf("unexpected recorded call: %+v", calls[0])
	}
}

func TestMockBackend_ErrorHandling(t *testing.T) {
	mock := NewMockBackend()
	expectedErr := errors.New("generation failed")
	mock.SetError(expectedErr)

	_, err := mock.Complete(context.Background(), nil, KindCombatSummary)
	if !errors.Is(err, expectedErr) {
		t.Errorf("Expected %v, got %v", expectedErr, err)
	}

	mock.Reset()
	if len(mock.Calls()) != 0 {
		t.Error("Expected calls to be cleared after Reset")
	}
	if _, err := mock.Complete(context.Background(), nil, KindNarrate); err != nil {
		t.Errorf("Expected success after Reset, got %v", err)
	}
}

func TestMockBackend_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewMockBackend("x").Complete(ctx, nil, KindNarrate); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestMockBackend_ConcurrentCalls(t *testing.T) {
	mock := NewMockBackend()
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = mock.Complete(context.Background(), nil, KindNarrate)
		}()
	}
	wg.Wait()
	if len(mock.Calls()) != 20 {
		t.Errorf("Expected 20 calls, got %d", len(mock.Calls()))
	}
}

func TestNewBackend(t *testing.T) {
	tests := []struct {
		provider string
		want     string
		wantErr  bool
	}{
		{"openai", "openai", false},
		{"anthropic", "anthropic", false},
		{"mock", "mock", false},
		{"ollama", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			b, err := NewBackend(&config.Config{LLMProvider: tt.provider, ModelName: "m"}, discardLogger())
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error for unsupported provider")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewBackend failed: %v", err)
			}
			if b.Name() != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, b.Name())
			}
		})
	}
}
