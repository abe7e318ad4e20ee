package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jwebster45206/turn-engine/internal/config"
	"github.com/jwebster45206/turn-engine/pkg/chat"
)

// Kind tells a backend what the request is for, so providers can pick a
// model or tune parameters per kind.
type Kind string

const (
	KindNarrate       Kind = "narrate"
	KindCombatSummary Kind = "combat_summary"
)

// Backend generates text from a message list. Errors are returned as
// *turnerr.BackendError. Backends do not retry.
type Backend interface {
	Complete(ctx context.Context, messages []chat.ChatMessage, kind Kind) (string, error)
	Name() string
}

// NewBackend builds the backend selected by cfg.LLMProvider.
func NewBackend(cfg *config.Config, logger *slog.Logger) (Backend, error) {
	switch cfg.LLMProvider {
	case "openai":
		return NewOpenAIService(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.ModelName, cfg.SummaryModelName, logger), nil
	case "anthropic":
		return NewAnthropicService(cfg.AnthropicAPIKey, cfg.ModelName, cfg.SummaryModelName, logger), nil
	case "mock":
		return NewMockBackend(), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}
}
