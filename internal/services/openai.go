package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/jwebster45206/turn-engine/pkg/chat"
	"github.com/jwebster45206/turn-engine/pkg/turnerr"
)

const (
	DefaultOpenAITemperature = 0.7
	DefaultOpenAIMaxTokens   = 1024
)

// OpenAIService implements Backend for OpenAI and any OpenAI-compatible
// endpoint (OpenRouter, local gateways) selected through baseURL.
type OpenAIService struct {
	client           *openai.Client
	modelName        string
	summaryModelName string
	logger           *slog.Logger
}

// NewOpenAIService creates a client for apiKey. An empty baseURL keeps the
// library default. summaryModelName, when set, is used for combat summaries.
func NewOpenAIService(apiKey, baseURL, modelName, summaryModelName string, logger *slog.Logger) *OpenAIService {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIService{
		client:           openai.NewClientWithConfig(cfg),
		modelName:        modelName,
		summaryModelName: summaryModelName,
		logger:           logger,
	}
}

func (o *OpenAIService) Name() string { return "openai" }

func (o *OpenAIService) model(kind Kind) string {
	if kind == KindCombatSummary && o.summaryModelName != "" {
		return o.summaryModelName
	}
	return o.modelName
}

func toOpenAIMessages(messages []chat.ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		role := openai.ChatMessageRoleUser
		switch m.Role {
		case chat.ChatRoleSystem:
			role = openai.ChatMessageRoleSystem
		case chat.ChatRoleAgent:
			role = openai.ChatMessageRoleAssistant
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	return out
}

// Complete sends messages as a single chat completion.
func (o *OpenAIService) Complete(ctx context.Context, messages []chat.ChatMessage, kind Kind) (string, error) {
	if len(messages) == 0 {
		return "", &turnerr.BackendError{Provider: o.Name(), Err: errors.New("messages cannot be empty")}
	}

	start := time.Now()
	model := o.model(kind)
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    toOpenAIMessages(messages),
		Temperature: DefaultOpenAITemperature,
		MaxTokens:   DefaultOpenAIMaxTokens,
	})
	if err != nil {
		return "", &turnerr.BackendError{Provider: o.Name(), Err: fmt.Errorf("chat completion failed: %w", err)}
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &turnerr.BackendError{Provider: o.Name(), Err: errors.New("received empty response from API")}
	}

	o.logger.Debug("openai completion",
		"model", model,
		"kind", kind,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"duration", time.Since(start))
	return resp.Choices[0].Message.Content, nil
}
