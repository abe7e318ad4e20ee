package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jwebster45206/turn-engine/pkg/chat"
	"github.com/jwebster45206/turn-engine/pkg/turnerr"
)

const (
	anthropicBaseURL = "https://api.anthropic.com/v1"
	anthropicVersion = "2023-06-01"

	DefaultAnthropicTemperature = 0.7
	DefaultAnthropicMaxTokens   = 2048
)

// AnthropicService implements Backend for Anthropic Claude
type AnthropicService struct {
	apiKey           string
	modelName        string
	summaryModelName string
	baseURL          string
	httpClient       *http.Client
	logger           *slog.Logger
}

// messagesRequest is the body of POST /messages.
type messagesRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	System      string             `json:"system,omitempty"`
	Messages    []chat.ChatMessage `json:"messages"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *apiError `json:"error,omitempty"`
}

// apiError is the error object Anthropic returns in place of content.
type apiError struct {
	Status  int    `json:"-"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("anthropic %d %s: %s", e.Status, e.Type, e.Message)
	}
	return fmt.Sprintf("anthropic %s: %s", e.Type, e.Message)
}

func NewAnthropicService(apiKey, modelName, summaryModelName string, logger *slog.Logger) *AnthropicService {
	return &AnthropicService{
		apiKey:           apiKey,
		modelName:        modelName,
		summaryModelName: summaryModelName,
		baseURL:          anthropicBaseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger: logger,
	}
}

// WithBaseURL points the service at another endpoint, such as a proxy.
func (a *AnthropicService) WithBaseURL(url string) *AnthropicService {
	a.baseURL = strings.TrimRight(url, "/")
	return a
}

func (a *AnthropicService) Name() string { return "anthropic" }

// splitChatMessages folds every system message into one system prompt and
// returns the conversation without them.
func (a *AnthropicService) splitChatMessages(messages []chat.ChatMessage) (string, []chat.ChatMessage) {
	var system []string
	conversation := make([]chat.ChatMessage, 0, len(messages))
	for _, msg := range messages {
		if msg.Role == chat.ChatRoleSystem {
			system = append(system, msg.Content)
			continue
		}
		conversation = append(conversation, msg)
	}
	return strings.Join(system, "\n\n"), conversation
}

func (a *AnthropicService) model(kind Kind) string {
	if kind == KindCombatSummary && a.summaryModelName != "" {
		return a.summaryModelName
	}
	return a.modelName
}

// Complete makes a single Messages API call.
func (a *AnthropicService) Complete(ctx context.Context, messages []chat.ChatMessage, kind Kind) (string, error) {
	system, conversation := a.splitChatMessages(messages)
	if len(conversation) == 0 {
		return "", &turnerr.BackendError{Provider: a.Name(), Err: errors.New("at least one non-system message is required")}
	}

	model := a.model(kind)
	start := time.Now()
	resp, err := a.send(ctx, messagesRequest{
		Model:       model,
		MaxTokens:   DefaultAnthropicMaxTokens,
		Temperature: DefaultAnthropicTemperature,
		System:      system,
		Messages:    conversation,
	})
	if err != nil {
		return "", &turnerr.BackendError{Provider: a.Name(), Err: err}
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", &turnerr.BackendError{Provider: a.Name(), Err: fmt.Errorf("empty reply (stop_reason %q)", resp.StopReason)}
	}

	a.logger.Debug("anthropic completion",
		"model", model,
		"kind", kind,
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
		"duration", time.Since(start))
	return text.String(), nil
}

func (a *AnthropicService) send(ctx context.Context, body messagesRequest) (*messagesResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("content-type", "application/json")

	httpResp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = httpResp.Body.Close() }()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var resp messagesResponse
	decodeErr := json.Unmarshal(raw, &resp)
	if httpResp.StatusCode != http.StatusOK {
		if decodeErr == nil && resp.Error != nil {
			resp.Error.Status = httpResp.StatusCode
			return nil, resp.Error
		}
		return nil, &apiError{Status: httpResp.StatusCode, Type: "http", Message: strings.TrimSpace(string(raw))}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode response: %w", decodeErr)
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	return &resp, nil
}
