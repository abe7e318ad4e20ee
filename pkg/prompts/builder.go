// Package prompts turns an owner's current records into the message list
// sent to a generation backend.
package prompts

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jwebster45206/turn-engine/pkg/chat"
	"github.com/jwebster45206/turn-engine/pkg/scenario"
)

// DefaultHistoryLimit is the number of past messages included by default.
const DefaultHistoryLimit = 20

// Builder constructs chat messages for LLM interaction using a fluent interface.
type Builder struct {
	snap         *Snapshot
	scenario     *scenario.Scenario
	userMessage  string
	userRole     string
	storyEvents  []string
	historyLimit int
	messages     []chat.ChatMessage
}

// New creates a new prompt builder with default settings.
func New() *Builder {
	return &Builder{
		historyLimit: DefaultHistoryLimit,
		messages:     make([]chat.ChatMessage, 0),
	}
}

// WithSnapshot sets the owner's current records.
func (b *Builder) WithSnapshot(snap *Snapshot) *Builder {
	b.snap = snap
	return b
}

// WithScenario sets the scenario the owner is playing.
func (b *Builder) WithScenario(s *scenario.Scenario) *Builder {
	b.scenario = s
	return b
}

// WithUserMessage sets the user's message and role.
func (b *Builder) WithUserMessage(message string, role string) *Builder {
	b.userMessage = message
	b.userRole = role
	return b
}

// WithStoryEvents sets event prompts queued for this turn.
func (b *Builder) WithStoryEvents(events []string) *Builder {
	b.storyEvents = events
	return b
}

// WithHistoryLimit sets the chat history window size.
func (b *Builder) WithHistoryLimit(limit int) *Builder {
	b.historyLimit = limit
	return b
}

// Build constructs and returns the final message array for LLM consumption.
func (b *Builder) Build() ([]chat.ChatMessage, error) {
	if b.snap == nil {
		return nil, fmt.Errorf("snapshot is required")
	}
	if b.scenario == nil {
		return nil, fmt.Errorf("scenario is required")
	}

	b.messages = make([]chat.ChatMessage, 0)

	// 1. System prompt
	if err := b.addSystemPrompt(); err != nil {
		return nil, fmt.Errorf("error building system prompt: %w", err)
	}

	// 2. Windowed chat history
	b.messages = append(b.messages, b.snap.History.Window(b.historyLimit)...)

	// 3. User message
	if b.userMessage != "" {
		b.messages = append(b.messages, chat.ChatMessage{Role: b.userRole, Content: b.userMessage})
	}

	// 4. Story events (if any)
	if events := FormatStoryEvents(b.storyEvents); events != "" {
		b.messages = append(b.messages, chat.ChatMessage{Role: chat.ChatRoleSystem, Content: events})
	}

	// 5. Final reminders
	b.messages = append(b.messages, chat.ChatMessage{Role: chat.ChatRoleSystem, Content: UserPostPrompt})

	return b.messages, nil
}

func (b *Builder) addSystemPrompt() error {
	var sb strings.Builder
	sb.WriteString(BuildSystemPrompt(b.scenario.Narrator, b.scenario.Rules))

	if p := b.snap.Player; p != nil && p.Name != "" {
		sb.WriteString("\n### Player Character\n" + p.Summary() + "\n")
	}

	sb.WriteString("\n" + GameStateInstructions)

	jsonState, err := json.Marshal(ToPromptState(b.snap))
	if err != nil {
		return fmt.Errorf("error generating state prompt: %w", err)
	}
	sb.WriteString("\n\n" + fmt.Sprintf(StatePromptTemplate, b.scenario.Story, jsonState))

	if c := b.snap.Combat; c != nil && c.IsActive {
		sb.WriteString("\n\n" + fmt.Sprintf(CombatPrompt, c.EnemyName, c.Remaining()))
	}

	b.messages = append(b.messages, chat.ChatMessage{
		Role:    chat.ChatRoleSystem,
		Content: sb.String(),
	})
	return nil
}
