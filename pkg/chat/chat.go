// Package chat holds the message model shared by prompt building, the
// generation backends, and stored conversation history.
package chat

import (
	"fmt"
	"strings"
)

const (
	ChatRoleUser   = "user"      // Player
	ChatRoleAgent  = "assistant" // Narrator
	ChatRoleSystem = "system"    // Instructions and injected events
)

// MaxMessageLength bounds a single player input.
const MaxMessageLength = 4000

// maxSpeakerLength is the longest prefix treated as a speaker name.
const maxSpeakerLength = 50

// ChatMessage is a single message in the conversation sent to a backend.
type ChatMessage struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// ValidateMessage checks a player input before it is queued.
func ValidateMessage(message string) error {
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("message cannot be empty")
	}
	if len(message) > MaxMessageLength {
		return fmt.Errorf("message exceeds maximum length of %d characters", MaxMessageLength)
	}
	return nil
}

// FormatWithPCName prefixes message with "<pcName>: " unless it already
// starts with a speaker prefix.
func FormatWithPCName(message, pcName string) string {
	if i := strings.Index(message, ":"); i > 0 && i <= maxSpeakerLength {
		return message
	}
	return pcName + ": " + message
}
