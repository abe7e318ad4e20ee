package state

import "github.com/jwebster45206/turn-engine/pkg/chat"

// MaxHistory caps the stored conversation; older messages are dropped.
const MaxHistory = 100

// History is the owner's stored conversation with the narrator.
type History struct {
	Messages []chat.ChatMessage `json:"messages"`
}

// Append adds messages, dropping the oldest beyond MaxHistory.
func (h *History) Append(msgs ...chat.ChatMessage) {
	h.Messages = append(h.Messages, msgs...)
	if over := len(h.Messages) - MaxHistory; over > 0 {
		h.Messages = append([]chat.ChatMessage(nil), h.Messages[over:]...)
	}
}

// Window returns the last n messages.
func (h *History) Window(n int) []chat.ChatMessage {
	if h == nil || n <= 0 {
		return nil
	}
	if len(h.Messages) <= n {
		return h.Messages
	}
	return h.Messages[len(h.Messages)-n:]
}
