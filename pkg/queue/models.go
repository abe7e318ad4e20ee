// Package queue defines the turn request and result carried between callers,
// the Redis intake list, and the turn scheduler.
package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/turn-engine/pkg/chat"
)

// TurnKind identifies what started a turn.
type TurnKind string

const (
	// TurnKindChat is a player-initiated chat message
	TurnKindChat TurnKind = "chat"

	// TurnKindStoryEvent is a system-generated story event
	TurnKindStoryEvent TurnKind = "story_event"

	// TurnKindCombat is a player action during an active encounter
	TurnKindCombat TurnKind = "combat"
)

// TurnRequest is one unit of work for the scheduler. It is immutable once
// submitted.
type TurnRequest struct {
	RequestID  string    `json:"request_id"`
	OwnerID    string    `json:"owner_id"`
	RawInput   string    `json:"raw_input"`
	TurnKind   TurnKind  `json:"turn_kind"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// NewTurnRequest creates a request with a fresh id.
func NewTurnRequest(ownerID, rawInput string, kind TurnKind) TurnRequest {
	return TurnRequest{
		RequestID:  uuid.NewString(),
		OwnerID:    ownerID,
		RawInput:   rawInput,
		TurnKind:   kind,
		EnqueuedAt: time.Now(),
	}
}

// Validate checks a request before it is queued.
func (r *TurnRequest) Validate() error {
	if r.OwnerID == "" {
		return fmt.Errorf("owner_id is required")
	}
	switch r.TurnKind {
	case TurnKindChat, TurnKindCombat:
		if err := chat.ValidateMessage(r.RawInput); err != nil {
			return err
		}
	case TurnKindStoryEvent:
	default:
		return fmt.Errorf("unknown turn kind %q", r.TurnKind)
	}
	return nil
}

// ToJSON converts the request to JSON bytes for Redis
func (r *TurnRequest) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// FromJSON parses a request from JSON bytes
func FromJSON(data []byte) (*TurnRequest, error) {
	var req TurnRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// TurnResult is produced exactly once per TurnRequest.
type TurnResult struct {
	RequestID       string    `json:"request_id"`
	OwnerID         string    `json:"owner_id"`
	NarrativeText   string    `json:"narrative_text"`
	Success         bool      `json:"success"`
	ErrorMessage    string    `json:"error_message,omitempty"`
	ErrorKind       string    `json:"error_kind,omitempty"`
	CombatInitiated bool      `json:"combat_initiated"`
	CombatPending   bool      `json:"combat_pending"`
	FiredEvents     []string  `json:"fired_events,omitempty"`
	CompletedAt     time.Time `json:"completed_at"`
}

// Failed builds the result for a turn that did not complete.
func Failed(req TurnRequest, kind string, err error) TurnResult {
	return TurnResult{
		RequestID:    req.RequestID,
		OwnerID:      req.OwnerID,
		Success:      false,
		ErrorMessage: err.Error(),
		ErrorKind:    kind,
		CompletedAt:  time.Now(),
	}
}
