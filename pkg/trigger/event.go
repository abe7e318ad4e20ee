// Package trigger decides which declared world events fire on a turn.
//
// A GameEvent carries a trigger type and a trigger value tagged by that type.
// Evaluation is a pure predicate for Time and LocationChange events. For
// FirstLocationEntry events with MustBeFirstVisit set, ShouldFire reads and
// writes the event's own Context["hasVisited"] entry: the evaluator owns that
// memory, and the caller must persist the event afterwards.
package trigger

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Type names how an event is triggered.
type Type string

const (
	Time               Type = "Time"
	LocationChange     Type = "LocationChange"
	FirstLocationEntry Type = "FirstLocationEntry"
)

// HasVisitedKey is the evaluator-owned Context entry used by
// FirstLocationEntry events.
const HasVisitedKey = "hasVisited"

// Value is the trigger-type-specific payload of a GameEvent.
type Value interface {
	Type() Type
}

// TimeValue fires once the world clock reaches TargetTime.
type TimeValue struct {
	TargetTime time.Time `json:"target_time" yaml:"target_time"`
}

func (TimeValue) Type() Type { return Time }

// LocationValue fires when the player moves into LocationID.
type LocationValue struct {
	LocationID string `json:"location_id" yaml:"location_id"`
}

func (LocationValue) Type() Type { return LocationChange }

// FirstEntryValue fires when the player moves into LocationID. With
// MustBeFirstVisit it fires at most once per event.
type FirstEntryValue struct {
	LocationID       string `json:"location_id" yaml:"location_id"`
	MustBeFirstVisit bool   `json:"must_be_first_visit,omitempty" yaml:"must_be_first_visit,omitempty"`
}

func (FirstEntryValue) Type() Type { return FirstLocationEntry }

// GameEvent is a declared world event.
type GameEvent struct {
	ID           string         `json:"id"`
	TriggerType  Type           `json:"trigger_type"`
	TriggerValue Value          `json:"trigger_value"`
	Context      map[string]any `json:"context,omitempty"`
	Prompt       string         `json:"prompt"`
	Active       bool           `json:"active"`
}

var valueDecoders = map[Type]func(decode func(any) error) (Value, error){
	Time: func(decode func(any) error) (Value, error) {
		var v TimeValue
		err := decode(&v)
		return v, err
	},
	LocationChange: func(decode func(any) error) (Value, error) {
		var v LocationValue
		err := decode(&v)
		return v, err
	},
	FirstLocationEntry: func(decode func(any) error) (Value, error) {
		var v FirstEntryValue
		err := decode(&v)
		return v, err
	},
}

func decodeValue(id string, t Type, decode func(any) error) (Value, error) {
	dec, ok := valueDecoders[t]
	if !ok {
		return nil, fmt.Errorf("event %s: unknown trigger type %q", id, t)
	}
	v, err := dec(decode)
	if err != nil {
		return nil, fmt.Errorf("event %s: invalid %s trigger value: %w", id, t, err)
	}
	return v, nil
}

type eventJSON struct {
	ID           string          `json:"id"`
	TriggerType  Type            `json:"trigger_type"`
	TriggerValue json.RawMessage `json:"trigger_value"`
	Context      map[string]any  `json:"context,omitempty"`
	Prompt       string          `json:"prompt"`
	Active       bool            `json:"active"`
}

// UnmarshalJSON decodes TriggerValue according to TriggerType.
func (e *GameEvent) UnmarshalJSON(data []byte) error {
	var raw eventJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := decodeValue(raw.ID, raw.TriggerType, func(dst any) error {
		if len(raw.TriggerValue) == 0 {
			return fmt.Errorf("missing trigger_value")
		}
		return json.Unmarshal(raw.TriggerValue, dst)
	})
	if err != nil {
		return err
	}
	*e = GameEvent{
		ID:           raw.ID,
		TriggerType:  raw.TriggerType,
		TriggerValue: v,
		Context:      raw.Context,
		Prompt:       raw.Prompt,
		Active:       raw.Active,
	}
	return nil
}

type eventYAML struct {
	ID           string         `yaml:"id"`
	TriggerType  Type           `yaml:"trigger_type"`
	TriggerValue yaml.Node      `yaml:"trigger_value"`
	Context      map[string]any `yaml:"context,omitempty"`
	Prompt       string         `yaml:"prompt"`
	Active       *bool          `yaml:"active,omitempty"`
}

// UnmarshalYAML decodes a scenario-file event. Events are active unless the
// file says otherwise.
func (e *GameEvent) UnmarshalYAML(node *yaml.Node) error {
	var raw eventYAML
	if err := node.Decode(&raw); err != nil {
		return err
	}
	v, err := decodeValue(raw.ID, raw.TriggerType, func(dst any) error {
		if raw.TriggerValue.Kind == 0 {
			return fmt.Errorf("missing trigger_value")
		}
		return raw.TriggerValue.Decode(dst)
	})
	if err != nil {
		return err
	}
	*e = GameEvent{
		ID:           raw.ID,
		TriggerType:  raw.TriggerType,
		TriggerValue: v,
		Context:      raw.Context,
		Prompt:       raw.Prompt,
		Active:       raw.Active == nil || *raw.Active,
	}
	return nil
}

// Validate checks that the event can be evaluated.
func (e *GameEvent) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("event id is required")
	}
	if e.TriggerValue == nil {
		return fmt.Errorf("event %s: trigger value is required", e.ID)
	}
	if e.TriggerValue.Type() != e.TriggerType {
		return fmt.Errorf("event %s: trigger value is %s, want %s", e.ID, e.TriggerValue.Type(), e.TriggerType)
	}
	if e.Prompt == "" {
		return fmt.Errorf("event %s: prompt is required", e.ID)
	}
	return nil
}
