package directive

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/jwebster45206/turn-engine/pkg/turnerr"
)

// CombatDirective carries the combat part of a hidden payload.
type CombatDirective struct {
	Start      string     `json:"start,omitempty"`      // enemy id that starts an encounter
	Successes  *Count     `json:"successes,omitempty"`  // successes earned this turn
	Conditions []ListItem `json:"conditions,omitempty"` // player conditions to add or remove
	Defeated   bool       `json:"defeated,omitempty"`   // the player lost the encounter
}

// IsEmpty reports whether the directive asks for nothing.
func (c *CombatDirective) IsEmpty() bool {
	return c == nil || (c.Start == "" && c.Successes == nil && len(c.Conditions) == 0 && !c.Defeated)
}

// Payload is the decoded hidden segment of one reply:
//
//	{"create": [...], "update": {"<id>": {...}} | {...}, "combat": {...}}
type Payload struct {
	Creations []Creation        `json:"create,omitempty"`
	Updates   map[string]Update `json:"update,omitempty"`
	Combat    *CombatDirective  `json:"combat,omitempty"`
}

// DecodePayload decodes the JSON between the hidden-segment markers.
func DecodePayload(payload string) (*Payload, error) {
	var p Payload
	if err := p.UnmarshalJSON([]byte(payload)); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Payload) UnmarshalJSON(data []byte) error {
	var env struct {
		Create []json.RawMessage `json:"create"`
		Update json.RawMessage   `json:"update"`
		Combat *CombatDirective  `json:"combat"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return &turnerr.DecodingError{Msg: "malformed payload", Err: err}
	}

	p.Creations = nil
	for _, frag := range env.Create {
		c, err := DecodeCreation(frag)
		if err != nil {
			return err
		}
		p.Creations = append(p.Creations, c)
	}

	updates, err := decodeUpdateField(env.Update)
	if err != nil {
		return err
	}
	p.Updates = updates

	if env.Combat != nil {
		if err := validateItems(env.Combat.Conditions); err != nil {
			return &turnerr.DecodingError{Msg: "invalid combat condition", Err: err}
		}
	}
	p.Combat = env.Combat
	return nil
}

// decodeUpdateField accepts either a map of id → update, or a single update
// object. A single update is keyed by its embedded id, or by its lowercased
// kind ("player", "world") when it has none.
func decodeUpdateField(raw json.RawMessage) (map[string]Update, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var d discriminator
	if err := json.Unmarshal(raw, &d); err == nil && d.Type != nil {
		u, err := DecodeUpdate(raw)
		if err != nil {
			return nil, err
		}
		key := u.TargetID()
		if key == "" {
			key = strings.ToLower(string(u.Kind()))
		}
		return map[string]Update{key: u}, nil
	}
	return DecodeUpdateMap(raw)
}
