package directive

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Action selects how a ListItem changes its target list.
type Action string

const (
	ActionAdd    Action = "Add"
	ActionRemove Action = "Remove"
)

func (a *Action) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("action: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "add":
		*a = ActionAdd
	case "remove":
		*a = ActionRemove
	default:
		return fmt.Errorf("unknown list action %q", s)
	}
	return nil
}

// ListItem is one Add/Remove instruction against a keyed list: inventory,
// currencies, status effects, tags, known NPCs/locations, active quests,
// combat conditions. The key is ID when set, otherwise Name.
type ListItem struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name,omitempty"`
	Action      Action `json:"action"`
	Description string `json:"description,omitempty"`
	Quantity    *Count `json:"quantity,omitempty"`
	Amount      *Count `json:"amount,omitempty"`
	Duration    *Count `json:"duration,omitempty"` // turns, for status effects
}

// Key identifies the entry the item refers to.
func (li ListItem) Key() string {
	if li.ID != "" {
		return li.ID
	}
	return li.Name
}

// Validate checks the invariants shared by every list: a key is always
// required, and the action must be Add or Remove.
func (li ListItem) Validate() error {
	if li.Key() == "" {
		return fmt.Errorf("list item requires a name or id")
	}
	switch li.Action {
	case ActionAdd, ActionRemove:
		return nil
	case "":
		return fmt.Errorf("list item %q has no action", li.Key())
	default:
		return fmt.Errorf("list item %q has unknown action %q", li.Key(), li.Action)
	}
}

func validateItems(lists ...[]ListItem) error {
	for _, items := range lists {
		for _, item := range items {
			if err := item.Validate(); err != nil {
				return err
			}
		}
	}
	return nil
}
