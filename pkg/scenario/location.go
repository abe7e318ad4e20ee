package scenario

import (
	"slices"

	"github.com/jwebster45206/turn-engine/pkg/actor"
)

// Location represents a place in the game world with exits and occupants.
type Location struct {
	ID          string            `json:"id" yaml:"id"`
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Exits       map[string]string `json:"exits,omitempty" yaml:"exits,omitempty"` // direction → location id
	NPCs        []string          `json:"npcs,omitempty" yaml:"npcs,omitempty"`   // ids of NPCs currently here
	Items       []actor.Entry     `json:"items,omitempty" yaml:"items,omitempty"`
	Tags        []string          `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// AddNPC records npcID as present, once.
func (l *Location) AddNPC(npcID string) {
	if !slices.Contains(l.NPCs, npcID) {
		l.NPCs = append(l.NPCs, npcID)
	}
}

// RemoveNPC drops npcID if present.
func (l *Location) RemoveNPC(npcID string) {
	l.NPCs = slices.DeleteFunc(l.NPCs, func(id string) bool { return id == npcID })
}

// Link adds an exit in direction to locationID. An existing exit in that
// direction is kept.
func (l *Location) Link(direction, locationID string) {
	if l.Exits == nil {
		l.Exits = make(map[string]string)
	}
	if _, ok := l.Exits[direction]; !ok {
		l.Exits[direction] = locationID
	}
}
