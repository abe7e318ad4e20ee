package actor

import (
	"fmt"
	"strings"
)

// Player is the owner's player character as persisted between turns.
type Player struct {
	ID             string   `json:"id" yaml:"id"`
	Name           string   `json:"name,omitempty" yaml:"name,omitempty"`
	Pronouns       string   `json:"pronouns,omitempty" yaml:"pronouns,omitempty"`
	Description    string   `json:"description,omitempty" yaml:"description,omitempty"`
	Location       string   `json:"location,omitempty" yaml:"location,omitempty"` // current location id
	Health         int      `json:"health" yaml:"health"`
	MaxHealth      int      `json:"max_health,omitempty" yaml:"max_health,omitempty"`
	Inventory      []Entry  `json:"inventory,omitempty" yaml:"inventory,omitempty"`
	Currencies     []Entry  `json:"currencies,omitempty" yaml:"currencies,omitempty"`
	StatusEffects  []Entry  `json:"status_effects,omitempty" yaml:"status_effects,omitempty"`
	KnownNPCs      []string `json:"known_npcs,omitempty" yaml:"known_npcs,omitempty"`
	KnownLocations []string `json:"known_locations,omitempty" yaml:"known_locations,omitempty"`
	ActiveQuests   []string `json:"active_quests,omitempty" yaml:"active_quests,omitempty"`
}

// SetHealth sets current health, clamped to [0, MaxHealth] when MaxHealth is set.
func (p *Player) SetHealth(n int) {
	if n < 0 {
		n = 0
	}
	if p.MaxHealth > 0 && n > p.MaxHealth {
		n = p.MaxHealth
	}
	p.Health = n
}

// IsDown reports whether the player has no health left.
func (p *Player) IsDown() bool {
	return p.MaxHealth > 0 && p.Health <= 0
}

// Summary renders the player for the system prompt, e.g.
//
//	The player is Wren (she/her), at harbor. Health 7/10. Carrying: lantern, rope x2.
func (p *Player) Summary() string {
	var b strings.Builder
	name := p.Name
	if name == "" {
		name = p.ID
	}
	b.WriteString("The player is " + name)
	if p.Pronouns != "" {
		b.WriteString(" (" + p.Pronouns + ")")
	}
	if p.Location != "" {
		b.WriteString(", at " + p.Location)
	}
	b.WriteString(".")
	if p.MaxHealth > 0 {
		fmt.Fprintf(&b, " Health %d/%d.", p.Health, p.MaxHealth)
	}
	if len(p.Inventory) > 0 {
		items := make([]string, 0, len(p.Inventory))
		for _, e := range p.Inventory {
			if e.Quantity > 1 {
				items = append(items, fmt.Sprintf("%s x%d", e.Name, e.Quantity))
			} else {
				items = append(items, e.Name)
			}
		}
		b.WriteString(" Carrying: " + strings.Join(items, ", ") + ".")
	}
	if len(p.StatusEffects) > 0 {
		effects := make([]string, 0, len(p.StatusEffects))
		for _, e := range p.StatusEffects {
			effects = append(effects, e.Name)
		}
		b.WriteString(" Affected by: " + strings.Join(effects, ", ") + ".")
	}
	return b.String()
}
