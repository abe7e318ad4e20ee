package actor

// NPC represents a non-player character in the game
type NPC struct {
	ID            string   `json:"id" yaml:"id"`
	Name          string   `json:"name" yaml:"name"`
	Disposition   string   `json:"disposition,omitempty" yaml:"disposition,omitempty"` // e.g. "hostile", "neutral", "friendly"
	Description   string   `json:"description,omitempty" yaml:"description,omitempty"` // short description or backstory
	Location      string   `json:"location,omitempty" yaml:"location,omitempty"`       // location id where the NPC currently is
	Inventory     []Entry  `json:"inventory,omitempty" yaml:"inventory,omitempty"`
	StatusEffects []Entry  `json:"status_effects,omitempty" yaml:"status_effects,omitempty"`
	Tags          []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}
