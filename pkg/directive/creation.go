// Package directive decodes the hidden payload of a generated reply into
// typed creation and update directives.
//
// Both directive families are closed tagged unions. The JSON "type" field
// selects the variant through a fixed dispatch table; there is no open
// registry.
package directive

import "encoding/json"

// CreationKind is the discriminator of a creation directive.
type CreationKind string

const (
	CreationNPC      CreationKind = "NPC"
	CreationLocation CreationKind = "LOCATION"
	CreationQuest    CreationKind = "QUEST"
)

// Creation asks the engine to synthesize a new entity.
type Creation interface {
	Kind() CreationKind
	Base() CreationBase
}

// CreationBase holds the fields common to every creation variant.
// Context names the entity the new one is linked into, such as the
// location an NPC is created in or "player" for a quest the player takes.
type CreationBase struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name,omitempty"`
	Context string `json:"context,omitempty"`
}

// NPCCreation creates a non-player character at Location (or Context when
// Location is empty).
type NPCCreation struct {
	CreationBase
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
	Disposition string `json:"disposition,omitempty"`
}

// LocationCreation creates a location. When Context names an existing
// location, the two are linked through Exits.
type LocationCreation struct {
	CreationBase
	Description string            `json:"description,omitempty"`
	Exits       map[string]string `json:"exits,omitempty"`
}

// QuestCreation creates a quest, optionally given by an NPC.
type QuestCreation struct {
	CreationBase
	Description string   `json:"description,omitempty"`
	Objectives  []string `json:"objectives,omitempty"`
	Giver       string   `json:"giver,omitempty"`
}

func (*NPCCreation) Kind() CreationKind      { return CreationNPC }
func (*LocationCreation) Kind() CreationKind { return CreationLocation }
func (*QuestCreation) Kind() CreationKind    { return CreationQuest }

func (c *NPCCreation) Base() CreationBase      { return c.CreationBase }
func (c *LocationCreation) Base() CreationBase { return c.CreationBase }
func (c *QuestCreation) Base() CreationBase    { return c.CreationBase }

func (c NPCCreation) MarshalJSON() ([]byte, error) {
	type alias NPCCreation
	return json.Marshal(struct {
		Type CreationKind `json:"type"`
		alias
	}{CreationNPC, alias(c)})
}

func (c LocationCreation) MarshalJSON() ([]byte, error) {
	type alias LocationCreation
	return json.Marshal(struct {
		Type CreationKind `json:"type"`
		alias
	}{CreationLocation, alias(c)})
}

func (c QuestCreation) MarshalJSON() ([]byte, error) {
	type alias QuestCreation
	return json.Marshal(struct {
		Type CreationKind `json:"type"`
		alias
	}{CreationQuest, alias(c)})
}
