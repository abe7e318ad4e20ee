package directive

import "encoding/json"

// UpdateKind is the discriminator of an update directive.
type UpdateKind string

const (
	UpdatePlayer   UpdateKind = "PLAYER"
	UpdateWorld    UpdateKind = "WORLD"
	UpdateNPC      UpdateKind = "NPC"
	UpdateLocation UpdateKind = "LOCATION"
)

// Update changes an existing entity. Every field is optional: a nil pointer
// or nil slice means "no change". A present JSON null is treated the same
// as an absent field.
type Update interface {
	Kind() UpdateKind
	// TargetID is the id embedded in the directive, or "" when the
	// directive relies on its map key.
	TargetID() string
	lists() [][]ListItem
}

// PlayerUpdate changes the owner's player record.
type PlayerUpdate struct {
	Location       *string    `json:"location,omitempty"`
	Health         *Count     `json:"health,omitempty"`
	Inventory      []ListItem `json:"inventory,omitempty"`
	Currencies     []ListItem `json:"currencies,omitempty"`
	StatusEffects  []ListItem `json:"status_effects,omitempty"`
	KnownNPCs      []ListItem `json:"known_npcs,omitempty"`
	KnownLocations []ListItem `json:"known_locations,omitempty"`
	ActiveQuests   []ListItem `json:"active_quests,omitempty"`
}

// TimeDelta advances the world clock by Amount of Unit, where Unit is one
// of seconds, minutes, hours or days.
type TimeDelta struct {
	Amount Count  `json:"amount"`
	Unit   string `json:"unit"`
}

// WorldUpdate changes the owner's world record.
type WorldUpdate struct {
	TimeDelta *TimeDelta `json:"time_delta,omitempty"`
	Weather   *string    `json:"weather,omitempty"`
	Tags      []ListItem `json:"tags,omitempty"`
}

// NPCUpdate changes one NPC.
type NPCUpdate struct {
	ID            string     `json:"id,omitempty"`
	Name          *string    `json:"name,omitempty"`
	Location      *string    `json:"location,omitempty"`
	Disposition   *string    `json:"disposition,omitempty"`
	Description   *string    `json:"description,omitempty"`
	Inventory     []ListItem `json:"inventory,omitempty"`
	StatusEffects []ListItem `json:"status_effects,omitempty"`
	Tags          []ListItem `json:"tags,omitempty"`
}

// LocationUpdate changes one location.
type LocationUpdate struct {
	ID          string     `json:"id,omitempty"`
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	NPCs        []ListItem `json:"npcs,omitempty"`
	Items       []ListItem `json:"items,omitempty"`
	Tags        []ListItem `json:"tags,omitempty"`
}

func (*PlayerUpdate) Kind() UpdateKind   { return UpdatePlayer }
func (*WorldUpdate) Kind() UpdateKind    { return UpdateWorld }
func (*NPCUpdate) Kind() UpdateKind      { return UpdateNPC }
func (*LocationUpdate) Kind() UpdateKind { return UpdateLocation }

func (*PlayerUpdate) TargetID() string     { return "" }
func (*WorldUpdate) TargetID() string      { return "" }
func (u *NPCUpdate) TargetID() string      { return u.ID }
func (u *LocationUpdate) TargetID() string { return u.ID }

func (u *PlayerUpdate) lists() [][]ListItem {
	return [][]ListItem{u.Inventory, u.Currencies, u.StatusEffects, u.KnownNPCs, u.KnownLocations, u.ActiveQuests}
}
func (u *WorldUpdate) lists() [][]ListItem { return [][]ListItem{u.Tags} }
func (u *NPCUpdate) lists() [][]ListItem {
	return [][]ListItem{u.Inventory, u.StatusEffects, u.Tags}
}
func (u *LocationUpdate) lists() [][]ListItem {
	return [][]ListItem{u.NPCs, u.Items, u.Tags}
}

func (u PlayerUpdate) MarshalJSON() ([]byte, error) {
	type alias PlayerUpdate
	return json.Marshal(struct {
		Type UpdateKind `json:"type"`
		alias
	}{UpdatePlayer, alias(u)})
}

func (u WorldUpdate) MarshalJSON() ([]byte, error) {
	type alias WorldUpdate
	return json.Marshal(struct {
		Type UpdateKind `json:"type"`
		alias
	}{UpdateWorld, alias(u)})
}

func (u NPCUpdate) MarshalJSON() ([]byte, error) {
	type alias NPCUpdate
	return json.Marshal(struct {
		Type UpdateKind `json:"type"`
		alias
	}{UpdateNPC, alias(u)})
}

func (u LocationUpdate) MarshalJSON() ([]byte, error) {
	type alias LocationUpdate
	return json.Marshal(struct {
		Type UpdateKind `json:"type"`
		alias
	}{UpdateLocation, alias(u)})
}
