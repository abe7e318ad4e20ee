package actor

// Entry is one keyed element of an entity's list: an inventory item, a
// currency balance, a status effect.
type Entry struct {
	ID          string `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Quantity    int    `json:"quantity,omitempty" yaml:"quantity,omitempty"`
	Duration    int    `json:"duration,omitempty" yaml:"duration,omitempty"` // remaining turns, for status effects
}

// Key returns the identity used for upsert/remove: ID when set, else Name.
func (e Entry) Key() string {
	if e.ID != "" {
		return e.ID
	}
	return e.Name
}

// FindEntry returns the index of the entry with key, or -1.
func FindEntry(entries []Entry, key string) int {
	for i, e := range entries {
		if e.Key() == key {
			return i
		}
	}
	return -1
}
