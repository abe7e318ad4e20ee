package mutation

import (
	"slices"
	"strings"

	"github.com/jwebster45206/turn-engine/pkg/actor"
	"github.com/jwebster45206/turn-engine/pkg/directive"
)

func countOr(c *directive.Count, def int) int {
	if c == nil {
		return def
	}
	return c.Int()
}

// entryFor builds the entry an Add item describes.
func entryFor(item directive.ListItem) actor.Entry {
	name := item.Name
	if name == "" {
		name = item.ID
	}
	qty := countOr(item.Quantity, countOr(item.Amount, 0))
	return actor.Entry{
		ID:          item.ID,
		Name:        name,
		Description: item.Description,
		Quantity:    qty,
		Duration:    countOr(item.Duration, 0),
	}
}

func findEntry(entries []actor.Entry, item directive.ListItem) int {
	if i := actor.FindEntry(entries, item.Key()); i >= 0 {
		return i
	}
	if item.Name == "" {
		return -1
	}
	return slices.IndexFunc(entries, func(e actor.Entry) bool {
		return strings.EqualFold(e.Name, item.Name)
	})
}

// ApplyEntries applies Add/Remove items to a keyed entry list. Add replaces
// the entry with the same key or appends; Remove of an absent key is a no-op.
func ApplyEntries(entries []actor.Entry, items []directive.ListItem) []actor.Entry {
	for _, item := range items {
		i := findEntry(entries, item)
		switch item.Action {
		case directive.ActionAdd:
			if i >= 0 {
				entries[i] = entryFor(item)
			} else {
				entries = append(entries, entryFor(item))
			}
		case directive.ActionRemove:
			if i >= 0 {
				entries = slices.Delete(entries, i, i+1)
			}
		}
	}
	return entries
}

// ApplyStrings applies Add/Remove items to a set of keys, such as tags or
// known NPC ids.
func ApplyStrings(list []string, items []directive.ListItem) []string {
	for _, item := range items {
		key := item.Key()
		i := slices.Index(list, key)
		switch item.Action {
		case directive.ActionAdd:
			if i < 0 {
				list = append(list, key)
			}
		case directive.ActionRemove:
			if i >= 0 {
				list = slices.Delete(list, i, i+1)
			}
		}
	}
	return list
}
