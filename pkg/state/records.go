// Package state holds the per-owner records that are not actors or places,
// the record-id scheme shared by every package that talks to the store, and
// Session, the per-turn unit of work.
package state

import "strings"

// Record ids. Ids are opaque to the store; the prefixes only keep kinds apart.
const (
	PlayerID       = "player"
	WorldID        = "world"
	EventsID       = "events"
	HistoryID      = "history"
	CombatActiveID = "combat:active"
)

const (
	npcPrefix           = "npc:"
	locationPrefix      = "location:"
	questPrefix         = "quest:"
	enemyPrefix         = "enemy:"
	combatArchivePrefix = "combat:archive:"
)

func NPCID(id string) string           { return npcPrefix + id }
func LocationID(id string) string      { return locationPrefix + id }
func QuestID(id string) string         { return questPrefix + id }
func EnemyID(id string) string         { return enemyPrefix + id }
func CombatArchiveID(id string) string { return combatArchivePrefix + id }

// EntityKey strips a kind prefix from a record id, e.g. "npc:mara" → "mara".
// Ids without a known prefix are returned unchanged.
func EntityKey(recordID string) string {
	for _, p := range []string{combatArchivePrefix, npcPrefix, locationPrefix, questPrefix, enemyPrefix} {
		if rest, ok := strings.CutPrefix(recordID, p); ok {
			return rest
		}
	}
	return recordID
}
