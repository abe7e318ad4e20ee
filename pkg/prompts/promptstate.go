package prompts

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jwebster45206/turn-engine/pkg/actor"
	"github.com/jwebster45206/turn-engine/pkg/combat"
	"github.com/jwebster45206/turn-engine/pkg/scenario"
	"github.com/jwebster45206/turn-engine/pkg/state"
)

// Snapshot is the slice of an owner's records a narration prompt needs.
type Snapshot struct {
	Player   *actor.Player
	World    *state.World
	Location *scenario.Location
	Exits    map[string]*scenario.Location // direction → destination, when loadable
	NPCs     []*actor.NPC                  // NPCs at the player's location
	Quests   []*scenario.Quest
	Combat   *combat.State
	History  *state.History
}

// LoadSnapshot reads everything around the player's current location.
func LoadSnapshot(ctx context.Context, sess *state.Session) (*Snapshot, error) {
	snap := &Snapshot{}

	p, err := state.Load[actor.Player](ctx, sess, state.PlayerID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		p = &actor.Player{ID: state.PlayerID}
	}
	snap.Player = p

	if snap.World, err = state.Load[state.World](ctx, sess, state.WorldID); err != nil {
		return nil, err
	}
	if snap.History, err = state.Load[state.History](ctx, sess, state.HistoryID); err != nil {
		return nil, err
	}
	if snap.Combat, err = state.Load[combat.State](ctx, sess, state.CombatActiveID); err != nil {
		return nil, err
	}

	if p.Location != "" {
		if snap.Location, err = state.Load[scenario.Location](ctx, sess, state.LocationID(p.Location)); err != nil {
			return nil, err
		}
	}
	if loc := snap.Location; loc != nil {
		snap.Exits = make(map[string]*scenario.Location, len(loc.Exits))
		for dir, to := range loc.Exits {
			dest, err := state.Load[scenario.Location](ctx, sess, state.LocationID(to))
			if err != nil {
				return nil, err
			}
			snap.Exits[dir] = dest
		}
		for _, id := range loc.NPCs {
			npc, err := state.Load[actor.NPC](ctx, sess, state.NPCID(id))
			if err != nil {
				return nil, err
			}
			if npc != nil {
				snap.NPCs = append(snap.NPCs, npc)
			}
		}
	}

	for _, id := range p.ActiveQuests {
		q, err := state.Load[scenario.Quest](ctx, sess, state.QuestID(id))
		if err != nil {
			return nil, err
		}
		if q != nil {
			snap.Quests = append(snap.Quests, q)
		}
	}
	return snap, nil
}

// PromptState is the reduced, prompt-facing form of a Snapshot.
type PromptState struct {
	Player      PlayerState       `json:"player"`
	Location    *LocationState    `json:"current_location,omitempty"`
	NPCsPresent []NPCState        `json:"npcs_present,omitempty"`
	Quests      []QuestState      `json:"active_quests,omitempty"`
	Time        string            `json:"time,omitempty"`
	Weather     string            `json:"weather,omitempty"`
	WorldTags   []string          `json:"world_tags,omitempty"`
	Combat      *CombatState      `json:"combat,omitempty"`
	Exits       map[string]string `json:"exits,omitempty"` // direction → destination display name
}

type PlayerState struct {
	Name          string        `json:"name,omitempty"`
	Health        string        `json:"health,omitempty"`
	Inventory     []actor.Entry `json:"inventory,omitempty"`
	Currencies    []actor.Entry `json:"currencies,omitempty"`
	StatusEffects []actor.Entry `json:"status_effects,omitempty"`
}

type LocationState struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Items       []actor.Entry `json:"items,omitempty"`
	Tags        []string      `json:"tags,omitempty"`
}

type NPCState struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Disposition string `json:"disposition,omitempty"`
	Description string `json:"description,omitempty"`
}

type QuestState struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Objectives []string `json:"objectives,omitempty"`
}

type CombatState struct {
	Enemy            string        `json:"enemy"`
	SuccessesNeeded  int           `json:"successes_needed"`
	PlayerConditions []actor.Entry `json:"player_conditions,omitempty"`
}

var titleCaser = cases.Title(language.English)

// DisplayName returns name, or a title-cased form of id when name is empty,
// e.g. "smugglers_cave" → "Smugglers Cave".
func DisplayName(id, name string) string {
	if name != "" {
		return name
	}
	return titleCaser.String(strings.ReplaceAll(id, "_", " "))
}

// ToPromptState reduces snap for a narration prompt.
func ToPromptState(snap *Snapshot) *PromptState {
	ps := &PromptState{}
	if p := snap.Player; p != nil {
		ps.Player = PlayerState{
			Name:          p.Name,
			Inventory:     p.Inventory,
			Currencies:    p.Currencies,
			StatusEffects: p.StatusEffects,
		}
		if p.MaxHealth > 0 {
			ps.Player.Health = fmt.Sprintf("%d/%d", p.Health, p.MaxHealth)
		}
	}
	if l := snap.Location; l != nil {
		ps.Location = &LocationState{
			ID:          l.ID,
			Name:        DisplayName(l.ID, l.Name),
			Description: l.Description,
			Items:       l.Items,
			Tags:        l.Tags,
		}
		if len(l.Exits) > 0 {
			ps.Exits = make(map[string]string, len(l.Exits))
			for dir, to := range l.Exits {
				name := ""
				if dest := snap.Exits[dir]; dest != nil {
					name = dest.Name
				}
				ps.Exits[dir] = DisplayName(to, name)
			}
		}
	}
	for _, n := range snap.NPCs {
		ps.NPCsPresent = append(ps.NPCsPresent, NPCState{
			ID:          n.ID,
			Name:        DisplayName(n.ID, n.Name),
			Disposition: n.Disposition,
			Description: n.Description,
		})
	}
	for _, q := range snap.Quests {
		ps.Quests = append(ps.Quests, QuestState{ID: q.ID, Name: q.Name, Objectives: q.Objectives})
	}
	if w := snap.World; w != nil {
		if !w.Clock.IsZero() {
			ps.Time = w.Clock.Format("Mon Jan 2 15:04") + " (" + w.TimeOfDay() + ")"
		}
		ps.Weather = w.Weather
		ps.WorldTags = w.Tags
	}
	if c := snap.Combat; c != nil && c.IsActive {
		ps.Combat = &CombatState{
			Enemy:            c.EnemyName,
			SuccessesNeeded:  c.Remaining(),
			PlayerConditions: c.PlayerConditions,
		}
	}
	return ps
}
