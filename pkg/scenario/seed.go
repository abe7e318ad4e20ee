package scenario

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/jwebster45206/turn-engine/pkg/actor"
	"github.com/jwebster45206/turn-engine/pkg/state"
	"github.com/jwebster45206/turn-engine/pkg/storage"
	"github.com/jwebster45206/turn-engine/pkg/trigger"
)

// Seed writes the scenario's starting records for ownerID in one batch,
// replacing any records with the same ids.
func (s *Scenario) Seed(ctx context.Context, store storage.Store, ownerID string) error {
	sess := state.NewSession(store, ownerID)

	locations := make(map[string]*Location, len(s.Locations))
	for i := range s.Locations {
		l := s.Locations[i]
		l.NPCs = slices.Clone(l.NPCs)
		locations[l.ID] = &l
	}
	for i := range s.NPCs {
		n := s.NPCs[i]
		if l, ok := locations[n.Location]; ok {
			l.AddNPC(n.ID)
		}
		state.Put(sess, state.NPCID(n.ID), &n)
	}
	for id, l := range locations {
		state.Put(sess, state.LocationID(id), l)
	}

	for i := range s.Quests {
		q := s.Quests[i]
		if q.Status == "" {
			q.Status = QuestActive
		}
		state.Put(sess, state.QuestID(q.ID), &q)
	}
	for i := range s.Enemies {
		e := s.Enemies[i]
		state.Put(sess, state.EnemyID(e.ID), &e)
	}

	player := s.Player
	player.KnownLocations = slices.Clone(player.KnownLocations)
	if player.Location != "" && !slices.Contains(player.KnownLocations, player.Location) {
		player.KnownLocations = append(player.KnownLocations, player.Location)
	}
	state.Put(sess, state.PlayerID, &player)

	state.Put(sess, state.WorldID, &state.World{Clock: s.StartTime, Weather: s.Weather})

	events := &trigger.Set{}
	for _, ev := range s.Events {
		cp := *ev
		cp.Context = maps.Clone(ev.Context)
		events.Add(&cp)
	}
	state.Put(sess, state.EventsID, events)
	state.Put(sess, state.HistoryID, &state.History{})
	sess.Clear(state.CombatActiveID)

	if err := sess.Commit(ctx); err != nil {
		return fmt.Errorf("failed to seed scenario %q for %s: %w", s.Name, ownerID, err)
	}
	return nil
}

// SeedIfNew seeds ownerID unless it already has a player record. It reports
// whether seeding happened.
func (s *Scenario) SeedIfNew(ctx context.Context, store storage.Store, ownerID string) (bool, error) {
	sess := state.NewSession(store, ownerID)
	p, err := state.Load[actor.Player](ctx, sess, state.PlayerID)
	if err != nil {
		return false, err
	}
	if p != nil {
		return false, nil
	}
	if err := s.Seed(ctx, store, ownerID); err != nil {
		return false, err
	}
	return true, nil
}
