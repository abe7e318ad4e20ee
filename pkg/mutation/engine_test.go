package mutation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jwebster45206/turn-engine/pkg/actor"
	"github.com/jwebster45206/turn-engine/pkg/directive"
	"github.com/jwebster45206/turn-engine/pkg/scenario"
	"github.com/jwebster45206/turn-engine/pkg/state"
	"github.com/jwebster45206/turn-engine/pkg/storage"
	"github.com/jwebster45206/turn-engine/pkg/turnerr"
)

const owner = "owner-1"

var startClock = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// setupWorld seeds a harbor and chapel, Mara in the harbor, and a player
// carrying a lantern.
func setupWorld(t *testing.T) (*storage.MemoryStore, *Engine) {
	t.Helper()
	store := storage.NewMemoryStore()
	sess := state.NewSession(store, owner)
	state.Put(sess, state.LocationID("harbor"), &scenario.Location{ID: "harbor", Name: "Harbor", NPCs: []string{"mara"}})
	state.Put(sess, state.LocationID("chapel"), &scenario.Location{ID: "chapel", Name: "Chapel"})
	state.Put(sess, state.NPCID("mara"), &actor.NPC{ID: "mara", Name: "Mara", Location: "harbor"})
	state.Put(sess, state.PlayerID, &actor.Player{
		ID:        state.PlayerID,
		Location:  "harbor",
		Health:    8,
		MaxHealth: 10,
		Inventory: []actor.Entry{{Name: "lantern", Description: "brass", Quantity: 1}},
	})
	state.Put(sess, state.WorldID, &state.World{Clock: startClock})
	if err := sess.Commit(context.Background()); err != nil {
		t.Fatalf("failed to seed: %v", err)
	}
	n := 0
	engine := NewEngine(store, testLogger()).WithIDSource(func() string {
		n++
		return "gen-" + string(rune('0'+n))
	})
	return store, engine
}

func load[T any](t *testing.T, store storage.Store, id string) *T {
	t.Helper()
	v, err := state.Load[T](context.Background(), state.NewSession(store, owner), id)
	if err != nil {
		t.Fatalf("load %s: %v", id, err)
	}
	return v
}

func TestApply_ListAddReplacesAndRemoveIsNoOp(t *testing.T) {
	store, engine := setupWorld(t)

	_, err := engine.Apply(context.Background(), owner, nil, map[string]directive.Update{
		"player": &directive.PlayerUpdate{Inventory: []directive.ListItem{
			{Name: "lantern", Action: directive.ActionAdd, Description: "lit", Quantity: directive.CountOf(2)},
			{Name: "rope", Action: directive.ActionRemove},
			{Name: "map", Action: directive.ActionAdd},
		}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p := load[actor.Player](t, store, state.PlayerID)
	if len(p.Inventory) != 2 {
		t.Fatalf("expected 2 items, got %+v", p.Inventory)
	}
	if p.Inventory[0].Description != "lit" || p.Inventory[0].Quantity != 2 {
		t.Errorf("expected lantern replaced in place, got %+v", p.Inventory[0])
	}
	if p.Inventory[1].Name != "map" {
		t.Errorf("expected map appended, got %+v", p.Inventory[1])
	}
}

func TestApply_WorldTimeDelta(t *testing.T) {
	store, engine := setupWorld(t)

	_, err := engine.Apply(context.Background(), owner, nil, map[string]directive.Update{
		"world": &directive.WorldUpdate{TimeDelta: &directive.TimeDelta{Amount: 2, Unit: "days"}, Weather: strPtr("storm")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w := load[state.World](t, store, state.WorldID)
	if want := startClock.Add(48 * time.Hour); !w.Clock.Equal(want) {
		t.Errorf("clock = %v, want %v", w.Clock, want)
	}
	if w.Weather != "storm" {
		t.Errorf("weather = %q, want storm", w.Weather)
	}
}

func TestApply_UnknownUnitRollsBackBatch(t *testing.T) {
	store, engine := setupWorld(t)
	saves := store.Saves()

	_, err := engine.Apply(context.Background(), owner, nil, map[string]directive.Update{
		"world":  &directive.WorldUpdate{TimeDelta: &directive.TimeDelta{Amount: 3, Unit: "fortnights"}},
		"player": &directive.PlayerUpdate{Health: directive.CountOf(1)},
	})
	var ve *turnerr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if store.Saves() != saves {
		t.Error("expected nothing committed")
	}
	if w := load[state.World](t, store, state.WorldID); !w.Clock.Equal(startClock) {
		t.Errorf("expected clock unchanged, got %v", w.Clock)
	}
	if p := load[actor.Player](t, store, state.PlayerID); p.Health != 8 {
		t.Errorf("expected health unchanged, got %d", p.Health)
	}
}

func TestApply_OversizedTimeDeltaRollsBack(t *testing.T) {
	store, engine := setupWorld(t)
	saves := store.Saves()

	_, err := engine.Apply(context.Background(), owner, nil, map[string]directive.Update{
		"world": &directive.WorldUpdate{TimeDelta: &directive.TimeDelta{Amount: 3_000_000, Unit: "hours"}},
	})
	var ve *turnerr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if store.Saves() != saves {
		t.Error("expected nothing committed")
	}
	if w := load[state.World](t, store, state.WorldID); !w.Clock.Equal(startClock) {
		t.Errorf("expected clock unchanged, got %v", w.Clock)
	}
}

func TestApply_CreateNPCLinksLocation(t *testing.T) {
	store, engine := setupWorld(t)

	res, err := engine.Apply(context.Background(), owner, []directive.Creation{
		&directive.NPCCreation{CreationBase: directive.CreationBase{Name: "Old Tom", Context: "chapel"}, Disposition: "grumpy"},
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Created) != 1 || res.Created[0] != state.NPCID("gen-1") {
		t.Fatalf("expected generated id, got %v", res.Created)
	}

	npc := load[actor.NPC](t, store, state.NPCID("gen-1"))
	if npc.Location != "chapel" || npc.Name != "Old Tom" {
		t.Errorf("unexpected npc %+v", npc)
	}
	chapel := load[scenario.Location](t, store, state.LocationID("chapel"))
	if len(chapel.NPCs) != 1 || chapel.NPCs[0] != "gen-1" {
		t.Errorf("expected npc in chapel, got %v", chapel.NPCs)
	}
}

func TestApply_CreationValidation(t *testing.T) {
	tests := []struct {
		name     string
		creation directive.Creation
		field    string
	}{
		{"missing name", &directive.NPCCreation{CreationBase: directive.CreationBase{Context: "harbor"}}, "name"},
		{"npc without location", &directive.NPCCreation{CreationBase: directive.CreationBase{Name: "Ghost"}}, "location"},
		{"npc at unknown location", &directive.NPCCreation{CreationBase: directive.CreationBase{Name: "Ghost"}, Location: "reef"}, "location"},
		{"duplicate id", &directive.NPCCreation{CreationBase: directive.CreationBase{ID: "mara", Name: "Mara"}, Location: "harbor"}, "id"},
		{"location unknown context", &directive.LocationCreation{CreationBase: directive.CreationBase{Name: "Cave", Context: "reef"}}, "context"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, engine := setupWorld(t)
			saves := store.Saves()

			_, err := engine.Apply(context.Background(), owner, []directive.Creation{
				&directive.QuestCreation{CreationBase: directive.CreationBase{ID: "q1", Name: "First"}},
				tt.creation,
			}, nil)
			var ve *turnerr.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tt.field {
				t.Errorf("field = %q, want %q", ve.Field, tt.field)
			}
			if store.Saves() != saves {
				t.Error("expected earlier creation in the batch to be rolled back")
			}
			if q := load[scenario.Quest](t, store, state.QuestID("q1")); q != nil {
				t.Errorf("expected no quest record, got %+v", q)
			}
		})
	}
}

func TestApply_CreateQuestForPlayer(t *testing.T) {
	store, engine := setupWorld(t)

	_, err := engine.Apply(context.Background(), owner, []directive.Creation{
		&directive.QuestCreation{CreationBase: directive.CreationBase{ID: "bell", Name: "Silence the Bell", Context: "player"}, Giver: "mara"},
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := load[actor.Player](t, store, state.PlayerID)
	if len(p.ActiveQuests) != 1 || p.ActiveQuests[0] != "bell" {
		t.Errorf("expected quest on player, got %v", p.ActiveQuests)
	}
	if q := load[scenario.Quest](t, store, state.QuestID("bell")); q == nil || q.Status != scenario.QuestActive {
		t.Errorf("expected active quest record, got %+v", q)
	}
}

func TestApply_CreateLocationLinksContext(t *testing.T) {
	store, engine := setupWorld(t)

	_, err := engine.Apply(context.Background(), owner, []directive.Creation{
		&directive.LocationCreation{CreationBase: directive.CreationBase{ID: "cave", Name: "Cave", Context: "harbor"}},
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	harbor := load[scenario.Location](t, store, state.LocationID("harbor"))
	if harbor.Exits["Cave"] != "cave" {
		t.Errorf("expected harbor to link to cave, got %v", harbor.Exits)
	}
	cave := load[scenario.Location](t, store, state.LocationID("cave"))
	if cave.Exits["Harbor"] != "harbor" {
		t.Errorf("expected cave to link back to harbor, got %v", cave.Exits)
	}
}

func TestApply_PlayerMoveRecordsTransition(t *testing.T) {
	store, engine := setupWorld(t)

	res, err := engine.Apply(context.Background(), owner, nil, map[string]directive.Update{
		"player": &directive.PlayerUpdate{Location: strPtr("chapel")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Transition == nil || res.Transition.Previous != "harbor" || res.Transition.Current != "chapel" {
		t.Fatalf("unexpected transition %+v", res.Transition)
	}
	p := load[actor.Player](t, store, state.PlayerID)
	if p.Location != "chapel" || len(p.KnownLocations) != 1 || p.KnownLocations[0] != "chapel" {
		t.Errorf("unexpected player %+v", p)
	}

	res, err = engine.Apply(context.Background(), owner, nil, map[string]directive.Update{
		"player": &directive.PlayerUpdate{Location: strPtr("chapel")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Transition != nil {
		t.Errorf("expected no transition when staying put, got %+v", res.Transition)
	}
}

func TestApply_NPCMoveAndKeyedTarget(t *testing.T) {
	store, engine := setupWorld(t)

	_, err := engine.Apply(context.Background(), owner, nil, map[string]directive.Update{
		"npc:mara": &directive.NPCUpdate{Location: strPtr("chapel"), Disposition: strPtr("friendly"),
			Tags: []directive.ListItem{{Name: "ally", Action: directive.ActionAdd}}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	npc := load[actor.NPC](t, store, state.NPCID("mara"))
	if npc.Location != "chapel" || npc.Disposition != "friendly" || len(npc.Tags) != 1 {
		t.Errorf("unexpected npc %+v", npc)
	}
	if h := load[scenario.Location](t, store, state.LocationID("harbor")); len(h.NPCs) != 0 {
		t.Errorf("expected mara to leave harbor, got %v", h.NPCs)
	}
	if c := load[scenario.Location](t, store, state.LocationID("chapel")); len(c.NPCs) != 1 {
		t.Errorf("expected mara in chapel, got %v", c.NPCs)
	}
}

func TestApply_LocationNPCsMoveTheNPC(t *testing.T) {
	store, engine := setupWorld(t)

	_, err := engine.Apply(context.Background(), owner, nil, map[string]directive.Update{
		"chapel": &directive.LocationUpdate{NPCs: []directive.ListItem{{ID: "mara", Action: directive.ActionAdd}}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if npc := load[actor.NPC](t, store, state.NPCID("mara")); npc.Location != "chapel" {
		t.Errorf("expected mara in chapel, got %q", npc.Location)
	}
	if h := load[scenario.Location](t, store, state.LocationID("harbor")); len(h.NPCs) != 0 {
		t.Errorf("expected mara to leave harbor, got %v", h.NPCs)
	}
	if c := load[scenario.Location](t, store, state.LocationID("chapel")); len(c.NPCs) != 1 || c.NPCs[0] != "mara" {
		t.Errorf("expected mara listed in chapel, got %v", c.NPCs)
	}

	_, err = engine.Apply(context.Background(), owner, nil, map[string]directive.Update{
		"chapel": &directive.LocationUpdate{NPCs: []directive.ListItem{
			{ID: "mara", Action: directive.ActionRemove},
			{ID: "nobody", Action: directive.ActionRemove},
		}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if npc := load[actor.NPC](t, store, state.NPCID("mara")); npc.Location != "" {
		t.Errorf("expected mara to be nowhere, got %q", npc.Location)
	}
	if c := load[scenario.Location](t, store, state.LocationID("chapel")); len(c.NPCs) != 0 {
		t.Errorf("expected chapel empty, got %v", c.NPCs)
	}

	_, err = engine.Apply(context.Background(), owner, nil, map[string]directive.Update{
		"chapel": &directive.LocationUpdate{NPCs: []directive.ListItem{{ID: "nobody", Action: directive.ActionAdd}}},
	})
	var ve *turnerr.ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("expected ValidationError for unknown NPC, got %v", err)
	}
}

func TestApply_UnknownUpdateTarget(t *testing.T) {
	_, engine := setupWorld(t)

	_, err := engine.Apply(context.Background(), owner, nil, map[string]directive.Update{
		"ghost": &directive.NPCUpdate{Disposition: strPtr("hostile")},
	})
	var ve *turnerr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestApply_CommitFailure(t *testing.T) {
	store, engine := setupWorld(t)
	store.SetSaveError(errors.New("connection reset"))

	_, err := engine.Apply(context.Background(), owner, nil, map[string]directive.Update{
		"player": &directive.PlayerUpdate{Health: directive.CountOf(3)},
	})
	var se *turnerr.StoreError
	if !errors.As(err, &se) {
		t.Fatalf("expected StoreError, got %v", err)
	}
}
