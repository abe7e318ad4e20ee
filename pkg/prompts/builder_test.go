package prompts

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jwebster45206/turn-engine/pkg/actor"
	"github.com/jwebster45206/turn-engine/pkg/chat"
	"github.com/jwebster45206/turn-engine/pkg/combat"
	"github.com/jwebster45206/turn-engine/pkg/scenario"
	"github.com/jwebster45206/turn-engine/pkg/state"
	"github.com/jwebster45206/turn-engine/pkg/storage"
)

func testScenario() *scenario.Scenario {
	return &scenario.Scenario{
		Name:     "Test",
		Story:    "A test story",
		Narrator: &scenario.Narrator{Name: "Grim", Prompts: []string{"Be terse."}},
		Rules:    []string{"The bell never stops."},
	}
}

func testSnapshot() *Snapshot {
	return &Snapshot{
		Player:   &actor.Player{ID: "player", Name: "Wren", Health: 7, MaxHealth: 10},
		World:    &state.World{Clock: time.Date(2024, 6, 1, 19, 30, 0, 0, time.UTC), Weather: "fog"},
		Location: &scenario.Location{ID: "harbor", Name: "Harbor", Exits: map[string]string{"north": "smugglers_cave"}},
		Exits:    map[string]*scenario.Location{"north": nil},
		NPCs:     []*actor.NPC{{ID: "mara", Name: "Mara", Disposition: "wary"}},
	}
}

func TestNew(t *testing.T) {
	builder := New()
	if builder.historyLimit != DefaultHistoryLimit {
		t.Errorf("Expected default history limit of %d, got %d", DefaultHistoryLimit, builder.historyLimit)
	}
}

func TestBuilder_Build_RequiresInputs(t *testing.T) {
	if _, err := New().WithScenario(testScenario()).Build(); err == nil {
		t.Error("Expected error without snapshot")
	}
	if _, err := New().WithSnapshot(testSnapshot()).Build(); err == nil {
		t.Error("Expected error without scenario")
	}
}

func TestBuilder_Build(t *testing.T) {
	snap := testSnapshot()
	snap.History = &state.History{}
	for i := 0; i < 30; i++ {
		snap.History.Append(chat.ChatMessage{Role: chat.ChatRoleUser, Content: "msg"})
	}

	msgs, err := New().
		WithSnapshot(snap).
		WithScenario(testScenario()).
		WithUserMessage("I look around.", chat.ChatRoleUser).
		WithStoryEvents([]string{"The bell tolls."}).
		WithHistoryLimit(5).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// system + 5 history + user + event + post
	if len(msgs) != 9 {
		t.Fatalf("Expected 9 messages, got %d", len(msgs))
	}

	system := msgs[0].Content
	for _, want := range []string{"You are Grim", "- Be terse.", "1. The bell never stops.", "<game_state>", `"npcs_present"`, "Smugglers Cave", "evening", "Health 7/10"} {
		if !strings.Contains(system, want) {
			t.Errorf("Expected system prompt to contain %q", want)
		}
	}
	if strings.Contains(system, "### Combat") {
		t.Error("Expected no combat section outside combat")
	}

	if msgs[6].Content != "I look around." || msgs[6].Role != chat.ChatRoleUser {
		t.Errorf("Unexpected user message %+v", msgs[6])
	}
	if msgs[7].Content != "STORY EVENT: The bell tolls." {
		t.Errorf("Unexpected story event message %q", msgs[7].Content)
	}
	if msgs[8].Content != UserPostPrompt {
		t.Errorf("Expected post prompt last, got %q", msgs[8].Content)
	}
}

func TestBuilder_CombatSection(t *testing.T) {
	snap := testSnapshot()
	snap.Combat = &combat.State{EnemyName: "Drowned Priest", SuccessesRequired: 4, SuccessesSoFar: 1, IsActive: true}

	msgs, err := New().WithSnapshot(snap).WithScenario(testScenario()).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !strings.Contains(msgs[0].Content, "fighting Drowned Priest. The player needs 3 more") {
		t.Errorf("Expected combat section, got %q", msgs[0].Content)
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct{ id, name, want string }{
		{"smugglers_cave", "", "Smugglers Cave"},
		{"harbor", "Old Harbor", "Old Harbor"},
	}
	for _, tt := range tests {
		if got := DisplayName(tt.id, tt.name); got != tt.want {
			t.Errorf("DisplayName(%q, %q) = %q, want %q", tt.id, tt.name, got, tt.want)
		}
	}
}

func TestFormatStoryEvents(t *testing.T) {
	got := FormatStoryEvents([]string{"One.", " ", "Two."})
	if got != "STORY EVENT: One.\n\nSTORY EVENT: Two." {
		t.Errorf("unexpected %q", got)
	}
	if FormatStoryEvents(nil) != "" {
		t.Error("expected empty string for no events")
	}
}

func TestLoadSnapshot(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	seed := state.NewSession(store, "o1")
	state.Put(seed, state.PlayerID, &actor.Player{ID: "player", Location: "harbor", ActiveQuests: []string{"bell", "missing"}})
	state.Put(seed, state.LocationID("harbor"), &scenario.Location{ID: "harbor", NPCs: []string{"mara", "ghost"}, Exits: map[string]string{"north": "chapel"}})
	state.Put(seed, state.LocationID("chapel"), &scenario.Location{ID: "chapel", Name: "Chapel"})
	state.Put(seed, state.NPCID("mara"), &actor.NPC{ID: "mara", Name: "Mara"})
	state.Put(seed, state.QuestID("bell"), &scenario.Quest{ID: "bell", Name: "Silence the Bell"})
	if err := seed.Commit(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}

	snap, err := LoadSnapshot(ctx, state.NewSession(store, "o1"))
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if snap.Location == nil || snap.Location.ID != "harbor" {
		t.Fatalf("expected harbor, got %+v", snap.Location)
	}
	if len(snap.NPCs) != 1 || len(snap.Quests) != 1 {
		t.Errorf("expected dangling ids skipped, got %d npcs, %d quests", len(snap.NPCs), len(snap.Quests))
	}
	ps := ToPromptState(snap)
	if ps.Exits["north"] != "Chapel" || ps.Location.Name != "Harbor" {
		t.Errorf("unexpected prompt state %+v", ps)
	}
}
