package directive

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/turn-engine/pkg/turnerr"
)

func strPtr(s string) *string { return &s }

func TestCreation_RoundTrip(t *testing.T) {
	creations := []Creation{
		&NPCCreation{
			CreationBase: CreationBase{ID: "npc_mara", Name: "Mara", Context: "harbor"},
			Location:     "harbor",
			Description:  "A tired dockhand",
			Disposition:  "wary",
		},
		&LocationCreation{
			CreationBase: CreationBase{ID: "smugglers_cave", Name: "Smuggler's Cave", Context: "harbor"},
			Description:  "Damp and dark",
			Exits:        map[string]string{"south": "harbor"},
		},
		&QuestCreation{
			CreationBase: CreationBase{ID: "lost_cargo", Name: "Lost Cargo", Context: "player"},
			Description:  "Find the missing crates",
			Objectives:   []string{"search the cave", "return to Mara"},
			Giver:        "npc_mara",
		},
	}

	for _, c := range creations {
		t.Run(string(c.Kind()), func(t *testing.T) {
			data, err := json.Marshal(c)
			require.NoError(t, err)

			var fields map[string]any
			require.NoError(t, json.Unmarshal(data, &fields))
			assert.Equal(t, string(c.Kind()), fields["type"])

			decoded, err := DecodeCreation(data)
			require.NoError(t, err)
			assert.Equal(t, c, decoded)
		})
	}
}

func TestUpdate_RoundTrip(t *testing.T) {
	updates := []Update{
		&PlayerUpdate{
			Location: strPtr("smugglers_cave"),
			Health:   CountOf(7),
			Inventory: []ListItem{
				{Name: "lantern", Action: ActionAdd, Description: "Brass, dented", Quantity: CountOf(1)},
				{Name: "rope", Action: ActionRemove},
			},
			Currencies:     []ListItem{{Name: "gold", Action: ActionAdd, Amount: CountOf(12)}},
			StatusEffects:  []ListItem{{Name: "soaked", Action: ActionAdd, Duration: CountOf(3)}},
			KnownNPCs:      []ListItem{{ID: "npc_mara", Action: ActionAdd}},
			KnownLocations: []ListItem{{ID: "harbor", Action: ActionAdd}},
			ActiveQuests:   []ListItem{{ID: "lost_cargo", Action: ActionRemove}},
		},
		&WorldUpdate{
			TimeDelta: &TimeDelta{Amount: 2, Unit: "days"},
			Weather:   strPtr("storm"),
			Tags:      []ListItem{{Name: "festival", Action: ActionAdd}},
		},
		&NPCUpdate{
			ID:            "npc_mara",
			Name:          strPtr("Mara the Bold"),
			Location:      strPtr("tavern"),
			Disposition:   strPtr("friendly"),
			Description:   strPtr("Less tired now"),
			Inventory:     []ListItem{{Name: "letter", Action: ActionAdd}},
			StatusEffects: []ListItem{{Name: "drunk", Action: ActionRemove}},
			Tags:          []ListItem{{Name: "ally", Action: ActionAdd}},
		},
		&LocationUpdate{
			ID:          "harbor",
			Name:        strPtr("Old Harbor"),
			Description: strPtr("Burned"),
			NPCs:        []ListItem{{ID: "npc_mara", Action: ActionRemove}},
			Items:       []ListItem{{Name: "crate", Action: ActionAdd, Quantity: CountOf(4)}},
			Tags:        []ListItem{{Name: "ruined", Action: ActionAdd}},
		},
	}

	for _, u := range updates {
		t.Run(string(u.Kind()), func(t *testing.T) {
			data, err := json.Marshal(u)
			require.NoError(t, err)

			decoded, err := DecodeUpdate(data)
			require.NoError(t, err)
			assert.Equal(t, u, decoded)
		})
	}
}

func TestDecode_UnknownType(t *testing.T) {
	_, err := DecodeCreation([]byte(`{"type":"DRAGON","name":"Smaug"}`))
	var de *turnerr.DecodingError
	require.True(t, errors.As(err, &de), "expected DecodingError, got %v", err)
	assert.Equal(t, "DRAGON", de.Tag)

	_, err = DecodeUpdate([]byte(`{"type":"WEATHER"}`))
	require.True(t, errors.As(err, &de), "expected DecodingError, got %v", err)
	assert.Equal(t, "WEATHER", de.Tag)
}

func TestDecode_MissingType(t *testing.T) {
	tests := map[string]string{
		"absent":     `{"name":"Mara"}`,
		"empty":      `{"type":"","name":"Mara"}`,
		"not object": `["NPC"]`,
		"non-string": `{"type":7}`,
	}
	for name, frag := range tests {
		t.Run(name, func(t *testing.T) {
			var de *turnerr.DecodingError
			_, err := DecodeCreation([]byte(frag))
			assert.True(t, errors.As(err, &de), "creation: expected DecodingError, got %v", err)
			_, err = DecodeUpdate([]byte(frag))
			assert.True(t, errors.As(err, &de), "update: expected DecodingError, got %v", err)
		})
	}
}

func TestDecodeCreation_ExactMatch(t *testing.T) {
	_, err := DecodeCreation([]byte(`{"type":"npc","name":"Mara"}`))
	var de *turnerr.DecodingError
	assert.True(t, errors.As(err, &de), "creation discriminator must match exactly")
}

func TestDecodeUpdate_CaseInsensitive(t *testing.T) {
	for _, tag := range []string{"player", "Player", "PLAYER", "pLaYeR"} {
		u, err := DecodeUpdate([]byte(`{"type":"` + tag + `","location":"harbor"}`))
		require.NoError(t, err, tag)
		assert.Equal(t, UpdatePlayer, u.Kind())
	}
}

func TestDecodeUpdate_TolerantCounts(t *testing.T) {
	u, err := DecodeUpdate([]byte(`{
		"type": "PLAYER",
		"health": "9",
		"inventory": [
			{"name": "arrow", "action": "Add", "quantity": "20"},
			{"name": "bolt", "action": "add", "quantity": 3},
			{"name": "stone", "action": "Add", "quantity": 2.0}
		]
	}`))
	require.NoError(t, err)

	p := u.(*PlayerUpdate)
	assert.Equal(t, 9, p.Health.Int())
	assert.Equal(t, 20, p.Inventory[0].Quantity.Int())
	assert.Equal(t, ActionAdd, p.Inventory[1].Action)
	assert.Equal(t, 3, p.Inventory[1].Quantity.Int())
	assert.Equal(t, 2, p.Inventory[2].Quantity.Int())
}

func TestDecodeUpdate_BadCount(t *testing.T) {
	for _, q := range []string{`"many"`, `1.5`, `"2.5"`, `true`} {
		_, err := DecodeUpdate([]byte(`{"type":"PLAYER","inventory":[{"name":"x","action":"Add","quantity":` + q + `}]}`))
		var de *turnerr.DecodingError
		assert.True(t, errors.As(err, &de), "quantity %s: expected DecodingError, got %v", q, err)
	}
}

func TestDecodeUpdate_InvalidListItems(t *testing.T) {
	tests := map[string]string{
		"missing key":    `{"type":"PLAYER","inventory":[{"action":"Add"}]}`,
		"missing action": `{"type":"PLAYER","inventory":[{"name":"x"}]}`,
		"bad action":     `{"type":"PLAYER","inventory":[{"name":"x","action":"Steal"}]}`,
	}
	for name, frag := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeUpdate([]byte(frag))
			var de *turnerr.DecodingError
			assert.True(t, errors.As(err, &de), "expected DecodingError, got %v", err)
		})
	}
}

func TestDecodeUpdateMap(t *testing.T) {
	updates, err := DecodeUpdateMap([]byte(`{
		"npc_mara": {"type": "NPC", "location": "tavern"},
		"world":    {"type": "world", "time_delta": {"amount": "2", "unit": "hours"}}
	}`))
	require.NoError(t, err)
	require.Len(t, updates, 2)

	npc := updates["npc_mara"].(*NPCUpdate)
	assert.Equal(t, "tavern", *npc.Location)
	assert.Empty(t, npc.ID)

	world := updates["world"].(*WorldUpdate)
	assert.Equal(t, Count(2), world.TimeDelta.Amount)
	assert.Equal(t, "hours", world.TimeDelta.Unit)

	assert.Equal(t, []string{"world", "npc_mara"}, SortedKeys(updates))
}

func TestDecodeUpdateMap_PropagatesErrors(t *testing.T) {
	_, err := DecodeUpdateMap([]byte(`{"x": {"type": "GHOST"}}`))
	var de *turnerr.DecodingError
	assert.True(t, errors.As(err, &de))
}
