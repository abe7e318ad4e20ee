package mutation

import (
	"reflect"
	"testing"

	"github.com/jwebster45206/turn-engine/pkg/actor"
	"github.com/jwebster45206/turn-engine/pkg/directive"
)

func TestApplyEntries(t *testing.T) {
	tests := []struct {
		name    string
		entries []actor.Entry
		items   []directive.ListItem
		want    []actor.Entry
	}{
		{
			name:  "add to empty",
			items: []directive.ListItem{{Name: "rope", Action: directive.ActionAdd, Quantity: directive.CountOf(2)}},
			want:  []actor.Entry{{Name: "rope", Quantity: 2}},
		},
		{
			name:    "add replaces by name, case-insensitively",
			entries: []actor.Entry{{Name: "Rope", Quantity: 1}},
			items:   []directive.ListItem{{Name: "rope", Action: directive.ActionAdd, Quantity: directive.CountOf(5)}},
			want:    []actor.Entry{{Name: "rope", Quantity: 5}},
		},
		{
			name:    "currency amount",
			entries: []actor.Entry{{Name: "gold", Quantity: 3}},
			items:   []directive.ListItem{{Name: "gold", Action: directive.ActionAdd, Amount: directive.CountOf(12)}},
			want:    []actor.Entry{{Name: "gold", Quantity: 12}},
		},
		{
			name:    "remove by id",
			entries: []actor.Entry{{ID: "k1", Name: "key"}, {Name: "rope"}},
			items:   []directive.ListItem{{ID: "k1", Action: directive.ActionRemove}},
			want:    []actor.Entry{{Name: "rope"}},
		},
		{
			name:    "remove absent is a no-op",
			entries: []actor.Entry{{Name: "rope"}},
			items:   []directive.ListItem{{Name: "sword", Action: directive.ActionRemove}},
			want:    []actor.Entry{{Name: "rope"}},
		},
		{
			name:  "status effect duration",
			items: []directive.ListItem{{Name: "soaked", Action: directive.ActionAdd, Duration: directive.CountOf(3)}},
			want:  []actor.Entry{{Name: "soaked", Duration: 3}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyEntries(tt.entries, tt.items)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ApplyEntries() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestApplyStrings(t *testing.T) {
	got := ApplyStrings([]string{"harbor"}, []directive.ListItem{
		{ID: "harbor", Action: directive.ActionAdd},
		{ID: "chapel", Action: directive.ActionAdd},
		{ID: "reef", Action: directive.ActionRemove},
		{ID: "harbor", Action: directive.ActionRemove},
	})
	if !reflect.DeepEqual(got, []string{"chapel"}) {
		t.Errorf("ApplyStrings() = %v, want [chapel]", got)
	}
}
