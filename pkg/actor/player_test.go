package actor

import "testing"

func TestPlayer_SetHealth(t *testing.T) {
	t.Run("clamps to max", func(t *testing.T) {
		p := &Player{MaxHealth: 10}
		p.SetHealth(14)
		if p.Health != 10 {
			t.Errorf("expected health 10, got %d", p.Health)
		}
	})

	t.Run("clamps at zero", func(t *testing.T) {
		p := &Player{Health: 4, MaxHealth: 10}
		p.SetHealth(-3)
		if p.Health != 0 {
			t.Errorf("expected health 0, got %d", p.Health)
		}
		if !p.IsDown() {
			t.Error("expected player to be down at 0 health")
		}
	})

	t.Run("no max means no upper clamp", func(t *testing.T) {
		p := &Player{}
		p.SetHealth(50)
		if p.Health != 50 {
			t.Errorf("expected health 50, got %d", p.Health)
		}
		if p.IsDown() {
			t.Error("player without max health is never down")
		}
	})
}

func TestPlayer_Summary(t *testing.T) {
	p := &Player{
		ID:        "pc",
		Name:      "Wren",
		Pronouns:  "she/her",
		Location:  "harbor",
		Health:    7,
		MaxHealth: 10,
		Inventory: []Entry{{Name: "lantern", Quantity: 1}, {Name: "rope", Quantity: 2}},
	}
	want := "The player is Wren (she/her), at harbor. Health 7/10. Carrying: lantern, rope x2."
	if got := p.Summary(); got != want {
		t.Errorf("Summary() =\n%q\nwant\n%q", got, want)
	}
}

func TestFindEntry(t *testing.T) {
	entries := []Entry{{Name: "rope"}, {ID: "key_1", Name: "Iron Key"}}
	if i := FindEntry(entries, "key_1"); i != 1 {
		t.Errorf("expected index 1, got %d", i)
	}
	if i := FindEntry(entries, "Iron Key"); i != -1 {
		t.Errorf("entries with an id are keyed by id, got index %d", i)
	}
	if i := FindEntry(entries, "rope"); i != 0 {
		t.Errorf("expected index 0, got %d", i)
	}
}
