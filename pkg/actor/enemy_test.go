package actor

import "testing"

func TestSuccessesForLevel(t *testing.T) {
	want := map[int]int{1: 1, 2: 1, 3: 2, 4: 2, 5: 3, 6: 3, 7: 4, 8: 4, 9: 5, 10: 5}
	for level, successes := range want {
		if got := SuccessesForLevel(level); got != successes {
			t.Errorf("level %d: expected %d successes, got %d", level, successes, got)
		}
	}
}

func TestNewEnemyStatBlock(t *testing.T) {
	t.Run("computes successes at creation", func(t *testing.T) {
		e, err := NewEnemyStatBlock("sea_hag", "Sea Hag", 7)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if e.SuccessesRequired != 4 {
			t.Errorf("expected 4 successes required, got %d", e.SuccessesRequired)
		}
	})

	t.Run("defaults name to id", func(t *testing.T) {
		e, err := NewEnemyStatBlock("rat", "", 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if e.Name != "rat" {
			t.Errorf("expected name 'rat', got '%s'", e.Name)
		}
	})

	t.Run("rejects out of range levels", func(t *testing.T) {
		for _, level := range []int{0, -1, 11} {
			if _, err := NewEnemyStatBlock("x", "X", level); err == nil {
				t.Errorf("expected error for level %d", level)
			}
		}
	})

	t.Run("requires id", func(t *testing.T) {
		if _, err := NewEnemyStatBlock("", "Nameless", 3); err == nil {
			t.Error("expected error for empty id")
		}
	})
}
