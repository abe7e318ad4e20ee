package scenario

import "testing"

func TestLocation_NPCsAndExits(t *testing.T) {
	l := &Location{ID: "harbor"}

	l.AddNPC("mara")
	l.AddNPC("mara")
	if len(l.NPCs) != 1 {
		t.Errorf("expected AddNPC to be idempotent, got %v", l.NPCs)
	}
	l.RemoveNPC("mara")
	l.RemoveNPC("nobody")
	if len(l.NPCs) != 0 {
		t.Errorf("expected mara removed, got %v", l.NPCs)
	}

	l.Link("north", "chapel")
	l.Link("north", "reef")
	if l.Exits["north"] != "chapel" {
		t.Errorf("expected existing exit kept, got %q", l.Exits["north"])
	}
}
