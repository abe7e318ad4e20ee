package trigger

// Set is the persisted list of an owner's declared events.
type Set struct {
	Events []*GameEvent `json:"events"`
}

// Find returns the event with id, or nil.
func (s *Set) Find(id string) *GameEvent {
	for _, ev := range s.Events {
		if ev.ID == id {
			return ev
		}
	}
	return nil
}

// Add appends ev, replacing any event with the same id.
func (s *Set) Add(ev *GameEvent) {
	for i, existing := range s.Events {
		if existing.ID == ev.ID {
			s.Events[i] = ev
			return
		}
	}
	s.Events = append(s.Events, ev)
}

// Settle deactivates fired Time events, which would otherwise fire on every
// later turn. It returns the prompts of all fired events in order.
func Settle(fired []*GameEvent) []string {
	prompts := make([]string, 0, len(fired))
	for _, ev := range fired {
		if ev.TriggerType == Time {
			ev.Active = false
		}
		prompts = append(prompts, ev.Prompt)
	}
	return prompts
}
