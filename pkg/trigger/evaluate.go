package trigger

import "time"

// Context is the world state an event is checked against.
type Context struct {
	CurrentTime        time.Time
	CurrentLocationID  string
	PreviousLocationID string // empty when the player did not move this turn
}

// Evaluator decides whether one event fires. Evaluators return false for
// events whose trigger value is not the type they handle.
type Evaluator func(ev *GameEvent, c Context) bool

var evaluators = map[Type]Evaluator{
	Time:               evalTime,
	LocationChange:     evalLocationChange,
	FirstLocationEntry: evalFirstEntry,
}

// ShouldFire dispatches ev to the evaluator for its trigger type.
// For FirstLocationEntry events with MustBeFirstVisit it also records the
// visit in ev.Context, so a second call for the same transition returns false.
func ShouldFire(ev *GameEvent, c Context) bool {
	if ev == nil {
		return false
	}
	eval, ok := evaluators[ev.TriggerType]
	if !ok {
		return false
	}
	return eval(ev, c)
}

// Evaluate checks every active event and returns the ones that fired, in
// declaration order.
func Evaluate(events []*GameEvent, c Context) []*GameEvent {
	var fired []*GameEvent
	for _, ev := range events {
		if ev == nil || !ev.Active {
			continue
		}
		if ShouldFire(ev, c) {
			fired = append(fired, ev)
		}
	}
	return fired
}

func evalTime(ev *GameEvent, c Context) bool {
	v, ok := ev.TriggerValue.(TimeValue)
	if !ok {
		return false
	}
	return !c.CurrentTime.Before(v.TargetTime)
}

func entered(locationID string, c Context) bool {
	return locationID != "" && c.CurrentLocationID == locationID && c.PreviousLocationID != ""
}

func evalLocationChange(ev *GameEvent, c Context) bool {
	v, ok := ev.TriggerValue.(LocationValue)
	if !ok {
		return false
	}
	return entered(v.LocationID, c)
}

func evalFirstEntry(ev *GameEvent, c Context) bool {
	v, ok := ev.TriggerValue.(FirstEntryValue)
	if !ok {
		return false
	}
	if !entered(v.LocationID, c) {
		return false
	}
	if !v.MustBeFirstVisit {
		return true
	}
	if visited, _ := ev.Context[HasVisitedKey].(bool); visited {
		return false
	}
	if ev.Context == nil {
		ev.Context = make(map[string]any)
	}
	ev.Context[HasVisitedKey] = true
	return true
}
