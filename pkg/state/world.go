package state

import (
	"math"
	"strings"
	"time"

	"github.com/jwebster45206/turn-engine/pkg/turnerr"
)

// World is the owner's global world record.
type World struct {
	Clock   time.Time `json:"clock"`
	Weather string    `json:"weather,omitempty"`
	Tags    []string  `json:"tags,omitempty"`
}

const day = 24 * time.Hour

// maxDeltaDays bounds a single day delta well inside time.Time's range.
const maxDeltaDays = 100_000_000

var timeUnits = map[string]time.Duration{
	"second":  time.Second,
	"seconds": time.Second,
	"minute":  time.Minute,
	"minutes": time.Minute,
	"hour":    time.Hour,
	"hours":   time.Hour,
	"day":     day,
	"days":    day,
}

// AdvanceClock adds amount units to the clock. Days are calendar days;
// smaller units must fit in a time.Duration. Unknown units, negative or
// oversized amounts are rejected with a ValidationError and leave the clock
// unchanged.
func (w *World) AdvanceClock(amount int, unit string) error {
	d, ok := timeUnits[strings.ToLower(strings.TrimSpace(unit))]
	if !ok {
		return turnerr.Validation("time_delta.unit", "unknown time unit %q", unit)
	}
	if amount < 0 {
		return turnerr.Validation("time_delta.amount", "time cannot move backwards (%d %s)", amount, unit)
	}
	if d == day {
		if amount > maxDeltaDays {
			return turnerr.Validation("time_delta.amount", "%d %s is too large", amount, unit)
		}
		w.Clock = w.Clock.AddDate(0, 0, amount)
		return nil
	}
	if int64(amount) > math.MaxInt64/int64(d) {
		return turnerr.Validation("time_delta.amount", "%d %s is too large", amount, unit)
	}
	w.Clock = w.Clock.Add(time.Duration(amount) * d)
	return nil
}

// TimeOfDay names the part of day the clock is in.
func (w *World) TimeOfDay() string {
	switch h := w.Clock.Hour(); {
	case h < 5:
		return "night"
	case h < 12:
		return "morning"
	case h < 17:
		return "afternoon"
	case h < 21:
		return "evening"
	default:
		return "night"
	}
}
