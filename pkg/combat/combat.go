// Package combat runs an encounter between the player and one enemy.
//
// An encounter is Inactive until started, Active while exchanges are being
// narrated, and Resolved once the player scores enough successes (victory)
// or a directive declares the player defeated. Resolved encounters are
// immutable.
package combat

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/turn-engine/pkg/actor"
	"github.com/jwebster45206/turn-engine/pkg/directive"
	"github.com/jwebster45206/turn-engine/pkg/mutation"
	"github.com/jwebster45206/turn-engine/pkg/turnerr"
)

// ErrCombatResolved is returned when a resolved encounter is advanced.
var ErrCombatResolved = errors.New("combat already resolved")

// Outcome is how a resolved encounter ended.
type Outcome string

const (
	OutcomeNone    Outcome = ""
	OutcomeVictory Outcome = "victory"
	OutcomeDefeat  Outcome = "defeat"
)

// State is a persisted encounter.
type State struct {
	CombatID          string        `json:"combat_id"`
	OwnerID           string        `json:"owner_id"`
	EnemyRecordID     string        `json:"enemy_record_id"`
	EnemyName         string        `json:"enemy_name"`
	SuccessesSoFar    int           `json:"successes_so_far"`
	SuccessesRequired int           `json:"successes_required"`
	PlayerConditions  []actor.Entry `json:"player_conditions,omitempty"`
	TurnLog           []string      `json:"turn_log,omitempty"`
	IsActive          bool          `json:"is_active"`
	Outcome           Outcome       `json:"outcome,omitempty"`
	StartedAt         time.Time     `json:"started_at"`
	EndedAt           time.Time     `json:"ended_at,omitzero"`
	Summary           string        `json:"summary,omitempty"`
}

// Start begins an encounter against enemy, snapshotting the successes it
// requires. recordID is the enemy's record id.
func Start(ownerID, recordID string, enemy *actor.EnemyStatBlock, now time.Time) (*State, error) {
	if enemy == nil {
		return nil, turnerr.Validation("combat.start", "enemy %q not found", recordID)
	}
	if enemy.Level < actor.MinEnemyLevel || enemy.Level > actor.MaxEnemyLevel {
		return nil, turnerr.Validation("combat.start", "enemy %q: level %d out of range %d-%d",
			recordID, enemy.Level, actor.MinEnemyLevel, actor.MaxEnemyLevel)
	}
	required := actor.SuccessesForLevel(enemy.Level)
	return &State{
		CombatID:          uuid.NewString(),
		OwnerID:           ownerID,
		EnemyRecordID:     recordID,
		EnemyName:         enemy.Name,
		SuccessesRequired: required,
		IsActive:          true,
		StartedAt:         now,
	}, nil
}

// Resolved reports whether the encounter has ended.
func (s *State) Resolved() bool {
	return s.Outcome != OutcomeNone
}

// Advance records one exchange: the narrative is logged, successes are
// added, player conditions are list-mutated, and the encounter resolves as a
// victory once successes reach the snapshot threshold or as a defeat when d
// declares it. d may be nil.
func (s *State) Advance(narrative string, d *directive.CombatDirective, now time.Time) error {
	if s.Resolved() {
		return fmt.Errorf("combat %s: %w", s.CombatID, ErrCombatResolved)
	}
	if narrative != "" {
		s.TurnLog = append(s.TurnLog, narrative)
	}
	if d != nil {
		if d.Successes != nil {
			n := d.Successes.Int()
			if n < 0 {
				return turnerr.Validation("combat.successes", "successes cannot be negative (%d)", n)
			}
			s.SuccessesSoFar += n
		}
		s.PlayerConditions = mutation.ApplyEntries(s.PlayerConditions, d.Conditions)
	}

	switch {
	case d != nil && d.Defeated:
		s.resolve(OutcomeDefeat, now)
	case s.SuccessesSoFar >= s.SuccessesRequired:
		s.resolve(OutcomeVictory, now)
	}
	return nil
}

func (s *State) resolve(o Outcome, now time.Time) {
	s.Outcome = o
	s.IsActive = false
	s.EndedAt = now
}

// Remaining returns how many successes are still needed.
func (s *State) Remaining() int {
	return max(s.SuccessesRequired-s.SuccessesSoFar, 0)
}
