package combat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jwebster45206/turn-engine/pkg/actor"
	"github.com/jwebster45206/turn-engine/pkg/directive"
	"github.com/jwebster45206/turn-engine/pkg/state"
	"github.com/jwebster45206/turn-engine/pkg/turnerr"
)

// Summarizer condenses a resolved encounter's turn log into a short recap.
type Summarizer interface {
	Summarize(ctx context.Context, s *State) (string, error)
}

// Report is what one turn did to combat.
type Report struct {
	Initiated bool   // combat went from inactive to active this turn
	Pending   bool   // combat is active after this turn
	State     *State // the encounter touched this turn, if any
}

// Machine drives the encounter stored at state.CombatActiveID.
type Machine struct {
	summarizer Summarizer
	logger     *slog.Logger
	now        func() time.Time
}

// NewMachine creates a machine. summarizer may be nil, in which case
// resolved encounters are archived with a plain recap.
func NewMachine(summarizer Summarizer, logger *slog.Logger) *Machine {
	return &Machine{
		summarizer: summarizer,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock replaces the time source.
func (m *Machine) WithClock(now func() time.Time) *Machine {
	m.now = now
	return m
}

// Active returns the owner's active encounter, or nil.
func (m *Machine) Active(ctx context.Context, sess *state.Session) (*State, error) {
	return state.Load[State](ctx, sess, state.CombatActiveID)
}

// Step applies one turn's combat directive and narrative. A start request
// while an encounter is active is ignored. Every narrative produced while an
// encounter is active is logged to it, even when d is nil.
func (m *Machine) Step(ctx context.Context, sess *state.Session, narrative string, d *directive.CombatDirective) (*Report, error) {
	cur, err := m.Active(ctx, sess)
	if err != nil {
		return nil, err
	}

	rep := &Report{}
	if cur == nil {
		if d.IsEmpty() || d.Start == "" {
			return rep, nil
		}
		cur, err = m.begin(ctx, sess, d.Start)
		if err != nil {
			return nil, err
		}
		rep.Initiated = true
	} else if d != nil && d.Start != "" && d.Start != state.EntityKey(cur.EnemyRecordID) {
		m.logger.Warn("combat start ignored, encounter already active",
			"owner_id", sess.OwnerID(), "combat_id", cur.CombatID, "requested", d.Start)
	}

	if err := cur.Advance(narrative, d, m.now()); err != nil {
		return nil, err
	}
	rep.State = cur

	if !cur.Resolved() {
		rep.Pending = true
		state.Put(sess, state.CombatActiveID, cur)
		return rep, nil
	}

	m.archive(ctx, sess, cur)
	return rep, nil
}

func (m *Machine) begin(ctx context.Context, sess *state.Session, enemyID string) (*State, error) {
	recID := state.EnemyID(state.EntityKey(enemyID))
	enemy, err := state.Load[actor.EnemyStatBlock](ctx, sess, recID)
	if err != nil {
		return nil, err
	}
	if enemy == nil {
		return nil, turnerr.Validation("combat.start", "unknown enemy %q", enemyID)
	}
	st, err := Start(sess.OwnerID(), recID, enemy, m.now())
	if err != nil {
		return nil, err
	}
	m.logger.Info("combat started",
		"owner_id", sess.OwnerID(),
		"combat_id", st.CombatID,
		"enemy", enemy.ID,
		"successes_required", st.SuccessesRequired)
	return st, nil
}

// archive summarizes a resolved encounter, stores it under its archive id,
// and clears the active slot. A failing summarizer does not fail the turn.
func (m *Machine) archive(ctx context.Context, sess *state.Session, st *State) {
	summary := ""
	if m.summarizer != nil {
		s, err := m.summarizer.Summarize(ctx, st)
		if err != nil {
			m.logger.Warn("combat summary failed, using plain recap",
				"owner_id", sess.OwnerID(), "combat_id", st.CombatID, "error", err)
		} else {
			summary = strings.TrimSpace(s)
		}
	}
	if summary == "" {
		summary = PlainRecap(st)
	}
	st.Summary = summary

	state.Put(sess, state.CombatArchiveID(st.CombatID), st)
	sess.Clear(state.CombatActiveID)

	m.logger.Info("combat resolved",
		"owner_id", sess.OwnerID(),
		"combat_id", st.CombatID,
		"outcome", st.Outcome,
		"exchanges", len(st.TurnLog))
}

// PlainRecap describes a resolved encounter without a backend.
func PlainRecap(st *State) string {
	switch st.Outcome {
	case OutcomeVictory:
		return fmt.Sprintf("The player defeated %s after %d exchanges.", st.EnemyName, len(st.TurnLog))
	case OutcomeDefeat:
		return fmt.Sprintf("The player was defeated by %s after %d exchanges.", st.EnemyName, len(st.TurnLog))
	default:
		return fmt.Sprintf("The fight with %s is ongoing.", st.EnemyName)
	}
}
