// Package mutation applies decoded directives to an owner's records.
//
// All directives of one call form a single batch: they are applied to a
// state.Session and committed together, so a failing directive leaves the
// store exactly as it was before the turn.
package mutation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jwebster45206/turn-engine/pkg/directive"
	"github.com/jwebster45206/turn-engine/pkg/state"
	"github.com/jwebster45206/turn-engine/pkg/storage"
)

// Transition records a player move made by this batch.
type Transition struct {
	Previous string
	Current  string
}

// Result describes what a batch changed.
type Result struct {
	Created    []string    // record ids of created entities
	Updated    []string    // record ids touched by update directives
	Transition *Transition // nil when the player did not move
}

// Engine applies directive batches.
type Engine struct {
	store  storage.Store
	logger *slog.Logger
	newID  func() string
}

// NewEngine creates an engine committing to store.
func NewEngine(store storage.Store, logger *slog.Logger) *Engine {
	return &Engine{
		store:  store,
		logger: logger,
		newID:  newEntityID,
	}
}

// WithIDSource replaces the generator used for entities created without an id.
func (e *Engine) WithIDSource(fn func() string) *Engine {
	e.newID = fn
	return e
}

// Apply applies creations then updates for ownerID and commits the batch.
// On any error nothing is written.
func (e *Engine) Apply(ctx context.Context, ownerID string, creations []directive.Creation, updates map[string]directive.Update) (*Result, error) {
	sess := state.NewSession(e.store, ownerID)
	res, err := e.ApplyTo(ctx, sess, creations, updates)
	if err != nil {
		sess.Discard()
		return nil, err
	}
	if err := sess.Commit(ctx); err != nil {
		return nil, err
	}
	return res, nil
}

// ApplyTo applies the batch to sess without committing, so callers can
// stage further changes in the same unit of work. On error sess holds
// partial changes and must be discarded.
func (e *Engine) ApplyTo(ctx context.Context, sess *state.Session, creations []directive.Creation, updates map[string]directive.Update) (*Result, error) {
	res := &Result{}
	b := &batch{engine: e, sess: sess, res: res}

	for i, c := range creations {
		id, err := b.create(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("create[%d] %s: %w", i, c.Kind(), err)
		}
		res.Created = append(res.Created, id)
	}

	for _, key := range directive.SortedKeys(updates) {
		u := updates[key]
		id, err := b.update(ctx, key, u)
		if err != nil {
			return nil, fmt.Errorf("update %q %s: %w", key, u.Kind(), err)
		}
		res.Updated = append(res.Updated, id)
	}

	e.logger.Debug("directives applied",
		"owner_id", sess.OwnerID(),
		"created", len(res.Created),
		"updated", len(res.Updated),
		"moved", res.Transition != nil)
	return res, nil
}

type batch struct {
	engine *Engine
	sess   *state.Session
	res    *Result
}
