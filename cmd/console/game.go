package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/turn-engine/internal/services"
	"github.com/jwebster45206/turn-engine/internal/services/queue"
	"github.com/jwebster45206/turn-engine/internal/worker"
	"github.com/jwebster45206/turn-engine/pkg/actor"
	"github.com/jwebster45206/turn-engine/pkg/combat"
	pkgqueue "github.com/jwebster45206/turn-engine/pkg/queue"
	"github.com/jwebster45206/turn-engine/pkg/scenario"
	"github.com/jwebster45206/turn-engine/pkg/state"
	"github.com/jwebster45206/turn-engine/pkg/storage"
)

const defaultOpeningPrompt = "Begin the story. Describe where the player is and what they see."

// Game is one in-process play session: an in-memory store and a scheduler
// running the same turn pipeline as the worker.
type Game struct {
	OwnerID  string
	Scenario *scenario.Scenario

	store     storage.Store
	scheduler *worker.Scheduler
	cancel    context.CancelFunc
	done      chan struct{}
}

// Status is what the side panel shows between turns.
type Status struct {
	Player   *actor.Player
	World    *state.World
	Combat   *combat.State
	Messages int
}

// StartGame seeds a fresh owner for scn and starts its scheduler.
func StartGame(scn *scenario.Scenario, backend services.Backend, timeout time.Duration, log *slog.Logger) (*Game, error) {
	store := storage.NewMemoryStore()
	ownerID := uuid.New().String()
	if err := scn.Seed(context.Background(), store, ownerID); err != nil {
		return nil, err
	}

	processor := worker.NewTurnProcessor(store, backend, scn, queue.NewMemoryEventQueue(), log).
		WithBackendTimeout(timeout)
	scheduler := worker.NewScheduler(processor, log)

	ctx, cancel := context.WithCancel(context.Background())
	g := &Game{
		OwnerID:   ownerID,
		Scenario:  scn,
		store:     store,
		scheduler: scheduler,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	go func() {
		defer close(g.done)
		if err := scheduler.Run(ctx); err != nil {
			log.Error("Scheduler exited", "error", err)
		}
	}()
	return g, nil
}

// Open asks the narrator for the scenario's opening scene.
func (g *Game) Open(ctx context.Context) (pkgqueue.TurnResult, error) {
	prompt := g.Scenario.Opening.Prompt
	if prompt == "" {
		prompt = defaultOpeningPrompt
	}
	return g.submit(ctx, prompt, pkgqueue.TurnKindStoryEvent)
}

// Send submits a player message. While an encounter is active it is sent as
// a combat turn.
func (g *Game) Send(ctx context.Context, input string) (pkgqueue.TurnResult, error) {
	kind := pkgqueue.TurnKindChat
	st, err := g.Status(ctx)
	if err == nil && st.Combat != nil {
		kind = pkgqueue.TurnKindCombat
	}
	return g.submit(ctx, input, kind)
}

func (g *Game) submit(ctx context.Context, input string, kind pkgqueue.TurnKind) (pkgqueue.TurnResult, error) {
	res, err := g.scheduler.Submit(ctx, pkgqueue.NewTurnRequest(g.OwnerID, input, kind))
	if err != nil {
		return res, err
	}
	if !res.Success {
		return res, errors.New(res.ErrorMessage)
	}
	return res, nil
}

// Status reads the owner's current records.
func (g *Game) Status(ctx context.Context) (*Status, error) {
	sess := state.NewSession(g.store, g.OwnerID)
	player, err := state.Load[actor.Player](ctx, sess, state.PlayerID)
	if err != nil {
		return nil, err
	}
	world, err := state.Load[state.World](ctx, sess, state.WorldID)
	if err != nil {
		return nil, err
	}
	active, err := state.Load[combat.State](ctx, sess, state.CombatActiveID)
	if err != nil {
		return nil, err
	}
	history, err := state.Load[state.History](ctx, sess, state.HistoryID)
	if err != nil {
		return nil, err
	}

	st := &Status{Player: player, World: world, Combat: active}
	if history != nil {
		st.Messages = len(history.Messages)
	}
	return st, nil
}

// Stop ends the scheduler and waits for it.
func (g *Game) Stop() {
	g.cancel()
	<-g.done
}
