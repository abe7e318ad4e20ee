package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jwebster45206/turn-engine/internal/logger"
	"github.com/jwebster45206/turn-engine/internal/observe"
	"github.com/jwebster45206/turn-engine/internal/services"
	"github.com/jwebster45206/turn-engine/pkg/actor"
	"github.com/jwebster45206/turn-engine/pkg/chat"
	"github.com/jwebster45206/turn-engine/pkg/combat"
	"github.com/jwebster45206/turn-engine/pkg/directive"
	"github.com/jwebster45206/turn-engine/pkg/mutation"
	"github.com/jwebster45206/turn-engine/pkg/prompts"
	"github.com/jwebster45206/turn-engine/pkg/queue"
	"github.com/jwebster45206/turn-engine/pkg/scenario"
	"github.com/jwebster45206/turn-engine/pkg/state"
	"github.com/jwebster45206/turn-engine/pkg/storage"
	"github.com/jwebster45206/turn-engine/pkg/textfilter"
	"github.com/jwebster45206/turn-engine/pkg/trigger"
	"github.com/jwebster45206/turn-engine/pkg/turnerr"
)

// PromptHistoryLimit is the number of stored messages sent with each turn.
const PromptHistoryLimit = 12

// TurnProcessor runs the full pipeline for one turn: prompt, generation,
// extraction, directives, combat, triggers, and a single commit.
type TurnProcessor struct {
	store    storage.Store
	backend  services.Backend
	scenario *scenario.Scenario
	events   EventQueue

	engine  *mutation.Engine
	combat  *combat.Machine
	pub     Publisher
	metrics *observe.Metrics
	logger  *slog.Logger

	historyLimit   int
	backendTimeout time.Duration
}

// NewTurnProcessor wires a processor. New owners are seeded from scn on
// their first turn. events may be nil, in which case fired prompts are
// dropped after being reported in the result.
func NewTurnProcessor(store storage.Store, backend services.Backend, scn *scenario.Scenario, events EventQueue, logger *slog.Logger) *TurnProcessor {
	p := &TurnProcessor{
		store:        store,
		backend:      backend,
		scenario:     scn,
		events:       events,
		engine:       mutation.NewEngine(store, logger),
		pub:          nopPublisher{},
		metrics:      observe.Noop(),
		logger:       logger,
		historyLimit: PromptHistoryLimit,
	}
	p.combat = combat.NewMachine(&backendSummarizer{p: p}, logger)
	return p
}

func (p *TurnProcessor) WithPublisher(pub Publisher) *TurnProcessor {
	if pub != nil {
		p.pub = pub
	}
	return p
}

func (p *TurnProcessor) WithMetrics(m *observe.Metrics) *TurnProcessor {
	if m != nil {
		p.metrics = m
	}
	return p
}

// WithBackendTimeout bounds each generation call.
func (p *TurnProcessor) WithBackendTimeout(d time.Duration) *TurnProcessor {
	p.backendTimeout = d
	return p
}

func (p *TurnProcessor) WithHistoryLimit(n int) *TurnProcessor {
	p.historyLimit = n
	return p
}

// WithClock replaces the time source used for combat timestamps.
func (p *TurnProcessor) WithClock(now func() time.Time) *TurnProcessor {
	p.combat.WithClock(now)
	return p
}

// Process runs one turn. Any error leaves the owner's records untouched.
func (p *TurnProcessor) Process(ctx context.Context, req queue.TurnRequest) (queue.TurnResult, error) {
	if err := req.Validate(); err != nil {
		return queue.TurnResult{}, turnerr.Validation("request", "%v", err)
	}
	log := logger.WithTurn(p.logger, req.RequestID, req.OwnerID)

	seeded, err := p.scenario.SeedIfNew(ctx, p.store, req.OwnerID)
	if err != nil {
		return queue.TurnResult{}, err
	}
	if seeded {
		log.Info("Seeded new owner", "scenario", p.scenario.Name)
	}

	sess := state.NewSession(p.store, req.OwnerID)
	snap, err := prompts.LoadSnapshot(ctx, sess)
	if err != nil {
		return queue.TurnResult{}, fmt.Errorf("failed to load snapshot: %w", err)
	}

	queued := p.drainEvents(ctx, log, req.OwnerID)
	committed := false
	defer func() {
		if !committed {
			p.restoreEvents(ctx, log, req.OwnerID, queued)
		}
	}()

	userMsg := p.userMessage(req, snap.Player)
	messages, err := prompts.New().
		WithSnapshot(snap).
		WithScenario(p.scenario).
		WithUserMessage(userMsg, chat.ChatRoleUser).
		WithStoryEvents(queued).
		WithHistoryLimit(p.historyLimit).
		Build()
	if err != nil {
		return queue.TurnResult{}, fmt.Errorf("failed to build prompt: %w", err)
	}

	log.Debug("Sending turn to backend", "backend", p.backend.Name(), "messages", len(messages))
	raw, err := p.complete(ctx, messages, services.KindNarrate)
	if err != nil {
		return queue.TurnResult{}, err
	}

	narrative, segment, ok, err := textfilter.Extract(raw)
	if err != nil {
		return queue.TurnResult{}, err
	}
	narrative = textfilter.CleanNarrative(narrative)

	payload := &directive.Payload{}
	if ok {
		if payload, err = directive.DecodePayload(segment); err != nil {
			return queue.TurnResult{}, err
		}
	}

	applied, err := p.engine.ApplyTo(ctx, sess, payload.Creations, payload.Updates)
	if err != nil {
		return queue.TurnResult{}, err
	}

	report, err := p.combat.Step(ctx, sess, narrative, payload.Combat)
	if err != nil {
		return queue.TurnResult{}, fmt.Errorf("combat: %w", err)
	}

	fired, err := p.fireEvents(ctx, sess, applied.Transition)
	if err != nil {
		return queue.TurnResult{}, fmt.Errorf("triggers: %w", err)
	}

	if err := p.appendHistory(ctx, sess, userMsg, narrative); err != nil {
		return queue.TurnResult{}, err
	}

	if err := sess.Commit(ctx); err != nil {
		return queue.TurnResult{}, err
	}
	committed = true

	firedIDs := make([]string, 0, len(fired))
	for _, ev := range fired {
		firedIDs = append(firedIDs, ev.ID)
		if p.events == nil {
			continue
		}
		if err := p.events.Enqueue(ctx, req.OwnerID, ev.Prompt); err != nil {
			log.Error("Failed to queue fired event", "event_id", ev.ID, "error", err)
		}
	}
	p.metrics.RecordEventsFired(ctx, len(fired))
	if st := report.State; st != nil && st.Resolved() {
		p.metrics.RecordCombatResolved(ctx, string(st.Outcome))
	}

	p.publishState(ctx, log, sess)

	log.Info("Turn applied",
		"created", len(applied.Created),
		"updated", len(applied.Updated),
		"combat_pending", report.Pending,
		"fired_events", firedIDs)

	return queue.TurnResult{
		RequestID:       req.RequestID,
		OwnerID:         req.OwnerID,
		NarrativeText:   narrative,
		Success:         true,
		CombatInitiated: report.Initiated,
		CombatPending:   report.Pending,
		FiredEvents:     firedIDs,
		CompletedAt:     time.Now(),
	}, nil
}

// userMessage is the message recorded for this turn. Story-event turns are
// sent as user messages too, since some backends reject system messages
// inside the conversation.
func (p *TurnProcessor) userMessage(req queue.TurnRequest, player *actor.Player) string {
	if req.TurnKind == queue.TurnKindStoryEvent {
		return prompts.FormatStoryEvents([]string{req.RawInput})
	}
	msg := strings.TrimSpace(req.RawInput)
	if player != nil && player.Name != "" {
		msg = chat.FormatWithPCName(msg, player.Name)
	}
	return msg
}

func (p *TurnProcessor) complete(ctx context.Context, messages []chat.ChatMessage, kind services.Kind) (string, error) {
	if p.backendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.backendTimeout)
		defer cancel()
	}

	start := time.Now()
	text, err := p.backend.Complete(ctx, messages, kind)
	p.metrics.RecordBackend(ctx, p.backend.Name(), string(kind), time.Since(start), err)
	if err != nil {
		var be *turnerr.BackendError
		if !errors.As(err, &be) {
			err = &turnerr.BackendError{Provider: p.backend.Name(), Err: err}
		}
		return "", err
	}
	return text, nil
}

func (p *TurnProcessor) drainEvents(ctx context.Context, log *slog.Logger, ownerID string) []string {
	if p.events == nil {
		return nil
	}
	queued, err := p.events.Drain(ctx, ownerID)
	if err != nil {
		log.Warn("Failed to drain story events, continuing without them", "error", err)
		return nil
	}
	if len(queued) > 0 {
		log.Debug("Story events will be injected", "count", len(queued))
	}
	return queued
}

// restoreEvents puts drained prompts back after a failed turn. The worker
// is the only writer for an owner's queue, so order is preserved.
func (p *TurnProcessor) restoreEvents(ctx context.Context, log *slog.Logger, ownerID string, queued []string) {
	for _, prompt := range queued {
		if err := p.events.Enqueue(context.WithoutCancel(ctx), ownerID, prompt); err != nil {
			log.Error("Failed to restore story event", "error", err)
		}
	}
}

// fireEvents evaluates the owner's declared events against the state this
// turn produced. Fired Time events are deactivated in the staged set.
func (p *TurnProcessor) fireEvents(ctx context.Context, sess *state.Session, move *mutation.Transition) ([]*trigger.GameEvent, error) {
	set, err := state.Load[trigger.Set](ctx, sess, state.EventsID)
	if err != nil || set == nil {
		return nil, err
	}
	world, err := state.Load[state.World](ctx, sess, state.WorldID)
	if err != nil {
		return nil, err
	}
	player, err := state.Load[actor.Player](ctx, sess, state.PlayerID)
	if err != nil {
		return nil, err
	}

	tc := trigger.Context{}
	if world != nil {
		tc.CurrentTime = world.Clock
	}
	if player != nil {
		tc.CurrentLocationID = player.Location
	}
	if move != nil {
		tc.PreviousLocationID = move.Previous
		tc.CurrentLocationID = move.Current
	}

	fired := trigger.Evaluate(set.Events, tc)
	if len(fired) == 0 {
		return nil, nil
	}
	trigger.Settle(fired)
	state.Put(sess, state.EventsID, set)
	return fired, nil
}

func (p *TurnProcessor) appendHistory(ctx context.Context, sess *state.Session, userMsg, narrative string) error {
	h, err := state.Load[state.History](ctx, sess, state.HistoryID)
	if err != nil {
		return err
	}
	if h == nil {
		h = &state.History{}
	}
	if userMsg != "" {
		h.Append(chat.ChatMessage{Role: chat.ChatRoleUser, Content: userMsg})
	}
	if narrative != "" {
		h.Append(chat.ChatMessage{Role: chat.ChatRoleAgent, Content: narrative})
	}
	state.Put(sess, state.HistoryID, h)
	return nil
}

func (p *TurnProcessor) publishState(ctx context.Context, log *slog.Logger, sess *state.Session) {
	player, _ := state.Load[actor.Player](ctx, sess, state.PlayerID)
	world, _ := state.Load[state.World](ctx, sess, state.WorldID)

	var location string
	var clock time.Time
	if player != nil {
		location = player.Location
	}
	if world != nil {
		clock = world.Clock
	}
	if err := p.pub.PublishGameStateUpdated(ctx, sess.OwnerID(), location, clock); err != nil {
		log.Warn("Failed to publish state update", "error", err)
	}
}

// backendSummarizer recaps resolved encounters with the generation backend.
type backendSummarizer struct {
	p *TurnProcessor
}

func (s *backendSummarizer) Summarize(ctx context.Context, st *combat.State) (string, error) {
	text, err := s.p.complete(ctx, prompts.CombatSummaryMessages(st), services.KindCombatSummary)
	if err != nil {
		return "", err
	}
	if narrative, _, _, err := textfilter.Extract(text); err == nil {
		text = narrative
	}
	return textfilter.CleanNarrative(text), nil
}
