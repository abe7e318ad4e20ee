package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/turn-engine/pkg/queue"
)

const (
	intakeTimeout = 5 * time.Second
	errorBackoff  = time.Second
)

// RequestSource yields externally submitted turns. queue.RequestQueue
// implements it over a Redis list.
type RequestSource interface {
	BlockingDequeueRequest(ctx context.Context, timeout time.Duration) (*queue.TurnRequest, error)
}

// Intake moves requests from a RequestSource into the scheduler. Results
// reach callers through the scheduler's Publisher.
type Intake struct {
	id        string
	source    RequestSource
	scheduler *Scheduler
	log       *slog.Logger
	timeout   time.Duration
}

// NewIntake creates an intake loop. An empty workerID gets a random one.
func NewIntake(source RequestSource, scheduler *Scheduler, log *slog.Logger, workerID string) *Intake {
	if workerID == "" {
		workerID = fmt.Sprintf("worker-%s", uuid.New().String()[:8])
	}
	return &Intake{
		id:        workerID,
		source:    source,
		scheduler: scheduler,
		log:       log,
		timeout:   intakeTimeout,
	}
}

// WithPollTimeout sets how long each blocking dequeue waits.
func (in *Intake) WithPollTimeout(d time.Duration) *Intake {
	in.timeout = d
	return in
}

// ID returns the worker id used in logs.
func (in *Intake) ID() string { return in.id }

// Run pulls requests until ctx ends or the scheduler stops.
func (in *Intake) Run(ctx context.Context) error {
	in.log.Info("Intake starting", "worker_id", in.id)

	for {
		if ctx.Err() != nil {
			in.log.Info("Intake shutting down", "worker_id", in.id)
			return nil
		}

		err := in.pullNext(ctx)
		switch {
		case err == nil:
		case errors.Is(err, ErrSchedulerStopped):
			in.log.Info("Scheduler stopped, intake exiting", "worker_id", in.id)
			return nil
		case ctx.Err() != nil:
			return nil
		default:
			in.log.Error("Error pulling request", "error", err, "worker_id", in.id)
			select {
			case <-ctx.Done():
			case <-time.After(errorBackoff):
			}
		}
	}
}

// pullNext waits for one request and hands it to the scheduler. A timeout
// with nothing queued is not an error.
func (in *Intake) pullNext(ctx context.Context) error {
	req, err := in.source.BlockingDequeueRequest(ctx, in.timeout)
	if err != nil {
		return err
	}
	if req == nil {
		return nil
	}

	in.log.Info("Received request from queue",
		"worker_id", in.id,
		"request_id", req.RequestID,
		"owner_id", req.OwnerID,
		"kind", req.TurnKind,
	)

	if _, err := in.scheduler.Enqueue(*req); err != nil {
		return fmt.Errorf("failed to schedule request %s: %w", req.RequestID, err)
	}
	return nil
}
