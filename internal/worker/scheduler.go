package worker

import (
	"container/list"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/jwebster45206/turn-engine/internal/observe"
	"github.com/jwebster45206/turn-engine/pkg/queue"
	"github.com/jwebster45206/turn-engine/pkg/turnerr"
)

var (
	// ErrCanceled resolves a job that was removed before the worker took it.
	ErrCanceled = errors.New("turn request canceled")

	// ErrSchedulerStopped resolves jobs still queued at shutdown and rejects
	// new ones.
	ErrSchedulerStopped = errors.New("turn scheduler stopped")

	errAlreadyRunning = errors.New("turn scheduler already running")
)

// Processor runs one turn. A returned error, or a panic, is reported as a
// failed TurnResult; it never stops the scheduler.
type Processor interface {
	Process(ctx context.Context, req queue.TurnRequest) (queue.TurnResult, error)
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx context.Context, req queue.TurnRequest) (queue.TurnResult, error)

func (f ProcessorFunc) Process(ctx context.Context, req queue.TurnRequest) (queue.TurnResult, error) {
	return f(ctx, req)
}

type job struct {
	req  queue.TurnRequest
	elem *list.Element // nil once dequeued or resolved
	done chan struct{}
	res  queue.TurnResult
	err  error
}

// Pending is a submitted turn that has not necessarily finished.
type Pending struct {
	s *Scheduler
	j *job
}

// Done is closed once the result is available.
func (p *Pending) Done() <-chan struct{} { return p.j.done }

// Result blocks until the turn resolves. The error is ErrCanceled or
// ErrSchedulerStopped for turns that never ran; failed turns return a
// result with Success false and a nil error.
func (p *Pending) Result() (queue.TurnResult, error) {
	<-p.j.done
	return p.j.res, p.j.err
}

// Cancel removes the job if the worker has not taken it yet and reports
// whether it did. An in-flight job runs to completion.
func (p *Pending) Cancel() bool {
	return p.s.remove(p.j, ErrCanceled)
}

// Scheduler runs turns one at a time in submission order, across all owners.
// Enqueue never blocks; exactly one Run loop drains the queue.
type Scheduler struct {
	processor Processor
	publisher Publisher
	metrics   *observe.Metrics
	logger    *slog.Logger

	mu      sync.Mutex
	jobs    *list.List
	wake    chan struct{}
	running bool
	stopped bool
}

// NewScheduler creates a scheduler for processor. Call Run to start it.
func NewScheduler(processor Processor, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		processor: processor,
		publisher: nopPublisher{},
		metrics:   observe.Noop(),
		logger:    logger,
		jobs:      list.New(),
		wake:      make(chan struct{}, 1),
	}
}

// WithPublisher sends lifecycle events for every job to p.
func (s *Scheduler) WithPublisher(p Publisher) *Scheduler {
	if p != nil {
		s.publisher = p
	}
	return s
}

// WithMetrics records queue depth and turn outcomes to m.
func (s *Scheduler) WithMetrics(m *observe.Metrics) *Scheduler {
	if m != nil {
		s.metrics = m
	}
	return s
}

// Len returns the number of queued jobs, excluding the one in flight.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs.Len()
}

// Enqueue appends req to the queue.
func (s *Scheduler) Enqueue(req queue.TurnRequest) (*Pending, error) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil, ErrSchedulerStopped
	}
	j := &job{req: req, done: make(chan struct{})}
	j.elem = s.jobs.PushBack(j)
	s.mu.Unlock()

	s.metrics.QueueDepth.Add(context.Background(), 1)
	select {
	case s.wake <- struct{}{}:
	default:
	}

	if err := s.publisher.PublishRequestQueued(context.Background(), req); err != nil {
		s.logger.Warn("Failed to publish queued event", "request_id", req.RequestID, "error", err)
	}
	return &Pending{s: s, j: j}, nil
}

// Submit enqueues req and waits for its result. If ctx ends while the job
// is still queued the job is canceled; once the worker has taken it, Submit
// waits for the result regardless of ctx.
func (s *Scheduler) Submit(ctx context.Context, req queue.TurnRequest) (queue.TurnResult, error) {
	p, err := s.Enqueue(req)
	if err != nil {
		return queue.TurnResult{}, err
	}
	select {
	case <-p.Done():
	case <-ctx.Done():
		if p.Cancel() {
			return queue.TurnResult{}, fmt.Errorf("%w: %w", ErrCanceled, ctx.Err())
		}
	}
	return p.Result()
}

// Run processes jobs until ctx ends, then resolves every job still queued
// with ErrSchedulerStopped. The in-flight job is never interrupted. Only one
// Run may be active.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	switch {
	case s.stopped:
		s.mu.Unlock()
		return ErrSchedulerStopped
	case s.running:
		s.mu.Unlock()
		return errAlreadyRunning
	}
	s.running = true
	s.mu.Unlock()

	s.logger.Info("Turn scheduler started")
	defer s.shutdown()

	for {
		j := s.next()
		if j == nil {
			select {
			case <-ctx.Done():
				return nil
			case <-s.wake:
				continue
			}
		}
		if ctx.Err() != nil {
			s.requeueFront(j)
			return nil
		}
		s.execute(context.WithoutCancel(ctx), j)
	}
}

func (s *Scheduler) next() *job {
	s.mu.Lock()
	defer s.mu.Unlock()
	front := s.jobs.Front()
	if front == nil {
		return nil
	}
	j := s.jobs.Remove(front).(*job)
	j.elem = nil
	return j
}

func (s *Scheduler) requeueFront(j *job) {
	s.mu.Lock()
	j.elem = s.jobs.PushFront(j)
	s.mu.Unlock()
}

// remove resolves a still-queued job with err. It reports false when the job
// was already dequeued or resolved.
func (s *Scheduler) remove(j *job, err error) bool {
	s.mu.Lock()
	if j.elem == nil {
		s.mu.Unlock()
		return false
	}
	s.jobs.Remove(j.elem)
	j.elem = nil
	s.mu.Unlock()

	s.metrics.QueueDepth.Add(context.Background(), -1)
	j.err = err
	close(j.done)
	return true
}

func (s *Scheduler) shutdown() {
	s.mu.Lock()
	s.stopped = true
	s.running = false
	var pending []*job
	for e := s.jobs.Front(); e != nil; e = e.Next() {
		pending = append(pending, e.Value.(*job))
	}
	s.mu.Unlock()

	for _, j := range pending {
		s.remove(j, ErrSchedulerStopped)
	}
	s.logger.Info("Turn scheduler stopped", "abandoned", len(pending))
}

func (s *Scheduler) execute(ctx context.Context, j *job) {
	s.metrics.QueueDepth.Add(ctx, -1)
	log := s.logger.With("request_id", j.req.RequestID, "owner_id", j.req.OwnerID)

	if err := s.publisher.PublishRequestProcessing(ctx, j.req); err != nil {
		log.Warn("Failed to publish processing event", "error", err)
	}

	start := time.Now()
	res, err := s.safeProcess(ctx, j.req)
	if err != nil {
		res = queue.Failed(j.req, turnerr.Kind(err), err)
	}
	if res.RequestID == "" {
		res.RequestID = j.req.RequestID
		res.OwnerID = j.req.OwnerID
	}
	if res.CompletedAt.IsZero() {
		res.CompletedAt = time.Now()
	}
	elapsed := time.Since(start)

	s.metrics.RecordTurn(ctx, string(j.req.TurnKind), elapsed, res.ErrorKind)
	if res.Success {
		log.Info("Turn completed", "kind", j.req.TurnKind, "duration_ms", elapsed.Milliseconds())
	} else {
		log.Warn("Turn failed", "kind", j.req.TurnKind, "error_kind", res.ErrorKind, "error", res.ErrorMessage)
	}

	if err := s.publisher.PublishResult(ctx, res); err != nil {
		log.Warn("Failed to publish result", "error", err)
	}

	j.res = res
	close(j.done)
}

func (s *Scheduler) safeProcess(ctx context.Context, req queue.TurnRequest) (res queue.TurnResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Turn processor panicked",
				"request_id", req.RequestID,
				"panic", r,
				"stack", string(debug.Stack()))
			err = fmt.Errorf("turn processor panic: %v", r)
		}
	}()
	return s.processor.Process(ctx, req)
}
