// Package observe holds the OpenTelemetry instruments for the turn worker.
//
// Instruments are created from a [metric.MeterProvider] passed to
// [NewMetrics]. Production wires the Prometheus bridge from [InitProvider];
// tests pass an SDK provider with a ManualReader, and [Noop] serves callers
// that do not collect metrics.
package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// meterName is the instrumentation scope name used for all worker metrics.
const meterName = "github.com/jwebster45206/turn-engine"

// Metrics holds the worker's instruments. All fields are safe for concurrent
// use.
type Metrics struct {
	// QueueDepth tracks jobs waiting in the scheduler, excluding the one in
	// flight.
	QueueDepth metric.Int64UpDownCounter

	// TurnDuration tracks processing time per turn. Attributes: kind, status.
	TurnDuration metric.Float64Histogram

	// Turns counts completed turns. Attributes: kind, status, error_kind.
	Turns metric.Int64Counter

	// BackendDuration tracks generation latency. Attributes: provider, kind.
	BackendDuration metric.Float64Histogram

	// BackendErrors counts failed generation calls. Attributes: provider, kind.
	BackendErrors metric.Int64Counter

	// EventsFired counts story events fired by the trigger evaluator.
	EventsFired metric.Int64Counter

	// CombatsResolved counts finished encounters. Attribute: outcome.
	CombatsResolved metric.Int64Counter
}

// turnBuckets covers turns dominated by a remote generation call.
var turnBuckets = []float64{
	0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120,
}

// NewMetrics creates every instrument from mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.QueueDepth, err = m.Int64UpDownCounter("turn_engine.scheduler.queue_depth",
		metric.WithDescription("Turn requests waiting for the worker."),
	); err != nil {
		return nil, err
	}
	if met.TurnDuration, err = m.Float64Histogram("turn_engine.turn.duration",
		metric.WithDescription("Time to process one turn, from dequeue to result."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(turnBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Turns, err = m.Int64Counter("turn_engine.turns",
		metric.WithDescription("Completed turns by kind and status."),
	); err != nil {
		return nil, err
	}
	if met.BackendDuration, err = m.Float64Histogram("turn_engine.backend.duration",
		metric.WithDescription("Latency of generation backend calls."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(turnBuckets...),
	); err != nil {
		return nil, err
	}
	if met.BackendErrors, err = m.Int64Counter("turn_engine.backend.errors",
		metric.WithDescription("Failed generation backend calls."),
	); err != nil {
		return nil, err
	}
	if met.EventsFired, err = m.Int64Counter("turn_engine.events.fired",
		metric.WithDescription("Story events fired by triggers."),
	); err != nil {
		return nil, err
	}
	if met.CombatsResolved, err = m.Int64Counter("turn_engine.combat.resolved",
		metric.WithDescription("Combat encounters resolved, by outcome."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// Noop returns instruments that record nothing.
func Noop() *Metrics {
	met, _ := NewMetrics(noop.NewMeterProvider())
	return met
}

// RecordTurn records one finished turn. errorKind is empty on success.
func (m *Metrics) RecordTurn(ctx context.Context, kind string, d time.Duration, errorKind string) {
	status := "ok"
	if errorKind != "" {
		status = "error"
	}
	m.TurnDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("status", status),
	))
	m.Turns.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("status", status),
		attribute.String("error_kind", errorKind),
	))
}

// RecordBackend records one generation call.
func (m *Metrics) RecordBackend(ctx context.Context, provider, kind string, d time.Duration, err error) {
	attrs := metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("kind", kind),
	)
	m.BackendDuration.Record(ctx, d.Seconds(), attrs)
	if err != nil {
		m.BackendErrors.Add(ctx, 1, attrs)
	}
}

// RecordEventsFired adds n fired story events.
func (m *Metrics) RecordEventsFired(ctx context.Context, n int) {
	if n > 0 {
		m.EventsFired.Add(ctx, int64(n))
	}
}

// RecordCombatResolved counts one finished encounter.
func (m *Metrics) RecordCombatResolved(ctx context.Context, outcome string) {
	m.CombatsResolved.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
