package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/kbukum/iterkit/pipeline"
)

// Instrument names.
const (
	MetricPulls     = "iterkit.pulls"
	MetricErrors    = "iterkit.errors"
	MetricExhausted = "iterkit.exhausted"
	MetricDuration  = "iterkit.consumption.duration"
)

// Attribute keys.
const (
	AttrServiceName = "service.name"
	AttrEnvironment = "environment"
	AttrStage       = "stage"
	AttrRunID       = "run_id"
	AttrCount       = "count"
	AttrOutcome     = "outcome"
)

// Consumption outcomes.
const (
	OutcomeExhausted = "exhausted"
	OutcomeError     = "error"
	OutcomeClosed    = "closed"
)

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the pull counters recorded by Instrument.
type Metrics struct {
	pulls     metric.Int64Counter
	errors    metric.Int64Counter
	exhausted metric.Int64Counter
	duration  metric.Float64Histogram
}

// NewMetrics creates the instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	pulls, err := meter.Int64Counter(MetricPulls,
		metric.WithDescription("Values pulled through an instrumented stage"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricPulls, err)
	}

	errs, err := meter.Int64Counter(MetricErrors,
		metric.WithDescription("Failed pulls through an instrumented stage"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricErrors, err)
	}

	exhausted, err := meter.Int64Counter(MetricExhausted,
		metric.WithDescription("Consumptions that ran to exhaustion"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricExhausted, err)
	}

	duration, err := meter.Float64Histogram(MetricDuration,
		metric.WithDescription("Time from first pull to exhaustion, failure or close"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricDuration, err)
	}

	return &Metrics{pulls: pulls, errors: errs, exhausted: exhausted, duration: duration}, nil
}

// RecordPull counts one value produced by stage.
func (m *Metrics) RecordPull(ctx context.Context, stage string) {
	m.pulls.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrStage, stage)))
}

// RecordError counts one failed pull in stage.
func (m *Metrics) RecordError(ctx context.Context, stage string) {
	m.errors.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrStage, stage)))
}

// RecordExhausted counts one consumption of stage that reached exhaustion.
func (m *Metrics) RecordExhausted(ctx context.Context, stage string) {
	m.exhausted.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrStage, stage)))
}

// RecordDuration records how long one consumption of stage lasted.
func (m *Metrics) RecordDuration(ctx context.Context, stage, outcome string, d time.Duration) {
	m.duration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String(AttrStage, stage),
		attribute.String(AttrOutcome, outcome),
	))
}

// GuardOption returns a guard option that records the exhaustion of a
// guarded iterator: as an error when a pull failed, as exhausted otherwise.
func (m *Metrics) GuardOption(ctx context.Context, stage string) pipeline.GuardOption {
	return pipeline.WithOnExhausted(func(err error) {
		if err != nil {
			m.RecordError(ctx, stage)
			return
		}
		m.RecordExhausted(ctx, stage)
	})
}

// Instrument passes values through and records pulls, failures,
// exhaustion and consumption time on m under the given stage name.
// A nil m returns p unchanged.
func Instrument[T any](p *pipeline.Pipeline[T], m *Metrics, stage string) *pipeline.Pipeline[T] {
	if m == nil {
		return p
	}
	return pipeline.FromFunc(func(ctx context.Context) pipeline.Iterator[T] {
		return &instrumentedIter[T]{source: p.Iter(ctx), metrics: m, stage: stage}
	})
}

type instrumentedIter[T any] struct {
	source  pipeline.Iterator[T]
	metrics *Metrics
	stage   string
	ctx     context.Context
	start   time.Time
	ended   bool
}

func (it *instrumentedIter[T]) Next(ctx context.Context) (T, bool, error) {
	if it.start.IsZero() {
		it.ctx = ctx
		it.start = time.Now()
	}
	val, ok, err := it.source.Next(ctx)
	switch {
	case err != nil:
		it.metrics.RecordError(ctx, it.stage)
		it.finish(ctx, OutcomeError)
	case !ok:
		if !it.ended {
			it.metrics.RecordExhausted(ctx, it.stage)
		}
		it.finish(ctx, OutcomeExhausted)
	default:
		it.metrics.RecordPull(ctx, it.stage)
	}
	return val, ok, err
}

func (it *instrumentedIter[T]) Close() error {
	if !it.start.IsZero() {
		it.finish(it.ctx, OutcomeClosed)
	}
	return it.source.Close()
}

// finish records the consumption time once, under the first outcome.
func (it *instrumentedIter[T]) finish(ctx context.Context, outcome string) {
	if it.ended {
		return
	}
	it.ended = true
	it.metrics.RecordDuration(ctx, it.stage, outcome, time.Since(it.start))
}
