package observability

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/iterkit/pipeline"
)

// SpanPrefix is prepended to the stage name to form span names.
const SpanPrefix = "iterkit."

// Tracer returns a named tracer from the global provider.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}

// Traced opens one span per consumption of p. The span starts when the
// iterator is created and ends on exhaustion, on the first failed pull or
// on Close, whichever comes first. The context passed to upstream stages
// carries the span, so user callbacks can add child spans.
// A nil tracer returns p unchanged.
func Traced[T any](p *pipeline.Pipeline[T], tracer trace.Tracer, stage string) *pipeline.Pipeline[T] {
	if tracer == nil {
		return p
	}
	return pipeline.FromFunc(func(ctx context.Context) pipeline.Iterator[T] {
		spanCtx, span := tracer.Start(ctx, SpanPrefix+stage, trace.WithAttributes(
			attribute.String(AttrStage, stage),
			attribute.String(AttrRunID, uuid.NewString()),
		))
		return &tracedIter[T]{source: p.Iter(spanCtx), ctx: spanCtx, span: span}
	})
}

type tracedIter[T any] struct {
	source pipeline.Iterator[T]
	ctx    context.Context
	span   trace.Span
	count  int
	ended  bool
}

func (it *tracedIter[T]) Next(_ context.Context) (T, bool, error) {
	val, ok, err := it.source.Next(it.ctx)
	switch {
	case err != nil:
		if !it.ended {
			it.span.RecordError(err)
			it.span.SetStatus(codes.Error, err.Error())
			it.end(OutcomeError)
		}
	case !ok:
		it.end(OutcomeExhausted)
	default:
		it.count++
	}
	return val, ok, err
}

func (it *tracedIter[T]) Close() error {
	it.end(OutcomeClosed)
	return it.source.Close()
}

func (it *tracedIter[T]) end(outcome string) {
	if it.ended {
		return
	}
	it.ended = true
	it.span.SetAttributes(
		attribute.Int(AttrCount, it.count),
		attribute.String(AttrOutcome, outcome),
	)
	it.span.End()
}

// SetSpanError records err on the span in ctx, if one is recording.
func SetSpanError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.RecordError(err)
	}
}
