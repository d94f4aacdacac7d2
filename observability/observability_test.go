package observability

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/iterkit/config"
	"github.com/kbukum/iterkit/pipeline"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp, err := NewMeterProvider(ProviderConfig{Name: "test"}, reader)
	if err != nil {
		t.Fatalf("NewMeterProvider: %v", err)
	}
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	m, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

// counterValue sums the data points of an int64 counter with the given stage.
func counterValue(t *testing.T, reader *sdkmetric.ManualReader, name, stage string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			if md.Name != name {
				continue
			}
			sum, ok := md.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("%s is %T, want Sum[int64]", name, md.Data)
			}
			for _, dp := range sum.DataPoints {
				if v, ok := dp.Attributes.Value(attribute.Key(AttrStage)); ok && v.AsString() == stage {
					total += dp.Value
				}
			}
		}
	}
	return total
}

func TestNewMetrics_Noop(t *testing.T) {
	m, err := NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}
	ctx := context.Background()
	m.RecordPull(ctx, "s")
	m.RecordError(ctx, "s")
	m.RecordExhausted(ctx, "s")
	m.RecordDuration(ctx, "s", OutcomeExhausted, 0)
}

func TestInstrument_Counts(t *testing.T) {
	m, reader := newTestMetrics(t)
	p := Instrument(pipeline.Of(1, 2, 3), m, "source")
	ctx := context.Background()

	for run := 0; run < 2; run++ {
		got, err := pipeline.Collect(ctx, p)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 3 {
			t.Fatalf("values changed: %v", got)
		}
	}

	if v := counterValue(t, reader, MetricPulls, "source"); v != 6 {
		t.Errorf("pulls = %d, want 6", v)
	}
	if v := counterValue(t, reader, MetricExhausted, "source"); v != 2 {
		t.Errorf("exhausted = %d, want 2", v)
	}
	if v := counterValue(t, reader, MetricErrors, "source"); v != 0 {
		t.Errorf("errors = %d, want 0", v)
	}
}

func TestInstrument_Errors(t *testing.T) {
	m, reader := newTestMetrics(t)
	boom := errors.New("boom")
	p := Instrument(pipeline.Concat(pipeline.Of(1), pipeline.Fail[int](boom)), m, "mixed")

	if _, err := pipeline.Collect(context.Background(), p); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if v := counterValue(t, reader, MetricErrors, "mixed"); v != 1 {
		t.Errorf("errors = %d, want 1", v)
	}
	if v := counterValue(t, reader, MetricPulls, "mixed"); v != 1 {
		t.Errorf("pulls = %d, want 1", v)
	}
}

// durationOutcomes counts the histogram data points of stage per outcome.
func durationOutcomes(t *testing.T, reader *sdkmetric.ManualReader, stage string) map[string]uint64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	out := map[string]uint64{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			if md.Name != MetricDuration {
				continue
			}
			hist, ok := md.Data.(metricdata.Histogram[float64])
			if !ok {
				t.Fatalf("%s is %T, want Histogram[float64]", md.Name, md.Data)
			}
			for _, dp := range hist.DataPoints {
				if v, ok := dp.Attributes.Value(attribute.Key(AttrStage)); !ok || v.AsString() != stage {
					continue
				}
				outcome, _ := dp.Attributes.Value(attribute.Key(AttrOutcome))
				out[outcome.AsString()] += dp.Count
			}
		}
	}
	return out
}

func TestInstrument_DurationOutcome(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	if _, err := pipeline.Collect(ctx, Instrument(pipeline.Of(1, 2), m, "ok")); err != nil {
		t.Fatal(err)
	}
	failing := Instrument(pipeline.Concat(pipeline.Of(1), pipeline.Fail[int](errors.New("boom"))), m, "failing")
	if _, err := pipeline.Collect(ctx, failing); err == nil {
		t.Fatal("expected error")
	}
	it := Instrument(pipeline.Of(1, 2), m, "closed").Iter(ctx)
	if _, _, err := it.Next(ctx); err != nil {
		t.Fatal(err)
	}
	_ = it.Close()

	tests := []struct {
		stage, outcome string
	}{
		{"ok", OutcomeExhausted},
		{"failing", OutcomeError},
		{"closed", OutcomeClosed},
	}
	for _, tc := range tests {
		got := durationOutcomes(t, reader, tc.stage)
		if len(got) != 1 || got[tc.outcome] != 1 {
			t.Errorf("%s: outcomes = %v, want one %q", tc.stage, got, tc.outcome)
		}
	}
}

func TestInstrument_NilMetrics(t *testing.T) {
	p := pipeline.Of(1)
	if Instrument(p, nil, "x") != p {
		t.Error("nil metrics should return the input pipeline")
	}
}

func TestMetrics_GuardOption(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	g := pipeline.GuardPipeline(ctx, pipeline.Of(1), m.GuardOption(ctx, "guarded"))
	_, _ = pipeline.Collect(ctx, g.Pipeline())

	failing := pipeline.GuardPipeline(ctx, pipeline.Fail[int](errors.New("x")), m.GuardOption(ctx, "guarded"))
	_, _, _ = failing.Next(ctx)

	if v := counterValue(t, reader, MetricExhausted, "guarded"); v != 1 {
		t.Errorf("exhausted = %d, want 1", v)
	}
	if v := counterValue(t, reader, MetricErrors, "guarded"); v != 1 {
		t.Errorf("errors = %d, want 1", v)
	}
}

func newTestTracer(t *testing.T, ratio float64) (*sdktrace.TracerProvider, *tracetest.SpanRecorder) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp, err := NewTracerProvider(ProviderConfig{Name: "test", SampleRatio: ratio}, sdktrace.WithSpanProcessor(sr))
	if err != nil {
		t.Fatalf("NewTracerProvider: %v", err)
	}
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return tp, sr
}

func spanAttr(s sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range s.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTraced_SpanPerConsumption(t *testing.T) {
	tp, sr := newTestTracer(t, 1)
	p := Traced(pipeline.Of("a", "b"), tp.Tracer("test"), "letters")
	ctx := context.Background()

	for run := 0; run < 2; run++ {
		if _, err := pipeline.Collect(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	spans := sr.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	runIDs := map[string]bool{}
	for _, s := range spans {
		if s.Name() != SpanPrefix+"letters" {
			t.Errorf("span name = %q", s.Name())
		}
		if v, ok := spanAttr(s, AttrCount); !ok || v.AsInt64() != 2 {
			t.Errorf("count = %v", v.Emit())
		}
		if v, ok := spanAttr(s, AttrOutcome); !ok || v.AsString() != OutcomeExhausted {
			t.Errorf("outcome = %v", v.Emit())
		}
		id, _ := spanAttr(s, AttrRunID)
		runIDs[id.AsString()] = true
	}
	if len(runIDs) != 2 {
		t.Errorf("expected distinct run ids, got %v", runIDs)
	}
}

func TestTraced_Error(t *testing.T) {
	tp, sr := newTestTracer(t, 1)
	boom := errors.New("boom")
	p := Traced(pipeline.Fail[int](boom), tp.Tracer("test"), "failing")

	if _, err := pipeline.Collect(context.Background(), p); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Status().Code != codes.Error {
		t.Errorf("status = %v", spans[0].Status())
	}
	if len(spans[0].Events()) == 0 {
		t.Error("expected recorded error event")
	}
}

func TestTraced_EarlyClose(t *testing.T) {
	tp, sr := newTestTracer(t, 1)
	p := Traced(pipeline.RangeFrom(0, 1), tp.Tracer("test"), "infinite")

	if _, err := pipeline.First(context.Background(), p, func(n int) bool { return n == 3 }); err != nil {
		t.Fatal(err)
	}
	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if v, _ := spanAttr(spans[0], AttrOutcome); v.AsString() != OutcomeClosed {
		t.Errorf("outcome = %v, want closed", v.Emit())
	}
	if v, _ := spanAttr(spans[0], AttrCount); v.AsInt64() != 4 {
		t.Errorf("count = %v, want 4", v.Emit())
	}
}

func TestTraced_ChildSpans(t *testing.T) {
	tp, sr := newTestTracer(t, 1)
	tracer := tp.Tracer("test")
	inner := pipeline.Map(pipeline.Of(1), func(ctx context.Context, n int) (int, error) {
		_, span := tracer.Start(ctx, "work")
		span.End()
		return n, nil
	})
	if _, err := pipeline.Collect(context.Background(), Traced(inner, tracer, "outer")); err != nil {
		t.Fatal(err)
	}
	spans := sr.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	child, parent := spans[0], spans[1]
	if child.Parent().SpanID() != parent.SpanContext().SpanID() {
		t.Error("callback span is not a child of the consumption span")
	}
}

func TestTracerProvider_NeverSample(t *testing.T) {
	tp, sr := newTestTracer(t, 0)
	_, _ = pipeline.Collect(context.Background(), Traced(pipeline.Of(1), tp.Tracer("test"), "x"))
	if len(sr.Ended()) != 0 {
		t.Errorf("expected no sampled spans, got %d", len(sr.Ended()))
	}
}

func TestProviderConfigFrom(t *testing.T) {
	cfg := config.Config{Name: "ingest", Environment: "staging"}
	cfg.Observability.SampleRatio = 0.25
	pc := ProviderConfigFrom(&cfg)
	if pc.Name != "ingest" || pc.Environment != "staging" || pc.SampleRatio != 0.25 {
		t.Errorf("got %+v", pc)
	}
}

func TestSetSpanError(t *testing.T) {
	tp, sr := newTestTracer(t, 1)
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	SetSpanError(ctx, errors.New("bad"))
	span.End()
	if len(sr.Ended()) != 1 || len(sr.Ended()[0].Events()) != 1 {
		t.Error("expected one error event")
	}
	// No span in context: must not panic.
	SetSpanError(context.Background(), errors.New("ignored"))
}
