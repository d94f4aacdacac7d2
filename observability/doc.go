// Package observability adds OpenTelemetry metrics and tracing to pipelines.
//
// Both are opt-in stages that pass values through unchanged. Providers are
// built in-process without exporters; attach a reader or span processor to
// get data out.
//
// Metrics:
//
//	mp, err := observability.NewMeterProvider(observability.ProviderConfig{Name: "ingest"}, reader)
//	m, err := observability.NewMetrics(mp.Meter("ingest"))
//	p = observability.Instrument(p, m, "parse")
//
// Tracing:
//
//	tp, err := observability.NewTracerProvider(observability.ProviderConfig{Name: "ingest", SampleRatio: 1})
//	p = observability.Traced(p, tp.Tracer("ingest"), "parse")
package observability
