package observability

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/iterkit/config"
)

// ProviderConfig describes the process that owns the providers.
type ProviderConfig struct {
	// Name is recorded as service.name on every metric and span.
	Name string
	// Environment is the deployment environment (development, staging, production).
	Environment string
	// SampleRatio is the fraction of consumptions traced (0.0 to 1.0).
	SampleRatio float64
}

// ProviderConfigFrom derives a ProviderConfig from a loaded Config.
func ProviderConfigFrom(cfg *config.Config) ProviderConfig {
	return ProviderConfig{
		Name:        cfg.Name,
		Environment: cfg.Environment,
		SampleRatio: cfg.Observability.SampleRatio,
	}
}

// NewMeterProvider creates an in-process meter provider. Nothing is
// exported: callers attach readers, e.g. sdkmetric.NewManualReader.
func NewMeterProvider(cfg ProviderConfig, readers ...sdkmetric.Reader) (*sdkmetric.MeterProvider, error) {
	res, err := newResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}
	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	for _, r := range readers {
		opts = append(opts, sdkmetric.WithReader(r))
	}
	return sdkmetric.NewMeterProvider(opts...), nil
}

// NewTracerProvider creates an in-process tracer provider sampling at
// cfg.SampleRatio. Span processors are supplied by the caller.
func NewTracerProvider(cfg ProviderConfig, opts ...sdktrace.TracerProviderOption) (*sdktrace.TracerProvider, error) {
	res, err := newResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var sampler sdktrace.Sampler
	switch {
	case cfg.SampleRatio >= 1.0:
		sampler = sdktrace.AlwaysSample()
	case cfg.SampleRatio <= 0:
		sampler = sdktrace.NeverSample()
	default:
		sampler = sdktrace.TraceIDRatioBased(cfg.SampleRatio)
	}

	all := append([]sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	}, opts...)
	return sdktrace.NewTracerProvider(all...), nil
}

func newResource(cfg ProviderConfig) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			attribute.String(AttrServiceName, cfg.Name),
			attribute.String(AttrEnvironment, cfg.Environment),
		),
	)
}
