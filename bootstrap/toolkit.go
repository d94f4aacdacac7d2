package bootstrap

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/iterkit/config"
	"github.com/kbukum/iterkit/logger"
	"github.com/kbukum/iterkit/observability"
	"github.com/kbukum/iterkit/pipeline"
	"github.com/kbukum/iterkit/version"
)

// Toolkit holds the configured logger and telemetry providers.
type Toolkit struct {
	Name string
	Cfg  *config.Config

	logger         *logger.Logger
	metrics        *observability.Metrics
	meterProvider  *sdkmetric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer
	onShutdown     []Hook
}

// Setup loads configuration and builds a Toolkit from it.
func Setup(name string, opts ...Option) (*Toolkit, error) {
	start := time.Now()
	o := resolveOptions(opts)

	cfg := o.cfg
	if cfg == nil {
		cfg = &config.Config{}
		if err := config.LoadConfig(name, cfg, o.loaderOpts...); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}
	if cfg.Name == "" {
		cfg.Name = name
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	log := o.logger
	if log == nil {
		log = logger.New(&cfg.Logging, cfg.Name)
	}
	logger.SetGlobalLogger(log)

	tk := &Toolkit{
		Name:   cfg.Name,
		Cfg:    cfg,
		logger: log,
	}

	pc := observability.ProviderConfigFrom(cfg)
	if cfg.Observability.Metrics {
		mp, err := observability.NewMeterProvider(pc, o.readers...)
		if err != nil {
			return nil, fmt.Errorf("meter provider: %w", err)
		}
		m, err := observability.NewMetrics(mp.Meter(cfg.Observability.MeterName,
			metric.WithInstrumentationVersion(version.Short())))
		if err != nil {
			_ = mp.Shutdown(context.Background())
			return nil, fmt.Errorf("metrics: %w", err)
		}
		tk.meterProvider = mp
		tk.metrics = m
	}
	if cfg.Observability.Tracing {
		tpOpts := make([]sdktrace.TracerProviderOption, 0, len(o.spanProcessors))
		for _, sp := range o.spanProcessors {
			tpOpts = append(tpOpts, sdktrace.WithSpanProcessor(sp))
		}
		tp, err := observability.NewTracerProvider(pc, tpOpts...)
		if err != nil {
			if tk.meterProvider != nil {
				_ = tk.meterProvider.Shutdown(context.Background())
			}
			return nil, fmt.Errorf("tracer provider: %w", err)
		}
		tk.tracerProvider = tp
		tk.tracer = tp.Tracer(cfg.Observability.TracerName,
			trace.WithInstrumentationVersion(version.Short()))
	}

	if !o.quiet {
		Summary{
			Name:        cfg.Name,
			Version:     version.Short(),
			Environment: cfg.Environment,
			GuardMode:   cfg.Guard.Mode,
			Metrics:     tk.metrics != nil,
			Tracing:     tk.tracer != nil,
			Duration:    time.Since(start),
		}.Log(log)
	}
	return tk, nil
}

// Logger returns the toolkit logger.
func (tk *Toolkit) Logger() *logger.Logger { return tk.logger }

// Metrics returns the pipeline instruments, or nil when metrics are disabled.
func (tk *Toolkit) Metrics() *observability.Metrics { return tk.metrics }

// Tracer returns the tracer, or nil when tracing is disabled.
func (tk *Toolkit) Tracer() trace.Tracer { return tk.tracer }

// Config returns the validated configuration.
func (tk *Toolkit) Config() *config.Config { return tk.Cfg }

// GuardOptions returns the exhaustion hooks configured for stage.
func (tk *Toolkit) GuardOptions(ctx context.Context, stage string) []pipeline.GuardOption {
	var opts []pipeline.GuardOption
	if tk.metrics != nil {
		opts = append(opts, tk.metrics.GuardOption(ctx, stage))
	}
	if tk.Cfg.Guard.LogExhaustion {
		log := tk.logger.WithStage(stage)
		opts = append(opts, pipeline.WithOnExhausted(func(err error) {
			if err != nil {
				log.Debug("iterator exhausted with error", logger.MergeWithError(logger.Fields(logger.FieldEvent, logger.EventError), err))
				return
			}
			log.Debug("iterator exhausted", logger.Fields(logger.FieldEvent, logger.EventExhausted))
		}))
	}
	return opts
}

// Shutdown runs registered hooks then flushes and stops the providers.
func (tk *Toolkit) Shutdown(ctx context.Context) error {
	var errs []error
	if err := runHooks(ctx, tk.onShutdown); err != nil {
		errs = append(errs, err)
	}
	if tk.tracerProvider != nil {
		if err := tk.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider: %w", err))
		}
	}
	if tk.meterProvider != nil {
		if err := tk.meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider: %w", err))
		}
	}
	return stderrors.Join(errs...)
}

// Wrap adds the logging, metrics and tracing stages enabled on tk.
// The tracing stage is outermost so the logging and metrics stages run
// inside the consumption span.
func Wrap[T any](tk *Toolkit, p *pipeline.Pipeline[T], stage string) *pipeline.Pipeline[T] {
	p = pipeline.Log(p, tk.logger, stage)
	p = observability.Instrument(p, tk.metrics, stage)
	return observability.Traced(p, tk.tracer, stage)
}

// Iterate creates an iterator over p wrapped according to the configured
// guard mode.
func Iterate[T any](ctx context.Context, tk *Toolkit, p *pipeline.Pipeline[T], stage string) pipeline.Iterator[T] {
	switch tk.Cfg.Guard.Mode {
	case config.GuardTrack:
		return pipeline.TrackPipeline(ctx, p, tk.GuardOptions(ctx, stage)...)
	case config.GuardOff:
		return p.Iter(ctx)
	default:
		return pipeline.GuardPipeline(ctx, p, tk.GuardOptions(ctx, stage)...)
	}
}
