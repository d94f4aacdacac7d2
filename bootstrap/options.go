package bootstrap

import (
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/iterkit/config"
	"github.com/kbukum/iterkit/logger"
)

// Option configures Setup.
type Option func(*setupOptions)

type setupOptions struct {
	cfg            *config.Config
	loaderOpts     []config.LoaderOption
	logger         *logger.Logger
	readers        []sdkmetric.Reader
	spanProcessors []sdktrace.SpanProcessor
	quiet          bool
}

func resolveOptions(opts []Option) *setupOptions {
	o := &setupOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithConfig uses cfg instead of loading one from files and environment.
func WithConfig(cfg *config.Config) Option {
	return func(o *setupOptions) {
		o.cfg = cfg
	}
}

// WithLoaderOptions passes options to config.LoadConfig.
func WithLoaderOptions(opts ...config.LoaderOption) Option {
	return func(o *setupOptions) {
		o.loaderOpts = append(o.loaderOpts, opts...)
	}
}

// WithLogger sets a custom logger.
// If not set, a logger is built from the config's Logging section.
func WithLogger(l *logger.Logger) Option {
	return func(o *setupOptions) {
		o.logger = l
	}
}

// WithMetricReader attaches a reader to the meter provider.
func WithMetricReader(r sdkmetric.Reader) Option {
	return func(o *setupOptions) {
		o.readers = append(o.readers, r)
	}
}

// WithSpanProcessor attaches a span processor to the tracer provider.
func WithSpanProcessor(sp sdktrace.SpanProcessor) Option {
	return func(o *setupOptions) {
		o.spanProcessors = append(o.spanProcessors, sp)
	}
}

// WithoutSummary skips the setup summary log line.
func WithoutSummary() Option {
	return func(o *setupOptions) {
		o.quiet = true
	}
}
