package config

import (
	"github.com/kbukum/iterkit/logger"
	"github.com/kbukum/iterkit/validation"
)

// Guard modes.
const (
	// GuardStrict fails pulls made after exhaustion.
	GuardStrict = "strict"
	// GuardTrack records exhaustion but keeps delegating pulls.
	GuardTrack = "track"
	// GuardOff leaves iterators unwrapped.
	GuardOff = "off"
)

// Config is the complete iterkit configuration.
//
// Example config.yml:
//
//	name: ingest
//	environment: production
//	logging:
//	  level: info
//	  format: json
//	guard:
//	  mode: strict
//	observability:
//	  metrics: true
//	  tracing: true
type Config struct {
	Name          string              `yaml:"name" mapstructure:"name" validate:"required"`
	Environment   string              `yaml:"environment" mapstructure:"environment" validate:"oneof=development staging production"`
	Logging       logger.Config       `yaml:"logging" mapstructure:"logging"`
	Guard         GuardConfig         `yaml:"guard" mapstructure:"guard"`
	Observability ObservabilityConfig `yaml:"observability" mapstructure:"observability"`
}

// GuardConfig selects how iterators handed out by bootstrap are wrapped.
type GuardConfig struct {
	Mode string `yaml:"mode" mapstructure:"mode" validate:"oneof=strict track off"`
	// LogExhaustion logs a debug line whenever a wrapped iterator becomes exhausted.
	LogExhaustion bool `yaml:"log_exhaustion" mapstructure:"log_exhaustion"`
}

// ObservabilityConfig controls the in-process OpenTelemetry providers.
type ObservabilityConfig struct {
	Metrics     bool    `yaml:"metrics" mapstructure:"metrics"`
	Tracing     bool    `yaml:"tracing" mapstructure:"tracing"`
	MeterName   string  `yaml:"meter_name" mapstructure:"meter_name"`
	TracerName  string  `yaml:"tracer_name" mapstructure:"tracer_name"`
	// SampleRatio is the fraction of consumptions traced. Zero means all.
	SampleRatio float64 `yaml:"sample_ratio" mapstructure:"sample_ratio" validate:"gte=0,lte=1"`
}

// ApplyDefaults fills in unset fields.
func (c *Config) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Guard.Mode == "" {
		c.Guard.Mode = GuardStrict
	}
	if c.Observability.MeterName == "" {
		c.Observability.MeterName = "github.com/kbukum/iterkit"
	}
	if c.Observability.TracerName == "" {
		c.Observability.TracerName = c.Observability.MeterName
	}
	if c.Observability.SampleRatio == 0 {
		c.Observability.SampleRatio = 1
	}
	c.Logging.ApplyDefaults()
}

// Validate checks the struct tags of every section.
// Call ApplyDefaults first.
func (c *Config) Validate() error {
	return validation.Validate(c)
}
