package bootstrap

import (
	"time"

	"github.com/kbukum/iterkit/logger"
)

// Summary describes what Setup configured.
type Summary struct {
	Name        string
	Version     string
	Environment string
	GuardMode   string
	Metrics     bool
	Tracing     bool
	Duration    time.Duration
}

// Fields returns the summary as structured log fields.
func (s Summary) Fields() map[string]interface{} {
	return logger.Fields(
		"name", s.Name,
		"iterkit_version", s.Version,
		"environment", s.Environment,
		"guard_mode", s.GuardMode,
		"metrics", s.Metrics,
		"tracing", s.Tracing,
		"setup_ms", s.Duration.Milliseconds(),
	)
}

// Log writes the summary at info level.
func (s Summary) Log(l *logger.Logger) {
	l.Info("iterkit ready", s.Fields())
}
