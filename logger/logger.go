package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const (
	FormatPretty  = "pretty"
	FormatConsole = "console"
)

// Logger wraps zerolog.Logger with the name of the owning pipeline.
type Logger struct {
	logger zerolog.Logger
	name   string
}

// New creates a logger writing to the configured output.
func New(cfg *Config, name string) *Logger {
	return NewWithWriter(outputWriter(cfg.Output), cfg, name)
}

// NewWithWriter creates a logger writing to w instead of the configured
// output. An unknown level falls back to info.
func NewWithWriter(w io.Writer, cfg *Config, name string) *Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	zl := zerolog.New(w)
	if isConsole(cfg.Format) {
		zl = newConsoleLogger(w, cfg, name)
	}
	ctx := zl.Level(level).With()
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}
	if cfg.Caller {
		ctx = ctx.Caller()
	}
	return &Logger{logger: ctx.Logger(), name: name}
}

// NewDefault creates an info-level console logger on stdout.
func NewDefault(name string) *Logger {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return New(cfg, name)
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{logger: zerolog.Nop()}
}

// Name returns the name the logger was created with.
func (l *Logger) Name() string { return l.name }

func (l *Logger) with(key, value string) *Logger {
	return &Logger{logger: l.logger.With().Str(key, value).Logger(), name: l.name}
}

// WithComponent returns a logger tagged with a component name.
func (l *Logger) WithComponent(name string) *Logger { return l.with(FieldComponent, name) }

// WithStage returns a logger tagged with a pipeline stage name.
func (l *Logger) WithStage(stage string) *Logger { return l.with(FieldStage, stage) }

// WithFields returns a logger with additional fields.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return &Logger{logger: l.logger.With().Fields(fields).Logger(), name: l.name}
}

// DebugEnabled reports whether debug events would be written.
// pipeline.Log uses it to skip field construction on hot paths.
func (l *Logger) DebugEnabled() bool {
	return l.logger.GetLevel() <= zerolog.DebugLevel && zerolog.GlobalLevel() <= zerolog.DebugLevel
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	write(l.logger.Debug(), msg, fields)
}

// Info logs an info message.
func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	write(l.logger.Info(), msg, fields)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	write(l.logger.Warn(), msg, fields)
}

// Error logs an error message.
func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	write(l.logger.Error(), msg, fields)
}

// write is a no-op for a nil event, which zerolog returns for disabled levels.
func write(event *zerolog.Event, msg string, fields []map[string]interface{}) {
	for _, fm := range fields {
		event.Fields(fm)
	}
	event.Msg(msg)
}

var globalLogger *Logger

// SetGlobalLogger sets the logger used by packages without their own.
func SetGlobalLogger(l *Logger) { globalLogger = l }

// GetGlobalLogger returns the global logger, creating a default one if needed.
func GetGlobalLogger() *Logger {
	if globalLogger == nil {
		globalLogger = NewDefault("iterkit")
	}
	return globalLogger
}

func isConsole(format string) bool {
	f := strings.ToLower(format)
	return f == FormatConsole || f == FormatPretty
}

func outputWriter(output string) io.Writer {
	if strings.EqualFold(output, "stderr") {
		return os.Stderr
	}
	return os.Stdout
}

var levelTags = map[string]string{
	"TRACE": "TRC",
	"DEBUG": "DBG",
	"INFO":  "INF",
	"WARN":  "WRN",
	"ERROR": "ERR",
	"FATAL": "FTL",
}

var levelColors = map[string]string{
	"DEBUG": "36",
	"INFO":  "32",
	"WARN":  "33",
	"ERROR": "31",
	"FATAL": "35",
}

// newConsoleLogger prefixes each line with the first three letters of name
// and a short level tag, e.g. "[ING][INF]".
func newConsoleLogger(w io.Writer, cfg *Config, name string) zerolog.Logger {
	colorize := func(code, s string) string {
		if cfg.NoColor || code == "" {
			return s
		}
		return "\033[" + code + "m" + s + "\033[0m"
	}
	prefix := ""
	if len(name) >= 3 {
		prefix = colorize("34", "["+strings.ToUpper(name[:3])+"]")
	}
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
		NoColor:    cfg.NoColor,
		FormatLevel: func(i interface{}) string {
			raw := strings.ToUpper(fmt.Sprint(i))
			tag, ok := levelTags[raw]
			if !ok {
				tag = raw
			}
			return prefix + colorize(levelColors[raw], "["+tag+"]")
		},
		FormatFieldName: func(i interface{}) string {
			return fmt.Sprintf("%s:", i)
		},
	})
}
