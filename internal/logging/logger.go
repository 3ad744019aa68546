package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"
	"strings"
)

// Logger defines a minimal, printf-style logging contract.
//
// Packages depend on this interface rather than a concrete logger so that
// tests can swap in Nop() and the CLI can fan out to multiple sinks.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Nop returns a logger that discards all output.
func Nop() Logger {
	return nopLogger{}
}

// IsNil reports whether logger is nil or wraps a nil pointer receiver.
func IsNil(logger Logger) bool {
	if logger == nil {
		return true
	}
	val := reflect.ValueOf(logger)
	switch val.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func:
		return val.IsNil()
	default:
		return false
	}
}

// OrNop returns logger when non-nil, otherwise a no-op logger.
func OrNop(logger Logger) Logger {
	if IsNil(logger) {
		return Nop()
	}
	return logger
}

// Config configures the slog-backed logger.
type Config struct {
	Level     string // debug, info, warn, error
	Format    string // json, text
	Output    io.Writer
	Component string
}

type slogLogger struct {
	logger *slog.Logger
}

// New creates a structured logger writing to config.Output (stdout by default).
func New(config Config) Logger {
	level := slog.LevelInfo
	switch strings.ToLower(config.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	output := config.Output
	if output == nil {
		output = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if config.Format == "json" {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}

	logger := slog.New(handler)
	if config.Component != "" {
		logger = logger.With("component", config.Component)
	}
	return &slogLogger{logger: logger}
}

// NewComponentLogger returns the default application logger scoped to a component.
func NewComponentLogger(component string) Logger {
	return New(Config{Level: os.Getenv("HOPQA_LOG_LEVEL"), Component: component})
}

func (l *slogLogger) Debug(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *slogLogger) Info(format string, args ...any) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *slogLogger) Warn(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *slogLogger) Error(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

type multiLogger struct {
	loggers []Logger
}

// Multi returns a logger fan-out that calls every non-nil logger in order.
func Multi(loggers ...Logger) Logger {
	flattened := make([]Logger, 0, len(loggers))
	for _, logger := range loggers {
		if IsNil(logger) {
			continue
		}
		if ml, ok := logger.(*multiLogger); ok {
			flattened = append(flattened, ml.loggers...)
			continue
		}
		flattened = append(flattened, logger)
	}
	switch len(flattened) {
	case 0:
		return Nop()
	case 1:
		return flattened[0]
	}
	return &multiLogger{loggers: flattened}
}

func (m *multiLogger) Debug(format string, args ...any) {
	for _, l := range m.loggers {
		l.Debug(format, args...)
	}
}

func (m *multiLogger) Info(format string, args ...any) {
	for _, l := range m.loggers {
		l.Info(format, args...)
	}
}

func (m *multiLogger) Warn(format string, args ...any) {
	for _, l := range m.loggers {
		l.Warn(format, args...)
	}
}

func (m *multiLogger) Error(format string, args ...any) {
	for _, l := range m.loggers {
		l.Error(format, args...)
	}
}

// SanitizeAPIKey masks an API key for log output.
func SanitizeAPIKey(key string) string {
	if len(key) <= 12 {
		return "***"
	}
	return key[:8] + "..." + key[len(key)-4:]
}
