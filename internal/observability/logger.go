package observability

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// sessionIDPrefix is how much of a browser session id is logged
const sessionIDPrefix = 8

// Logger is a zerolog logger that stamps every event with the trace and
// span ids found in its context
type Logger struct {
	logger zerolog.Logger
}

// NewLogger logs to stdout
func NewLogger(config Config) *Logger {
	return NewLoggerTo(os.Stdout, config)
}

// NewLoggerTo logs to w. The CLI passes stderr to keep command output clean.
func NewLoggerTo(w io.Writer, config Config) *Logger {
	if config.LogFormat == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(w).Level(parseLogLevel(config.LogLevel)).With().Timestamp()
	if config.ServiceName != "" {
		ctx = ctx.Str("service", config.ServiceName)
	}
	if config.ServiceVersion != "" {
		ctx = ctx.Str("version", config.ServiceVersion)
	}
	if config.Environment != "" {
		ctx = ctx.Str("environment", config.Environment)
	}
	return &Logger{logger: ctx.Logger()}
}

// parseLogLevel accepts zerolog level names plus "warning", defaulting to info
func parseLogLevel(level string) zerolog.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "warning" {
		level = "warn"
	}
	parsed, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return parsed
}

// NopLogger discards everything
func NopLogger() *Logger {
	return &Logger{logger: zerolog.Nop()}
}

// WithContext returns the underlying logger with trace correlation fields
func (l *Logger) WithContext(ctx context.Context) *zerolog.Logger {
	logger := l.logger
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		logger = logger.With().
			Str("trace_id", sc.TraceID().String()).
			Str("span_id", sc.SpanID().String()).
			Bool("trace_sampled", sc.IsSampled()).
			Logger()
	}
	return &logger
}

func (l *Logger) Debug(ctx context.Context) *zerolog.Event {
	return l.WithContext(ctx).Debug()
}

func (l *Logger) Info(ctx context.Context) *zerolog.Event {
	return l.WithContext(ctx).Info()
}

func (l *Logger) Warn(ctx context.Context) *zerolog.Event {
	return l.WithContext(ctx).Warn()
}

func (l *Logger) Error(ctx context.Context) *zerolog.Event {
	return l.WithContext(ctx).Error()
}

// Fatal logs and exits the process
func (l *Logger) Fatal(ctx context.Context) *zerolog.Event {
	return l.WithContext(ctx).Fatal()
}

// Component returns a child logger tagged with a component name
func (l *Logger) Component(name string) *Logger {
	return &Logger{logger: l.logger.With().Str("component", name).Logger()}
}

// ForSession returns a child logger tagged with a shortened browser session
// id, enough to correlate requests without logging the cookie value
func (l *Logger) ForSession(id string) *Logger {
	if len(id) > sessionIDPrefix {
		id = id[:sessionIDPrefix]
	}
	return &Logger{logger: l.logger.With().Str("session", id).Logger()}
}

// OTELErrorHandler reports SDK errors such as failed exports
func (l *Logger) OTELErrorHandler() func(error) {
	return func(err error) {
		l.logger.Error().Err(err).Str("source", "otel_sdk").Msg("OpenTelemetry SDK error")
	}
}
