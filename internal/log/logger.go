package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lmittmann/tint"
)

type contextKey string

var CorrelatedIDKey contextKey = "correlation_id"

const LoggerKeyForContext contextKey = "logger"

// SourceKey tags every record with the component that emitted it.
const SourceKey = "source"

type Logger struct {
	*slog.Logger
}

// Options controls handler selection. Development mode writes colored console
// output and lets debug records through; otherwise records are JSON at Level.
type Options struct {
	Development bool
	Level       slog.Level
	Output      io.Writer
}

func NewLogger(opts Options) *Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	if opts.Development {
		return &Logger{
			Logger: slog.New(tint.NewHandler(out, &tint.Options{
				Level:      slog.LevelDebug,
				TimeFormat: time.Kitchen,
			})),
		}
	}

	level := opts.Level
	if level < slog.LevelInfo {
		level = slog.LevelInfo
	}

	return &Logger{
		Logger: slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})),
	}
}

func NewLoggerWithJSONOutput() *Logger {
	return NewLogger(Options{Level: slog.LevelInfo})
}

// NewLoggerFromEnv reads APP_ENV and LOG_LEVEL.
func NewLoggerFromEnv() *Logger {
	return NewLogger(Options{
		Development: IsDevelopment(os.Getenv("APP_ENV")),
		Level:       ParseLevel(os.Getenv("LOG_LEVEL")),
	})
}

func IsDevelopment(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "development", "dev", "local", "test":
		return true
	}
	return false
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *Logger) WithSource(source string) *Logger {
	return &Logger{
		Logger: l.Logger.With(SourceKey, source),
	}
}

func (l *Logger) WithCorrelationID(ctx context.Context) *Logger {
	id := GetOrGenerateCorrelationID(ctx)

	return &Logger{
		Logger: l.Logger.With(string(CorrelatedIDKey), id),
	}
}

func GetOrGenerateCorrelationID(ctx context.Context) string {
	if ctx != nil {
		if id, ok := ctx.Value(CorrelatedIDKey).(string); ok && id != "" {
			return id
		}
	}

	return GenerateCorrelationID()
}

func GenerateCorrelationID() string {
	return uuid.New().String()
}

func GetLoggerInstanceFromContext(ctx context.Context, fallbackLogger *Logger) *Logger {
	if ctx != nil {
		if l, ok := ctx.Value(LoggerKeyForContext).(*Logger); ok {
			return l
		}

		if fallbackLogger != nil {
			return fallbackLogger.WithCorrelationID(ctx)
		}
		return NewLoggerWithJSONOutput().WithCorrelationID(ctx)
	}

	if fallbackLogger != nil {
		return fallbackLogger
	}

	return NewLoggerWithJSONOutput()
}
