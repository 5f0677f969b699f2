package log

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/YuminosukeSato/scigo-neighbors/pkg/errors"
)

// SetupLogger installs a JSON slog handler writing to w that also carries
// cockroachdb/errors stack traces. It becomes both the slog default and the
// global provider, for applications that standardize on slog.
func SetupLogger(w io.Writer, loglevel string) error {
	level, err := ParseLevel(loglevel)
	if err != nil {
		return err
	}
	lv := new(slog.LevelVar)
	lv.Set(slog.Level(level))
	ops := slog.HandlerOptions{
		AddSource: true,
		Level:     lv,
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.LevelKey:
				attr = slog.Attr{Key: "severity", Value: attr.Value}
			case slog.MessageKey:
				attr = slog.Attr{Key: "message", Value: attr.Value}
			}
			return attr
		},
	}
	base := slog.New(WrapByErrFmtHandler(slog.NewJSONHandler(w, &ops)))
	slog.SetDefault(base)
	SetProvider(&SlogProvider{level: lv, base: base})
	routeWarnings()
	return nil
}

// SlogProvider is a LoggerProvider backed by a slog.Logger.
type SlogProvider struct {
	level *slog.LevelVar
	base  *slog.Logger
}

// GetLogger implements LoggerProvider.GetLogger.
func (p *SlogProvider) GetLogger() Logger {
	return &slogLogger{l: p.base}
}

// GetLoggerWithName implements LoggerProvider.GetLoggerWithName.
func (p *SlogProvider) GetLoggerWithName(name string) Logger {
	return &slogLogger{l: p.base.With(ComponentKey, name)}
}

// SetLevel implements LoggerProvider.SetLevel. Unlike the zerolog provider
// the change also applies to loggers handed out earlier.
func (p *SlogProvider) SetLevel(level Level) {
	p.level.Set(slog.Level(level))
}

// ParseLevel converts a level name ("debug", "info", "warn", "error") into a Level.
func ParseLevel(level string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, errors.NewValidationError("level", "must be debug, info, warn or error", level)
	}
}

const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
)

// ErrAttr is a wrapper to pass err to slog.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}

// slogLogger adapts a *slog.Logger to Logger.
type slogLogger struct {
	l *slog.Logger
}

// NewSlogLogger returns a Logger writing through the given slog handler.
// The handler is wrapped with ErrFmtHandler so errors carry their stack trace.
func NewSlogLogger(handler slog.Handler) Logger {
	return &slogLogger{l: slog.New(WrapByErrFmtHandler(handler))}
}

func (s *slogLogger) Debug(msg string, fields ...any) { s.l.Debug(msg, normalizeFields(fields)...) }
func (s *slogLogger) Info(msg string, fields ...any)  { s.l.Info(msg, normalizeFields(fields)...) }
func (s *slogLogger) Warn(msg string, fields ...any)  { s.l.Warn(msg, normalizeFields(fields)...) }
func (s *slogLogger) Error(msg string, fields ...any) { s.l.Error(msg, normalizeFields(fields)...) }

func (s *slogLogger) With(fields ...any) Logger {
	return &slogLogger{l: s.l.With(normalizeFields(fields)...)}
}

func (s *slogLogger) Enabled(ctx context.Context, level Level) bool {
	return s.l.Enabled(ctx, slog.Level(level))
}
