// Package log provides a structured logging interface for scigo neighbor search.
//
// The interface is slog-compatible so that backends can be swapped without
// touching call sites. The default backend is zerolog (see provider.go); a
// log/slog adapter is available through NewSlogLogger.
//
// Example usage:
//
//	logger := log.GetLoggerWithName("neighbors.balltree").With(
//	    log.MetricNameKey, "Euclidean",
//	)
//	logger.Debug("ball tree built",
//	    log.SamplesKey, 1000,
//	    log.LeafSizeKey, 40,
//	    log.NodesKey, 63,
//	)
package log

import (
	"context"
)

// Logger defines a structured logging interface compatible with Go's log/slog.
//
// Fields are passed as alternating key/value pairs. Error accepts an error
// value as its first field, which is recorded under ErrAttrKey.
type Logger interface {
	// Debug logs a debug-level message with optional structured fields.
	Debug(msg string, fields ...any)

	// Info logs an info-level message with optional structured fields.
	Info(msg string, fields ...any)

	// Warn logs a warning-level message with optional structured fields.
	Warn(msg string, fields ...any)

	// Error logs an error-level message with optional structured fields.
	//
	// Example:
	//   logger.Error("ball tree construction failed",
	//       err,
	//       log.OperationKey, log.OperationBuild,
	//       log.SamplesKey, 1000,
	//   )
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits log records at the given level.
	// Use it to skip computing expensive fields such as tree depth.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, compatible with slog.Level.
type Level int

// Standard logging levels, values are compatible with slog.Level.
const (
	LevelDebug Level = -4 // Detailed diagnostic information
	LevelInfo  Level = 0  // General operational information
	LevelWarn  Level = 4  // Warning conditions
	LevelError Level = 8  // Error conditions
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LoggerProvider defines an interface for creating and configuring loggers.
type LoggerProvider interface {
	// GetLogger returns the default logger instance.
	GetLogger() Logger

	// GetLoggerWithName returns a logger tagged with a component name.
	GetLoggerWithName(name string) Logger

	// SetLevel sets the minimum log level for all loggers created by this provider.
	SetLevel(level Level)
}

// normalizeFields turns a leading error into an ErrAttrKey pair so that
// Error(msg, err, k, v) and Error(msg, "error", err, k, v) are equivalent.
func normalizeFields(fields []any) []any {
	if len(fields)%2 == 1 {
		if err, ok := fields[0].(error); ok {
			out := make([]any, 0, len(fields)+1)
			out = append(out, ErrAttrKey, err)
			return append(out, fields[1:]...)
		}
	}
	return fields
}
