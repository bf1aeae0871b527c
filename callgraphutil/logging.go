package callgraphutil

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// LogLevel represents different levels of logging detail.
type LogLevel int

const (
	LogLevelSilent LogLevel = iota
	LogLevelInfo
	LogLevelDebug
	LogLevelTrace
)

// Logger provides structured logging for call graph operations.
type Logger struct {
	level  LogLevel
	writer io.Writer
	prefix string
}

// loggerKey is the context key for logger instances.
type loggerKey struct{}

// NewLogger creates a new logger with the specified level and output.
func NewLogger(level LogLevel, writer io.Writer) *Logger {
	if writer == nil {
		writer = os.Stderr
	}
	return &Logger{
		level:  level,
		writer: writer,
	}
}

// WithPrefix returns a new logger with an additional prefix.
func (l *Logger) WithPrefix(prefix string) *Logger {
	newPrefix := prefix
	if l.prefix != "" {
		newPrefix = l.prefix + " " + prefix
	}
	return &Logger{
		level:  l.level,
		writer: l.writer,
		prefix: newPrefix,
	}
}

// Info logs informational messages (always visible except silent mode).
func (l *Logger) Info(format string, args ...interface{}) {
	if l.level >= LogLevelInfo {
		l.log("•", format, args...)
	}
}

// Debug logs debug messages (visible in debug and trace modes).
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.level >= LogLevelDebug {
		l.log("→", format, args...)
	}
}

// Trace logs detailed trace messages (visible only in trace mode).
func (l *Logger) Trace(format string, args ...interface{}) {
	if l.level >= LogLevelTrace {
		l.log("·", format, args...)
	}
}

// Progress logs progress information with timing.
func (l *Logger) Progress(operation string, current, total int, elapsed time.Duration) {
	if l.level >= LogLevelInfo {
		if total > 0 {
			percent := float64(current) / float64(total) * 100
			l.log("▸", "%s: %d/%d (%.1f%%) [%v]", operation, current, total, percent, elapsed.Truncate(time.Millisecond))
		} else {
			l.log("▸", "%s: %d processed [%v]", operation, current, elapsed.Truncate(time.Millisecond))
		}
	}
}

// Step logs a processing step with context.
func (l *Logger) Step(step string, details ...string) {
	if l.level >= LogLevelInfo {
		msg := step
		if len(details) > 0 {
			msg += ": " + strings.Join(details, ", ")
		}
		l.log("✓", "%s", msg)
	}
}

// Warning logs warning messages.
func (l *Logger) Warning(format string, args ...interface{}) {
	if l.level >= LogLevelInfo {
		l.log("⚠", format, args...)
	}
}

// Error logs error messages (always visible except silent mode).
func (l *Logger) Error(format string, args ...interface{}) {
	if l.level >= LogLevelInfo {
		l.log("✗", format, args...)
	}
}

// log is the internal logging function.
func (l *Logger) log(symbol, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	prefix := ""
	if l.prefix != "" {
		prefix = "[" + l.prefix + "] "
	}
	fmt.Fprintf(l.writer, "%s %s%s\n", symbol, prefix, message)
	if f, ok := l.writer.(interface{ Flush() error }); ok {
		_ = f.Flush()
	}
}

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext retrieves a logger from the context, returning a no-op logger
// if none exists.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*Logger); ok {
		return logger
	}
	return NewLogger(LogLevelSilent, io.Discard)
}
