package logging

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Logger is a minimal structured logging interface.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: logging is best-effort and must not panic.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...Field)
	Info(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)
	Critical(ctx context.Context, msg string, fields ...Field)

	// Log writes msg at an explicit level.
	Log(ctx context.Context, level Level, msg string, fields ...Field)

	// With returns a logger that adds fields to every entry.
	With(fields ...Field) Logger
}

// Field represents a structured log field.
type Field struct {
	Key   string
	Value any
}

// F is shorthand for constructing a Field.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// structuredLogger writes one JSON object per entry to a Sink.
type structuredLogger struct {
	level     Level
	sink      Sink
	mu        *sync.Mutex
	baseAttrs map[string]any
	now       func() time.Time
}

// New creates a logger that writes entries at or above level to sink.
func New(level Level, sink Sink) Logger {
	return &structuredLogger{
		level:     level,
		sink:      sink,
		mu:        &sync.Mutex{},
		baseAttrs: make(map[string]any),
		now:       time.Now,
	}
}

// NewWithWriter creates a logger over a plain writer, e.g. os.Stderr.
func NewWithWriter(level Level, w io.Writer) Logger {
	return New(level, NewWriterSink(w))
}

func (l *structuredLogger) With(fields ...Field) Logger {
	attrs := make(map[string]any, len(l.baseAttrs)+len(fields))
	for k, v := range l.baseAttrs {
		attrs[k] = v
	}
	for _, f := range fields {
		attrs[f.Key] = jsonValue(f.Value)
	}

	return &structuredLogger{
		level:     l.level,
		sink:      l.sink,
		mu:        l.mu,
		baseAttrs: attrs,
		now:       l.now,
	}
}

func (l *structuredLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.Log(ctx, LevelDebug, msg, fields...)
}

func (l *structuredLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.Log(ctx, LevelInfo, msg, fields...)
}

func (l *structuredLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.Log(ctx, LevelWarn, msg, fields...)
}

func (l *structuredLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.Log(ctx, LevelError, msg, fields...)
}

func (l *structuredLogger) Critical(ctx context.Context, msg string, fields ...Field) {
	l.Log(ctx, LevelCritical, msg, fields...)
}

func (l *structuredLogger) Log(_ context.Context, level Level, msg string, fields ...Field) {
	if level < l.level {
		return
	}

	entry := make(map[string]any, len(l.baseAttrs)+len(fields)+3)
	entry["timestamp"] = l.now().UTC().Format(time.RFC3339Nano)
	entry["level"] = level.String()
	entry["msg"] = msg

	for k, v := range l.baseAttrs {
		entry[k] = v
	}

	for _, f := range fields {
		if isRedactedField(f.Key) {
			entry[f.Key] = "[REDACTED]"
			continue
		}
		entry[f.Key] = jsonValue(f.Value)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	data = append(data, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	_ = l.sink.Write(level, data)
}

// jsonValue converts values that encoding/json renders uselessly: []byte
// would be base64 and an error would be {}.
func jsonValue(v any) any {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case error:
		if val == nil {
			return nil
		}
		return val.Error()
	default:
		return v
	}
}

// RedactedFields lists field keys that are replaced by "[REDACTED]".
var RedactedFields = []string{
	"password",
	"secret",
	"token",
	"api_key",
	"credential",
}

func isRedactedField(key string) bool {
	for _, k := range RedactedFields {
		if k == key {
			return true
		}
	}
	return false
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...Field)      {}
func (nopLogger) Info(context.Context, string, ...Field)       {}
func (nopLogger) Warn(context.Context, string, ...Field)       {}
func (nopLogger) Error(context.Context, string, ...Field)      {}
func (nopLogger) Critical(context.Context, string, ...Field)   {}
func (nopLogger) Log(context.Context, Level, string, ...Field) {}
func (n nopLogger) With(...Field) Logger                       { return n }

var _ Logger = (*structuredLogger)(nil)
