package observe

import (
	"context"
	"time"

	"github.com/jonwraymond/cmdchk/logging"
)

// ExecuteFunc runs one check. A non-nil error means the check could not be
// started at all.
type ExecuteFunc func(ctx context.Context, check CheckMeta) (Outcome, error)

// Middleware wraps check execution with tracing, metrics and logging.
//
// Contract:
//   - Concurrency: Wrap() returns a thread-safe ExecuteFunc.
//   - Context: Propagates context through tracing spans.
//   - Errors: Outcomes and errors from the wrapped function are recorded and
//     returned unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  logging.Logger
}

// NewMiddleware creates a new Middleware. A nil logger discards.
func NewMiddleware(tracer Tracer, metrics Metrics, logger logging.Logger) *Middleware {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// NopMiddleware returns a Middleware that records nothing.
func NopMiddleware() *Middleware {
	return NewMiddleware(newNoopTracer(), noopMetrics{}, logging.Nop())
}

// Wrap wraps an ExecuteFunc with tracing, metrics and logging.
func (m *Middleware) Wrap(fn ExecuteFunc) ExecuteFunc {
	return func(ctx context.Context, check CheckMeta) (Outcome, error) {
		ctx, span := m.tracer.StartSpan(ctx, check)

		start := time.Now()
		out, err := fn(ctx, check)
		duration := time.Since(start)

		m.tracer.EndSpan(span, out, err)
		m.metrics.RecordExecution(ctx, check, duration, out, err)

		fields := []logging.Field{
			logging.F("check", check.CheckID()),
			logging.F("command", check.Command),
			logging.F("exit_code", out.ExitCode),
			logging.F("duration_ms", float64(duration.Milliseconds())),
		}
		if err != nil {
			fields = append(fields, logging.F("error", err.Error()))
		}
		m.logger.Debug(ctx, "check executed", fields...)

		return out, err
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer, logger logging.Logger) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(newTracer(obs.Tracer()), metrics, logger), nil
}
