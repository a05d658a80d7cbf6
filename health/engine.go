package health

import (
	"context"
	"fmt"
	"time"

	"github.com/jonwraymond/cmdchk/config"
	"github.com/jonwraymond/cmdchk/logging"
	"github.com/jonwraymond/cmdchk/observe"
)

// Verdict is the outcome of one evaluation.
type Verdict struct {
	// Status is StatusHealthy when every check passed.
	Status Status

	// Results holds the checks that ran, in order. Evaluation stops at the
	// first failure, so later checks are absent.
	Results []Result
}

// Failure returns the failing result, if any.
func (v Verdict) Failure() (Result, bool) {
	if v.Status == StatusHealthy || len(v.Results) == 0 {
		return Result{}, false
	}
	return v.Results[len(v.Results)-1], true
}

// Err returns an error wrapping ErrCheckFailed describing the failure, or
// nil when healthy.
func (v Verdict) Err() error {
	r, ok := v.Failure()
	if !ok {
		return nil
	}
	if r.Err != nil {
		return fmt.Errorf("%w: %q: %w", ErrCheckFailed, r.Check.Command, r.Err)
	}
	return fmt.Errorf("%w: %q exited %d", ErrCheckFailed, r.Check.Command, r.ExitCode)
}

// Evaluator produces a fresh verdict on every call.
type Evaluator interface {
	Evaluate(ctx context.Context) Verdict
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithMiddleware wraps every command execution with mw.
func WithMiddleware(mw *observe.Middleware) EngineOption {
	return func(e *Engine) {
		if mw != nil {
			e.mw = mw
		}
	}
}

// WithTimeout bounds a whole evaluation. Zero means no limit.
func WithTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.timeout = d
	}
}

// Engine runs the configured checks in order. It keeps no state between
// evaluations.
type Engine struct {
	checks  []config.Check
	runner  Runner
	logger  logging.Logger
	mw      *observe.Middleware
	timeout time.Duration
	exec    observe.ExecuteFunc
}

// NewEngine creates an Engine. The check list is copied.
func NewEngine(checks []config.Check, runner Runner, logger logging.Logger, opts ...EngineOption) *Engine {
	if logger == nil {
		logger = logging.Nop()
	}
	e := &Engine{
		checks: append([]config.Check(nil), checks...),
		runner: runner,
		logger: logger,
		mw:     observe.NopMiddleware(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.exec = e.mw.Wrap(e.execute)
	return e
}

// Checks returns a copy of the configured checks.
func (e *Engine) Checks() []config.Check {
	return append([]config.Check(nil), e.checks...)
}

// Evaluate runs the checks in order and stops at the first one that fails.
// The failure is logged at WARN with the command, exit code and output. An
// empty check list is healthy.
func (e *Engine) Evaluate(ctx context.Context) Verdict {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	v := Verdict{Status: StatusHealthy, Results: make([]Result, 0, len(e.checks))}
	for i, check := range e.checks {
		r := e.run(ctx, i, check)
		v.Results = append(v.Results, r)
		if r.Passed() {
			continue
		}

		v.Status = StatusUnhealthy
		fields := []logging.Field{
			logging.F("command", check.Command),
			logging.F("exit_code", r.ExitCode),
			logging.F("output", r.Output),
		}
		if r.Err != nil {
			fields = append(fields, logging.F("error", r.Err.Error()))
		}
		e.logger.Warn(ctx, "Check failed", fields...)
		break
	}
	return v
}

func (e *Engine) run(ctx context.Context, index int, check config.Check) Result {
	start := time.Now()
	out, err := e.exec(ctx, observe.CheckMeta{
		Index:    index,
		Command:  check.Command,
		Accepted: check.Accepted,
	})
	return Result{
		Check:    check,
		ExitCode: out.ExitCode,
		Output:   out.Output,
		Duration: time.Since(start),
		Err:      err,
	}
}

func (e *Engine) execute(ctx context.Context, meta observe.CheckMeta) (observe.Outcome, error) {
	code, output, err := e.runner.Run(ctx, meta.Command)
	if err != nil {
		code = -1
	}
	check := config.Check{Command: meta.Command, Accepted: meta.Accepted}
	return observe.Outcome{
		ExitCode: code,
		Accepted: err == nil && check.Accepts(code),
		Output:   output,
	}, err
}
