//go:build unix

package supervisor

import (
	"context"
	"sync"
	"syscall"
	"time"

	"github.com/jonwraymond/cmdchk/logging"
	"github.com/jonwraymond/cmdchk/resilience"
)

// DefaultGrace is how long a stopping worker may take after SIGTERM before
// it is killed.
const DefaultGrace = 10 * time.Second

// Config configures a Supervisor.
type Config struct {
	// Spawner starts worker processes. Required.
	Spawner Spawner

	// Logger receives lifecycle events. Default: logging.Nop().
	Logger logging.Logger

	// Grace bounds the SIGTERM to SIGKILL escalation.
	// Default: DefaultGrace
	Grace time.Duration

	// Retry governs spawn failures. Once its budget is spent the supervisor
	// waits its MaxDelay and starts a fresh round.
	// Default: 5 attempts, 100ms doubling up to 5s, with jitter.
	Retry *resilience.Retry
}

// Supervisor keeps exactly one worker process alive until its context ends.
type Supervisor struct {
	cfg     Config
	restart chan struct{}

	mu     sync.Mutex
	state  State
	pid    int
	spawns int
}

// New creates a supervisor in StateIdle.
func New(cfg Config) *Supervisor {
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}
	if cfg.Grace <= 0 {
		cfg.Grace = DefaultGrace
	}
	if cfg.Retry == nil {
		cfg.Retry = resilience.NewRetry(resilience.RetryConfig{
			MaxAttempts:  5,
			InitialDelay: 100 * time.Millisecond,
			MaxDelay:     5 * time.Second,
			Jitter:       true,
		})
	}
	return &Supervisor{
		cfg:     cfg,
		restart: make(chan struct{}, 1),
	}
}

// State reports whether a worker is currently running.
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// PID returns the running worker's process id, or 0 when idle.
func (s *Supervisor) PID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pid
}

// Spawns returns how many workers have been started.
func (s *Supervisor) Spawns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spawns
}

// Restart asks the run loop to stop the current worker and start a new one.
// Requests made while one is pending are coalesced. Safe to call from any
// goroutine.
func (s *Supervisor) Restart() {
	select {
	case s.restart <- struct{}{}:
	default:
	}
}

// Run supervises workers until ctx ends, then stops the current worker and
// returns nil. A worker that exits for any reason is replaced immediately.
func (s *Supervisor) Run(ctx context.Context) error {
	log := s.cfg.Logger
	for {
		if ctx.Err() != nil {
			return nil
		}
		child, err := s.spawn(ctx)
		if err != nil {
			return nil
		}
		s.setRunning(child.Pid())
		log.Info(ctx, "Worker started", logging.F("pid", child.Pid()))

		exited := make(chan error, 1)
		go func() { exited <- child.Wait() }()

		select {
		case err := <-exited:
			s.setIdle()
			code, sig := ExitStatus(err)
			log.Error(ctx, "Worker exited, restarting",
				logging.F("pid", child.Pid()),
				logging.F("exit_code", code),
				logging.F("signal", sig),
				logging.F("status", describe(err)))

		case <-s.restart:
			log.Info(ctx, "Restarting worker", logging.F("pid", child.Pid()))
			s.stop(ctx, child, exited)

		case <-ctx.Done():
			log.Info(context.WithoutCancel(ctx), "Stopping worker", logging.F("pid", child.Pid()))
			s.stop(ctx, child, exited)
			return nil
		}
	}
}

// spawn starts a worker, retrying until it succeeds or ctx ends.
func (s *Supervisor) spawn(ctx context.Context) (Child, error) {
	retry := s.cfg.Retry
	for {
		child, err := resilience.Do(ctx, retry, s.cfg.Spawner.Spawn)
		if err == nil {
			s.mu.Lock()
			s.spawns++
			s.mu.Unlock()
			return child, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		s.cfg.Logger.Critical(ctx, "Could not start worker", logging.F("error", err))
		if err := retry.Config().Sleep(ctx, retry.Config().MaxDelay); err != nil {
			return nil, err
		}
	}
}

// stop sends SIGTERM, escalates to SIGKILL after the grace period and
// waits for the worker to be reaped.
func (s *Supervisor) stop(ctx context.Context, child Child, exited <-chan error) {
	defer s.setIdle()
	log := s.cfg.Logger
	ctx = context.WithoutCancel(ctx)

	if err := child.Signal(syscall.SIGTERM); err != nil {
		log.Warn(ctx, "Could not signal worker", logging.F("pid", child.Pid()), logging.F("error", err))
	}

	timer := time.NewTimer(s.cfg.Grace)
	defer timer.Stop()

	select {
	case err := <-exited:
		log.Info(ctx, "Worker stopped", logging.F("pid", child.Pid()), logging.F("status", describe(err)))
		return
	case <-timer.C:
	}

	log.Warn(ctx, "Worker did not stop in time, killing",
		logging.F("pid", child.Pid()),
		logging.F("grace", s.cfg.Grace.String()))
	if err := child.Signal(syscall.SIGKILL); err != nil {
		log.Error(ctx, "Could not kill worker", logging.F("pid", child.Pid()), logging.F("error", err))
	}
	err := <-exited
	log.Info(ctx, "Worker stopped", logging.F("pid", child.Pid()), logging.F("status", describe(err)))
}

func (s *Supervisor) setRunning(pid int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateRunning
	s.pid = pid
}

func (s *Supervisor) setIdle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateIdle
	s.pid = 0
}
