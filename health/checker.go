package health

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/jonwraymond/cmdchk/config"
)

// Status represents the overall health reported to clients.
type Status int

const (
	// StatusHealthy indicates every check exited with an accepted code.
	StatusHealthy Status = iota
	// StatusUnhealthy indicates at least one check failed.
	StatusUnhealthy
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusUnhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

// Result is the outcome of running one check.
type Result struct {
	// Check is the configured check that ran.
	Check config.Check

	// ExitCode is the command's exit status, or -1 when it never started
	// or was killed by a signal.
	ExitCode int

	// Output is the combined stdout and stderr of the command.
	Output []byte

	// Duration is how long the command took.
	Duration time.Duration

	// Err is set when the command could not be started.
	Err error
}

// Passed reports whether the check started and exited with an accepted code.
func (r Result) Passed() bool {
	return r.Err == nil && r.Check.Accepts(r.ExitCode)
}

// Runner executes a shell command line.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: cancellation must stop the command.
// - Errors: a non-nil error means the command could not be started; a
// command that ran and exited non-zero is not an error.
type Runner interface {
	Run(ctx context.Context, command string) (exitCode int, output []byte, err error)
}

// RunnerFunc is an adapter to allow ordinary functions to be used as Runners.
type RunnerFunc func(ctx context.Context, command string) (int, []byte, error)

// Run calls f(ctx, command).
func (f RunnerFunc) Run(ctx context.Context, command string) (int, []byte, error) {
	return f(ctx, command)
}

// DefaultShell is the shell used by ShellRunner when Shell is empty.
const DefaultShell = "/bin/sh"

const waitDelay = 500 * time.Millisecond

// ShellRunner runs commands through "<Shell> -c", capturing combined output.
type ShellRunner struct {
	Shell string
}

// Run executes command and waits for it.
func (r ShellRunner) Run(ctx context.Context, command string) (int, []byte, error) {
	shell := r.Shell
	if shell == "" {
		shell = DefaultShell
	}

	cmd := exec.CommandContext(ctx, shell, "-c", command)
	// Grandchildren may hold the output pipe open after a cancelled shell
	// is killed.
	cmd.WaitDelay = waitDelay
	out, err := cmd.CombinedOutput()
	if err == nil {
		return 0, out, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), out, nil
	}
	if errors.Is(err, exec.ErrWaitDelay) && cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode(), out, nil
	}
	return -1, out, fmt.Errorf("%w: %v", ErrCheckStart, err)
}
