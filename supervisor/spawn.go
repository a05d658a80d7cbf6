//go:build unix

package supervisor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"
)

// Child is a started worker process.
type Child interface {
	Pid() int
	// Signal delivers sig to the child and everything it started.
	Signal(sig syscall.Signal) error
	// Wait blocks until the child exits. It is called exactly once.
	Wait() error
}

// Spawner starts worker processes.
type Spawner interface {
	Spawn(ctx context.Context) (Child, error)
}

// SpawnerFunc is an adapter to allow ordinary functions to be used as
// Spawners.
type SpawnerFunc func(ctx context.Context) (Child, error)

// Spawn calls f(ctx).
func (f SpawnerFunc) Spawn(ctx context.Context) (Child, error) {
	return f(ctx)
}

// ExecSpawner starts Path as a child process in its own process group.
type ExecSpawner struct {
	// Path is the executable. Default: os.Executable().
	Path string

	// Argv0 is the name the child sees as argv[0]. Default: Path.
	Argv0 string

	// Args follow argv[0].
	Args []string

	// Env is the child environment. Default: the supervisor's.
	Env []string

	// Stdout and Stderr default to the supervisor's.
	Stdout io.Writer
	Stderr io.Writer
}

// Spawn starts the child. The context is not attached to the process;
// stopping it is the supervisor's job.
func (s ExecSpawner) Spawn(_ context.Context) (Child, error) {
	path := s.Path
	if path == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, &SpawnError{Path: "<self>", Err: err}
		}
		path = exe
	}
	argv0 := s.Argv0
	if argv0 == "" {
		argv0 = path
	}

	cmd := &exec.Cmd{
		Path:        path,
		Args:        append([]string{argv0}, s.Args...),
		Env:         s.Env,
		Stdout:      s.Stdout,
		Stderr:      s.Stderr,
		SysProcAttr: sysProcAttr(),
	}
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Path: path, Err: err}
	}
	return &execChild{cmd: cmd}, nil
}

type execChild struct {
	cmd *exec.Cmd
}

func (c *execChild) Pid() int { return c.cmd.Process.Pid }

func (c *execChild) Signal(sig syscall.Signal) error {
	err := syscall.Kill(-c.cmd.Process.Pid, sig)
	if errors.Is(err, syscall.ESRCH) {
		return nil
	}
	return err
}

func (c *execChild) Wait() error { return c.cmd.Wait() }

// ExitStatus describes how a child ended: its exit code, or -1 and the
// signal name when it was killed.
func ExitStatus(err error) (code int, signal string) {
	if err == nil {
		return 0, ""
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return -1, ""
	}
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return -1, ws.Signal().String()
	}
	return exitErr.ExitCode(), ""
}

func describe(err error) string {
	code, sig := ExitStatus(err)
	if sig != "" {
		return "killed by " + sig
	}
	return fmt.Sprintf("exit status %d", code)
}
