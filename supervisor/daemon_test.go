//go:build unix

package supervisor

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runDaemon(t *testing.T, sup *Supervisor, opts DaemonOptions) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Daemon(ctx, sup, opts) }()
	t.Cleanup(cancel)
	return cancel, done
}

func TestDaemon_PIDFileLifetime(t *testing.T) {
	pidfile := filepath.Join(t.TempDir(), "cmdchk.pid")
	sp := newFakeSpawner(0)
	sup := New(Config{Spawner: sp})
	cancel, done := runDaemon(t, sup, DaemonOptions{PIDFile: pidfile})

	waitStarted(t, sp.started)
	pid, err := ReadPIDFile(pidfile)
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)

	cancel()
	require.NoError(t, waitDone(t, done))
	_, err = os.Stat(pidfile)
	assert.True(t, os.IsNotExist(err))
}

func TestDaemon_PIDFileConflict(t *testing.T) {
	pidfile := filepath.Join(t.TempDir(), "cmdchk.pid")
	require.NoError(t, os.WriteFile(pidfile, []byte("1\n"), 0o644))

	sp := newFakeSpawner(0)
	err := Daemon(context.Background(), New(Config{Spawner: sp}), DaemonOptions{PIDFile: pidfile})
	assert.ErrorIs(t, err, ErrAlreadyRunning)
	assert.Zero(t, sp.Attempts())
}

func TestDaemon_RestartSignal(t *testing.T) {
	// Keep SIGUSR2 from terminating the test binary before Daemon
	// subscribes.
	guard := make(chan os.Signal, 1)
	signal.Notify(guard, syscall.SIGUSR2)
	defer signal.Stop(guard)

	sp := newFakeSpawner(0)
	sup := New(Config{Spawner: sp})
	cancel, done := runDaemon(t, sup, DaemonOptions{RestartSignals: []os.Signal{syscall.SIGUSR2}})

	waitStarted(t, sp.started)
	require.Eventually(t, func() bool {
		_ = syscall.Kill(os.Getpid(), syscall.SIGUSR2)
		return sup.Spawns() >= 2
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	require.NoError(t, waitDone(t, done))
}

func TestDaemon_RestartOnConfigChange(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "cmdchk.cfg")
	require.NoError(t, os.WriteFile(cfg, []byte("port = 9200\n"), 0o644))

	sp := newFakeSpawner(0)
	sup := New(Config{Spawner: sp})
	cancel, done := runDaemon(t, sup, DaemonOptions{WatchFiles: []string{cfg}})

	first := waitStarted(t, sp.started)
	require.Eventually(t, func() bool {
		_ = os.WriteFile(cfg, []byte("port = 9201\n"), 0o644)
		return sup.Spawns() >= 2
	}, 10*time.Second, 2*DefaultDebounce)
	assert.Contains(t, first.received(), syscall.SIGTERM)

	cancel()
	require.NoError(t, waitDone(t, done))
}
