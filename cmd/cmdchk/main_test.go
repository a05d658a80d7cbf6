//go:build unix

package main

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runMainEnv makes the test binary behave as cmdchk itself, so that the
// supervisor can re-exec it as the worker.
const runMainEnv = "CMDCHK_RUN_MAIN"

func TestMain(m *testing.M) {
	if os.Getenv(runMainEnv) == "1" {
		os.Exit(run(os.Args[1:]))
	}
	os.Exit(m.Run())
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func readPID(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	pid, _ := strconv.Atoi(strings.TrimSpace(string(data)))
	return pid
}

func TestSupervise_RespawnedWorkerServesSamePort(t *testing.T) {
	if testing.Short() {
		t.Skip("starts real processes")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skipf("sh not available: %v", err)
	}

	dir := t.TempDir()
	port := freePort(t)
	workerPID := filepath.Join(dir, "worker.pid")
	url := fmt.Sprintf("http://127.0.0.1:%d/", port)

	out, err := os.Create(filepath.Join(dir, "supervisor.out"))
	require.NoError(t, err)
	defer out.Close()

	me, err := user.Current()
	require.NoError(t, err)

	sup := exec.Command(os.Args[0], "supervise",
		// Stay the current user so the check can write into dir.
		"-u", me.Username,
		"-p", strconv.Itoa(port),
		"-c", filepath.Join(dir, "missing.cfg"),
		"-l", filepath.Join(dir, "worker.log"),
		// The check's parent is the worker.
		"-k", "echo $PPID > "+workerPID,
		"--grace", "2s",
	)
	sup.Env = append(os.Environ(), runMainEnv+"=1")
	sup.Stdout, sup.Stderr = out, out
	require.NoError(t, sup.Start())
	defer func() { _ = sup.Process.Kill() }()

	dump := func() string {
		data, _ := os.ReadFile(out.Name())
		return string(data)
	}

	client := &http.Client{Timeout: 2 * time.Second}
	healthy := func() bool {
		resp, err := client.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}

	require.Eventually(t, func() bool { return healthy() && readPID(workerPID) != 0 },
		15*time.Second, 50*time.Millisecond, "worker never served: %s", dump())
	first := readPID(workerPID)

	require.NoError(t, syscall.Kill(first, syscall.SIGKILL))

	require.Eventually(t, func() bool {
		pid := readPID(workerPID)
		return healthy() && pid != 0 && pid != first
	}, 15*time.Second, 50*time.Millisecond, "no respawned worker on port %d: %s", port, dump())
	second := readPID(workerPID)

	require.NoError(t, sup.Process.Signal(syscall.SIGTERM))
	done := make(chan error, 1)
	go func() { done <- sup.Wait() }()
	select {
	case err := <-done:
		assert.NoError(t, err, dump())
	case <-time.After(15 * time.Second):
		t.Fatalf("supervisor did not exit: %s", dump())
	}

	assert.True(t, errors.Is(syscall.Kill(second, 0), syscall.ESRCH), "worker %d outlived the supervisor", second)
}
