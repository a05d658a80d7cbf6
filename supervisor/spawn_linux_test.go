//go:build linux

package supervisor

import (
	"bytes"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecSpawner_Argv0(t *testing.T) {
	sleep := lookPath(t, "sleep")
	sup := New(Config{Spawner: ExecSpawner{Path: sleep, Argv0: "cmdchk_server", Args: []string{"60"}}})
	cancel, done := runSupervisor(t, sup)

	require.Eventually(t, func() bool { return sup.PID() != 0 }, 5*time.Second, 5*time.Millisecond)
	cmdline, err := os.ReadFile(fmt.Sprintf("/proc/%d/cmdline", sup.PID()))
	require.NoError(t, err)
	args := bytes.Split(bytes.TrimRight(cmdline, "\x00"), []byte{0})
	require.Len(t, args, 2)
	assert.Equal(t, "cmdchk_server", string(args[0]))
	assert.Equal(t, "60", string(args[1]))

	cancel()
	require.NoError(t, waitDone(t, done))
}
