package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warning", LevelWarn},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"critical", LevelCritical},
		{"bogus", LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
	assert.True(t, ValidLevel("Critical"))
	assert.False(t, ValidLevel("loud"))
}

func TestLogger_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(LevelWarn, &buf)
	ctx := context.Background()

	logger.Debug(ctx, "debug")
	logger.Info(ctx, "info")
	logger.Warn(ctx, "warn")
	logger.Critical(ctx, "critical")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "warn", entries[0]["level"])
	assert.Equal(t, "critical", entries[1]["level"])
	assert.Equal(t, "critical", entries[1]["msg"])
	assert.NotEmpty(t, entries[0]["timestamp"])
}

func TestLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(LevelDebug, &buf).With(
		F("component", "worker"),
		F("cause", fmt.Errorf("bind: %w", os.ErrPermission)),
	)

	logger.Info(context.Background(), "hello",
		F("output", []byte("some output\n")),
		F("token", "abc"),
		F("exit_code", 3),
		F("error", errors.New("exec: no such file")),
	)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "worker", e["component"])
	assert.Equal(t, "some output\n", e["output"])
	assert.Equal(t, "[REDACTED]", e["token"])
	assert.EqualValues(t, 3, e["exit_code"])
	assert.Equal(t, "exec: no such file", e["error"])
	assert.Equal(t, "bind: permission denied", e["cause"])
}

func TestLogger_WithDoesNotLeak(t *testing.T) {
	var buf bytes.Buffer
	base := NewWithWriter(LevelDebug, &buf)
	_ = base.With(F("child", true))

	base.Info(context.Background(), "plain")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	_, ok := entries[0]["child"]
	assert.False(t, ok)
}

func TestNop(t *testing.T) {
	logger := Nop()
	logger.Critical(context.Background(), "ignored")
	assert.NotNil(t, logger.With(F("a", 1)))
}
