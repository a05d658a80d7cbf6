package startup

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonwraymond/cmdchk/logging"
)

func TestBuffer_HasCritical(t *testing.T) {
	var b Buffer
	assert.False(t, b.HasCritical())

	b.Debugf("Server started.")
	b.Infof("hello %s", "world")
	assert.False(t, b.HasCritical())

	b.Criticalf("Bad default value %s", "foo")
	assert.True(t, b.HasCritical())

	msgs := b.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, Message{Text: "hello world", Level: logging.LevelInfo}, msgs[1])
	assert.Equal(t, logging.LevelCritical, msgs[2].Level)
}

func TestBuffer_FlushPreservesOrderAndLevel(t *testing.T) {
	var out bytes.Buffer
	logger := logging.NewWithWriter(logging.LevelDebug, &out)

	var b Buffer
	b.Debugf("one")
	b.Criticalf("two")
	b.Debugf("three")
	b.Flush(context.Background(), logger)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)

	wantMsgs := []string{"one", "two", "three"}
	wantLevels := []string{"debug", "critical", "debug"}
	for i, line := range lines {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		assert.Equal(t, wantMsgs[i], entry["msg"])
		assert.Equal(t, wantLevels[i], entry["level"])
	}
}

func TestBuffer_FlushOnlyOnce(t *testing.T) {
	var out bytes.Buffer
	logger := logging.NewWithWriter(logging.LevelDebug, &out)

	var b Buffer
	b.Debugf("first")
	b.Flush(context.Background(), logger)
	b.Debugf("second")
	b.Flush(context.Background(), logger)

	assert.Equal(t, 1, strings.Count(out.String(), `"msg":"first"`))
	assert.Equal(t, 1, strings.Count(out.String(), `"msg":"second"`))
}

func TestBuffer_MessagesIsCopy(t *testing.T) {
	var b Buffer
	b.Debugf("original")
	msgs := b.Messages()
	msgs[0].Text = "mutated"
	assert.Equal(t, "original", b.Messages()[0].Text)
}
