// Package startup buffers log-worthy events recorded before the process
// logger exists and replays them once it does.
package startup

import (
	"context"
	"fmt"

	"github.com/jonwraymond/cmdchk/logging"
)

// Message is one buffered event.
type Message struct {
	Text  string
	Level logging.Level
}

// Buffer is an ordered list of startup messages. The zero value is ready to
// use. A Buffer is not safe for concurrent use; it belongs to the goroutine
// running startup.
type Buffer struct {
	messages []Message
	flushed  int
}

// Add appends a message at level.
func (b *Buffer) Add(level logging.Level, text string) {
	b.messages = append(b.messages, Message{Text: text, Level: level})
}

// Debugf appends a DEBUG message.
func (b *Buffer) Debugf(format string, args ...any) {
	b.Add(logging.LevelDebug, fmt.Sprintf(format, args...))
}

// Infof appends an INFO message.
func (b *Buffer) Infof(format string, args ...any) {
	b.Add(logging.LevelInfo, fmt.Sprintf(format, args...))
}

// Criticalf appends a CRITICAL message.
func (b *Buffer) Criticalf(format string, args ...any) {
	b.Add(logging.LevelCritical, fmt.Sprintf(format, args...))
}

// Messages returns a copy of all recorded messages in order.
func (b *Buffer) Messages() []Message {
	out := make([]Message, len(b.messages))
	copy(out, b.messages)
	return out
}

// HasCritical reports whether any CRITICAL message was recorded.
func (b *Buffer) HasCritical() bool {
	for _, m := range b.messages {
		if m.Level >= logging.LevelCritical {
			return true
		}
	}
	return false
}

// Flush writes every message not yet flushed to logger, in recorded order
// and at its recorded level. Messages added after a Flush are written by
// the next Flush.
func (b *Buffer) Flush(ctx context.Context, logger logging.Logger) {
	for _, m := range b.messages[b.flushed:] {
		logger.Log(ctx, m.Level, m.Text)
	}
	b.flushed = len(b.messages)
}
