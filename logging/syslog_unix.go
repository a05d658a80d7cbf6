//go:build !windows && !plan9

package logging

import (
	"log/syslog"
	"strings"
)

// syslogSink forwards lines to the local syslog daemon under the DAEMON
// facility, mapping levels to syslog severities.
type syslogSink struct {
	w *syslog.Writer
}

func newSyslogSink(tag string) (Sink, error) {
	w, err := syslog.New(syslog.LOG_DAEMON|syslog.LOG_INFO, tag)
	if err != nil {
		return nil, err
	}
	return &syslogSink{w: w}, nil
}

func (s *syslogSink) Write(level Level, line []byte) error {
	msg := strings.TrimRight(string(line), "\n")
	switch level {
	case LevelDebug:
		return s.w.Debug(msg)
	case LevelInfo:
		return s.w.Info(msg)
	case LevelWarn:
		return s.w.Warning(msg)
	case LevelError:
		return s.w.Err(msg)
	default:
		return s.w.Crit(msg)
	}
}

func (s *syslogSink) Close() error {
	return s.w.Close()
}
