package logging

import (
	"io"
	"os"
)

// SinkKind names the output a logger ended up writing to.
type SinkKind int

const (
	SinkConsole SinkKind = iota
	SinkFile
	SinkSyslog
)

func (k SinkKind) String() string {
	switch k {
	case SinkFile:
		return "file"
	case SinkSyslog:
		return "syslog"
	default:
		return "console"
	}
}

// Options configures Setup.
type Options struct {
	// Location is the log file path. Empty means console.
	Location string

	// Level is the minimum level written.
	Level Level

	// SyslogTag is the program tag used by the syslog fallback.
	// Default: "cmdchk"
	SyslogTag string

	// Console is the writer used for console output.
	// Default: os.Stderr
	Console io.Writer
}

// openSyslog is replaced in tests.
var openSyslog = newSyslogSink

// Setup builds the process logger.
//
// With no Location the logger writes to the console. Otherwise Location is
// opened for append and served by a rotating file sink. If that fails the
// logger falls back to syslog (or the console when syslog is unreachable)
// and the returned *FileError describes the original
// failure. The returned Logger is never nil.
func Setup(opts Options) (Logger, SinkKind, error) {
	if opts.SyslogTag == "" {
		opts.SyslogTag = "cmdchk"
	}
	if opts.Console == nil {
		opts.Console = os.Stderr
	}

	if opts.Location == "" {
		return NewWithWriter(opts.Level, opts.Console), SinkConsole, nil
	}

	if err := probeFile(opts.Location); err != nil {
		fallbackErr := &FileError{Path: opts.Location, Err: err}

		sink, serr := openSyslog(opts.SyslogTag)
		if serr != nil {
			return NewWithWriter(opts.Level, opts.Console), SinkConsole, fallbackErr
		}
		return New(opts.Level, sink), SinkSyslog, fallbackErr
	}

	return New(opts.Level, newFileSink(opts.Location)), SinkFile, nil
}

// probeFile checks that path can be opened for append. It does not create
// missing directories.
func probeFile(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	return f.Close()
}
