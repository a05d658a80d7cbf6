package logging

import "errors"

var (
	// ErrLogFile indicates the configured log file could not be opened.
	ErrLogFile = errors.New("logging: could not open logfile")

	// ErrSyslogUnavailable indicates no syslog daemon could be reached.
	ErrSyslogUnavailable = errors.New("logging: syslog unavailable")
)

// FileError reports a log file that could not be opened. It matches both
// ErrLogFile and the underlying cause with errors.Is.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return "logging: could not open logfile " + e.Path + ": " + e.Err.Error()
}

func (e *FileError) Unwrap() []error {
	return []error{ErrLogFile, e.Err}
}
