// Package logging provides the structured logger shared by the worker and
// the supervisor.
//
// Entries are written as one JSON object per line to a Sink. Setup chooses
// the sink from a configured location:
//
//   - no location: the console (stderr)
//   - a writable file: a rotating file, rotated daily and by size
//   - an unwritable file: the local syslog daemon, falling back to the console
//
// Loggers are constructed explicitly and passed to the components that need
// them; the package keeps no global logger.
package logging
