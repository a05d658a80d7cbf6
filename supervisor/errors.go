package supervisor

import "errors"

var (
	// ErrSpawn indicates the worker process could not be started.
	ErrSpawn = errors.New("supervisor: could not start worker")

	// ErrAlreadyRunning indicates the pidfile names a live process.
	ErrAlreadyRunning = errors.New("supervisor: already running")
)

// SpawnError reports a failed worker start. It matches ErrSpawn and the
// underlying cause with errors.Is.
type SpawnError struct {
	Path string
	Err  error
}

func (e *SpawnError) Error() string {
	return "supervisor: could not start worker " + e.Path + ": " + e.Err.Error()
}

func (e *SpawnError) Unwrap() []error {
	return []error{ErrSpawn, e.Err}
}
