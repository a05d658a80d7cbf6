package health

import "errors"

var (
	// ErrCheckFailed indicates a check exited with an unaccepted code or
	// could not be started.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckStart indicates the shell for a check could not be started.
	ErrCheckStart = errors.New("health: check could not be started")
)
