package privilege

import "errors"

var (
	// ErrUnknownUser indicates the configured user name does not resolve.
	ErrUnknownUser = errors.New("privilege: unknown user")

	// ErrDropFailed indicates a credential change was refused by the OS.
	ErrDropFailed = errors.New("privilege: drop failed")
)
