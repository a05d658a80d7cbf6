//go:build linux

package proctitle

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// Set renames the calling OS thread, which is the name ps reports for the
// process when called from the main goroutine at startup. Names longer than
// MaxLen are truncated.
func Set(name string) error {
	b := append([]byte(truncate(name)), 0)
	return unix.Prctl(unix.PR_SET_NAME, uintptr(unsafe.Pointer(&b[0])), 0, 0, 0)
}

// Get returns the calling OS thread's name.
func Get() (string, error) {
	var b [MaxLen + 1]byte
	if err := unix.Prctl(unix.PR_GET_NAME, uintptr(unsafe.Pointer(&b[0])), 0, 0, 0); err != nil {
		return "", err
	}
	return unix.ByteSliceToString(b[:]), nil
}
