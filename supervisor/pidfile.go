//go:build unix

package supervisor

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/google/renameio/v2"
	"golang.org/x/sys/unix"
)

// WritePIDFile records pid at path. The file is replaced atomically so
// readers never see a partial write. If path already names another live
// process the call fails with ErrAlreadyRunning.
func WritePIDFile(path string, pid int) error {
	old, err := ReadPIDFile(path)
	switch {
	case err == nil && old != pid && alive(old):
		return fmt.Errorf("%w: pid %d in %s", ErrAlreadyRunning, old, path)
	case err != nil && !errors.Is(err, fs.ErrNotExist) && !errors.Is(err, strconv.ErrSyntax):
		return err
	}

	data := []byte(strconv.Itoa(pid) + "\n")
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("supervisor: write pidfile: %w", err)
	}
	return nil
}

// ReadPIDFile returns the pid stored at path.
func ReadPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("supervisor: pidfile %s: %w", path, err)
	}
	return pid, nil
}

// RemovePIDFile deletes path. A missing file is not an error.
func RemovePIDFile(path string) error {
	err := os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}
