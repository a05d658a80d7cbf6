//go:build !linux

package proctitle

// Set is unsupported outside Linux.
func Set(name string) error {
	_ = truncate(name)
	return ErrUnsupported
}

// Get is unsupported outside Linux.
func Get() (string, error) {
	return "", ErrUnsupported
}
