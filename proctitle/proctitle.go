// Package proctitle sets the process name shown by ps and top.
package proctitle

import "errors"

// MaxLen is the longest name the kernel keeps, excluding the trailing NUL.
const MaxLen = 15

// ErrUnsupported is returned on platforms without a settable process name.
var ErrUnsupported = errors.New("proctitle: not supported on this platform")

func truncate(name string) string {
	if len(name) > MaxLen {
		return name[:MaxLen]
	}
	return name
}
