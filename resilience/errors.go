package resilience

import "errors"

// ErrMaxRetriesExceeded is returned when max retry attempts are exhausted.
var ErrMaxRetriesExceeded = errors.New("resilience: max retries exceeded")
