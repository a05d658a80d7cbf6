package health

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/jonwraymond/cmdchk/logging"
)

// Response bodies.
const (
	BodyHealthy        = "All checks succeeded.\r\n\r\n"
	BodyUnhealthy      = "Check failed, please see log.\r\n\r\n"
	BodyNotImplemented = "Not Implemented\r\n\r\n"
)

// StatusHandler returns the HTTP handler for the status endpoint.
//
// GET and OPTIONS on "/" evaluate the checks and answer 200 or 503 with a
// fixed body. HEAD sends the same headers without the body. Any other
// method or path gets 501 and runs nothing. Every request is logged at INFO.
func StatusHandler(eval Evaluator, logger logging.Logger) http.Handler {
	if logger == nil {
		logger = logging.Nop()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status, body := http.StatusNotImplemented, BodyNotImplemented

		switch {
		case r.URL.Path != "/":
		case r.Method == http.MethodGet, r.Method == http.MethodHead, r.Method == http.MethodOptions:
			// Checks run to completion even if the client goes away.
			if eval.Evaluate(context.WithoutCancel(r.Context())).Status == StatusHealthy {
				status, body = http.StatusOK, BodyHealthy
			} else {
				status, body = http.StatusServiceUnavailable, BodyUnhealthy
			}
		}

		h := w.Header()
		h.Set("Content-Type", "text/plain")
		h.Set("Connection", "close")
		h.Set("Content-Length", strconv.Itoa(len(body)))
		w.WriteHeader(status)
		if r.Method != http.MethodHead {
			_, _ = w.Write([]byte(body))
		}

		logger.Info(r.Context(), "Request",
			logging.F("method", r.Method),
			logging.F("path", r.URL.Path),
			logging.F("remote_addr", r.RemoteAddr),
			logging.F("timestamp", time.Now().UTC().Format(time.RFC3339)),
			logging.F("status", status),
		)
	})
}
