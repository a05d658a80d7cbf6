// Package server runs the status endpoint's HTTP listener.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/netutil"
)

const (
	// ReadHeaderTimeout bounds how long a client may take to send request
	// headers. Only one connection is served at a time, so a stalled client
	// blocks every other probe until it expires.
	ReadHeaderTimeout = 10 * time.Second

	shutdownTimeout = time.Second
)

// Listen binds a TCP listener on every interface at port.
func Listen(port int) (net.Listener, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("listen on port %d: %w", port, err)
	}
	return ln, nil
}

// Server serves one connection at a time without keep-alives.
type Server struct {
	srv *http.Server
}

// New creates a Server for handler.
func New(handler http.Handler) *Server {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: ReadHeaderTimeout,
	}
	srv.SetKeepAlivesEnabled(false)
	return &Server{srv: srv}
}

// Serve accepts connections on ln until ctx is cancelled or the listener
// fails. It returns nil after a shutdown triggered by ctx.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	done := make(chan struct{})
	defer close(done)
	go s.closeOnContext(ctx, done)

	err := s.srv.Serve(netutil.LimitListener(ln, 1))
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) closeOnContext(ctx context.Context, done <-chan struct{}) {
	select {
	case <-done:
		return
	case <-ctx.Done():
	}

	timeout, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = s.srv.Shutdown(timeout)
}
