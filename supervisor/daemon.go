//go:build unix

package supervisor

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/cmdchk/logging"
)

// DaemonOptions holds the process-level extras around a Supervisor.
type DaemonOptions struct {
	// PIDFile, when set, receives the supervisor's pid for the lifetime of
	// Daemon.
	PIDFile string

	// WatchFiles restart the worker when they change.
	WatchFiles []string

	// RestartSignals restart the worker on delivery.
	// Default: SIGUSR1
	RestartSignals []os.Signal

	Logger logging.Logger
}

// Daemon runs sup together with its pidfile, restart signals and config
// watcher until ctx ends. Only a pidfile failure is returned as an error;
// watch setup problems are logged and supervision continues without it.
func Daemon(ctx context.Context, sup *Supervisor, opts DaemonOptions) error {
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	if len(opts.RestartSignals) == 0 {
		opts.RestartSignals = []os.Signal{syscall.SIGUSR1}
	}

	if opts.PIDFile != "" {
		if err := WritePIDFile(opts.PIDFile, os.Getpid()); err != nil {
			return err
		}
		defer func() {
			if err := RemovePIDFile(opts.PIDFile); err != nil {
				log.Warn(context.WithoutCancel(ctx), "Could not remove pidfile",
					logging.F("path", opts.PIDFile), logging.F("error", err))
			}
		}()
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return sup.Run(gctx) })

	g.Go(func() error {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, opts.RestartSignals...)
		defer signal.Stop(sigs)
		for {
			select {
			case <-gctx.Done():
				return nil
			case sig := <-sigs:
				log.Info(gctx, "Restart requested", logging.F("signal", sig.String()))
				sup.Restart()
			}
		}
	})

	if len(opts.WatchFiles) > 0 {
		w, err := NewWatcher(opts.WatchFiles, 0, log)
		if err != nil {
			log.Warn(ctx, "Config watching disabled", logging.F("error", err))
		} else {
			g.Go(func() error { return w.Run(gctx, sup.Restart) })
		}
	}

	return g.Wait()
}
