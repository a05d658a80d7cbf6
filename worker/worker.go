// Package worker runs the status server process: resolve configuration,
// bind, drop privileges, set up logging, then serve.
package worker

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonwraymond/cmdchk/config"
	"github.com/jonwraymond/cmdchk/health"
	"github.com/jonwraymond/cmdchk/logging"
	"github.com/jonwraymond/cmdchk/observe"
	"github.com/jonwraymond/cmdchk/privilege"
	"github.com/jonwraymond/cmdchk/proctitle"
	"github.com/jonwraymond/cmdchk/resilience"
	"github.com/jonwraymond/cmdchk/server"
	"github.com/jonwraymond/cmdchk/startup"
)

// Exit codes.
const (
	ExitOK     = 0
	ExitServe  = 1
	ExitConfig = 78 // EX_CONFIG
)

const (
	// DefaultCooldown is how long a worker with a fatal configuration waits
	// before exiting, which bounds the supervisor's respawn rate.
	DefaultCooldown = 5 * time.Second

	// ProcessTitle is the worker's process name.
	ProcessTitle = "cmdchk_server"

	serviceName     = "cmdchk"
	shutdownTimeout = 5 * time.Second
)

// Options configures Run. Zero fields use production defaults.
type Options struct {
	Settings config.Settings

	// System is the credential API. Default: privilege.OS{}.
	System privilege.System

	// Runner executes checks. Default: health.ShellRunner{}.
	Runner health.Runner

	// Listen binds the status port. Default: server.Listen.
	Listen func(port int) (net.Listener, error)

	// Sleep waits out the cooldown. Default: resilience.SleepContext.
	Sleep func(ctx context.Context, d time.Duration) error

	// Cooldown before a fatal exit. Default: DefaultCooldown.
	Cooldown time.Duration

	// Console receives console logging. Default: os.Stderr.
	Console io.Writer

	// Version is reported as the telemetry service version.
	Version string
}

func (o *Options) setDefaults() {
	if o.System == nil {
		o.System = privilege.OS{}
	}
	if o.Runner == nil {
		o.Runner = health.ShellRunner{}
	}
	if o.Listen == nil {
		o.Listen = server.Listen
	}
	if o.Sleep == nil {
		o.Sleep = resilience.SleepContext
	}
	if o.Cooldown <= 0 {
		o.Cooldown = DefaultCooldown
	}
	if o.Console == nil {
		o.Console = os.Stderr
	}
}

// Run starts the worker and blocks until the server stops. It returns the
// process exit code: ExitConfig after the cooldown when configuration,
// binding or the privilege drop failed, ExitServe when serving failed and
// ExitOK when ctx ended.
func Run(ctx context.Context, opts Options) int {
	opts.setDefaults()

	res := config.Resolve(opts.Settings)
	msgs, cfg := res.Messages, res.Config

	var ln net.Listener
	if cfg != nil {
		var err error
		if ln, err = opts.Listen(cfg.Port); err != nil {
			msgs.Criticalf("Could not bind port %d: %v", cfg.Port, err)
		}
	}
	if cfg != nil && ln != nil {
		_ = privilege.Drop(opts.System, cfg.User, msgs)
	}
	fatal := msgs.HasCritical()

	logger := setupLogging(cfg, opts.Console, msgs)
	msgs.Flush(ctx, logger)

	if fatal {
		if ln != nil {
			_ = ln.Close()
		}
		logger.Critical(ctx, "Fatal configuration error, not starting server",
			logging.F("cooldown", opts.Cooldown.String()))
		_ = opts.Sleep(ctx, opts.Cooldown)
		return ExitConfig
	}

	signal.Reset(syscall.SIGTERM)
	if err := proctitle.Set(ProcessTitle); err != nil {
		logger.Debug(ctx, "Could not set process title", logging.F("error", err.Error()))
	}

	mw, shutdown := setupTelemetry(ctx, cfg, opts.Version, logger)
	defer shutdown()

	engine := health.NewEngine(cfg.Checks, opts.Runner, logger, health.WithMiddleware(mw))
	logger.Info(ctx, "Serving",
		logging.F("addr", ln.Addr().String()),
		logging.F("checks", len(cfg.Checks)),
	)

	if err := server.New(health.StatusHandler(engine, logger)).Serve(ctx, ln); err != nil {
		logger.Critical(ctx, "Server failed", logging.F("error", err.Error()))
		return ExitServe
	}
	return ExitOK
}

// setupLogging builds the logger from cfg, or a console logger when cfg is
// nil. A log file that cannot be opened is recorded in msgs but is not
// fatal.
func setupLogging(cfg *config.Config, console io.Writer, msgs *startup.Buffer) logging.Logger {
	opts := logging.Options{Level: logging.LevelDebug, Console: console}
	if cfg != nil {
		opts.Location = cfg.LogLocation
		opts.Level = logging.ParseLevel(cfg.LogLevel)
	}

	logger, _, err := logging.Setup(opts)
	if err != nil {
		var fe *logging.FileError
		if errors.As(err, &fe) {
			msgs.Criticalf("Could not open logfile %s: %v", fe.Path, fe.Err)
		} else {
			msgs.Criticalf("Could not set up logging: %v", err)
		}
	}
	return logger
}

// setupTelemetry builds the check middleware. Telemetry problems are logged
// and leave checks uninstrumented.
func setupTelemetry(ctx context.Context, cfg *config.Config, version string, logger logging.Logger) (*observe.Middleware, func()) {
	noop := func() {}
	obs, err := observe.NewObserver(ctx, observe.ConfigFor(serviceName, version,
		cfg.Telemetry.TracingExporter, cfg.Telemetry.MetricsExporter))
	if err != nil {
		logger.Error(ctx, "Telemetry disabled", logging.F("error", err.Error()))
		return observe.NopMiddleware(), noop
	}

	shutdown := func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := obs.Shutdown(sctx); err != nil {
			logger.Error(ctx, "Telemetry shutdown failed", logging.F("error", err.Error()))
		}
	}

	mw, err := observe.MiddlewareFromObserver(obs, logger)
	if err != nil {
		logger.Error(ctx, "Telemetry disabled", logging.F("error", err.Error()))
		shutdown()
		return observe.NopMiddleware(), noop
	}
	return mw, shutdown
}
