package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/cmdchk/config"
	"github.com/jonwraymond/cmdchk/logging"
	"github.com/jonwraymond/cmdchk/proctitle"
	"github.com/jonwraymond/cmdchk/supervisor"
	"github.com/jonwraymond/cmdchk/worker"
)

const (
	defaultConfigFile  = "/etc/cmdchk.cfg"
	defaultLogLocation = "/var/log/cmdchk/cmdchk.log"
	wrapperTitle       = "cmdchk_wrapper"
)

type superviseArgs struct {
	pidFile string
	watch   bool
	grace   time.Duration
	logFile string
}

func superviseCommand(g *globalArgs) *cobra.Command {
	s := &superviseArgs{}

	cmd := &cobra.Command{
		Use:   "supervise",
		Short: "Keep a status server running",
		Long: `supervise starts "cmdchk serve" with the same flags and restarts it
whenever it exits. SIGTERM or SIGINT stop the server and then the
supervisor; SIGUSR1 restarts the server.

Without --config the server reads ` + defaultConfigFile + `, and it logs to
` + defaultLogLocation + ` unless told otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSupervise(cmd, g, s)
		},
	}

	f := cmd.Flags()
	f.StringVar(&s.pidFile, "pidfile", "", "write the supervisor pid to this file")
	f.BoolVar(&s.watch, "watch", false, "restart the server when a config file changes")
	f.DurationVar(&s.grace, "grace", supervisor.DefaultGrace, "time the server gets to stop before it is killed")
	f.StringVar(&s.logFile, "supervisor-log", "", "supervisor log file (default console)")
	return cmd
}

func runSupervise(cmd *cobra.Command, g *globalArgs, s *superviseArgs) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	logger := supervisorLogger(ctx, cmd, g, s)

	if err := proctitle.Set(wrapperTitle); err != nil && !errors.Is(err, proctitle.ErrUnsupported) {
		logger.Debug(ctx, "Could not set process title", logging.F("error", err))
	}

	args := workerArgs(cmd, g)
	logger.Info(ctx, "Supervisor started", logging.F("worker_args", args))

	sup := supervisor.New(supervisor.Config{
		Spawner: supervisor.ExecSpawner{
			Argv0: worker.ProcessTitle,
			Args:  args,
		},
		Logger: logger,
		Grace:  s.grace,
	})

	opts := supervisor.DaemonOptions{
		PIDFile: s.pidFile,
		Logger:  logger,
	}
	if s.watch {
		opts.WatchFiles = configFiles(g)
	}

	if err := supervisor.Daemon(ctx, sup, opts); err != nil {
		logger.Critical(context.WithoutCancel(ctx), "Supervisor failed", logging.F("error", err))
		return err
	}
	logger.Info(context.WithoutCancel(ctx), "Supervisor stopped")
	return nil
}

func supervisorLogger(ctx context.Context, cmd *cobra.Command, g *globalArgs, s *superviseArgs) logging.Logger {
	level := logging.LevelInfo
	if g.logLevel != "" {
		level = logging.ParseLevel(g.logLevel)
	}
	logger, _, err := logging.Setup(logging.Options{
		Location:  s.logFile,
		Level:     level,
		SyslogTag: wrapperTitle,
		Console:   cmd.ErrOrStderr(),
	})
	if err != nil {
		logger.Warn(ctx, "Could not open supervisor log", logging.F("error", err))
	}
	return logger
}

func configFiles(g *globalArgs) []string {
	if len(g.configFiles) == 0 {
		return []string{defaultConfigFile}
	}
	return g.configFiles
}

// workerArgs builds the serve command line: the user's shared flags, the
// config files (with the supervisor's default) and the defaults overrides
// (with the supervisor's log location).
func workerArgs(cmd *cobra.Command, g *globalArgs) []string {
	args := []string{"serve"}
	args = append(args, forwardFlags(cmd.Flags(), map[string]bool{
		"config":         true,
		"default":        true,
		"pidfile":        true,
		"watch":          true,
		"grace":          true,
		"supervisor-log": true,
	})...)

	for _, f := range configFiles(g) {
		args = append(args, "--config="+f)
	}

	defaults := defaultValues{}
	for _, kv := range g.defaults.GetSlice() {
		_ = defaults.Set(kv)
	}
	defaults.setDefault(config.KeyLogLocation, defaultLogLocation)
	for _, kv := range defaults.GetSlice() {
		args = append(args, "--default="+kv)
	}
	return args
}
