package main

import (
	"github.com/spf13/cobra"

	"github.com/jonwraymond/cmdchk/config"
)

// globalArgs holds the flags shared by every subcommand.
type globalArgs struct {
	user        string
	port        int
	logLocation string
	logLevel    string
	configFiles []string
	checks      checkList
	defaults    defaultValues
}

func makeCommand() *cobra.Command {
	g := &globalArgs{}

	root := &cobra.Command{
		Use:   "cmdchk [command]",
		Short: "Serve the result of local check commands over HTTP.",
		Long: `cmdchk runs a list of local commands on every HTTP request and answers
200 when all of them exit with an accepted code, 503 otherwise.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&g.user, "user", "u", "", "user to run as when started as root")
	pf.IntVarP(&g.port, "port", "p", 0, "port to listen on")
	pf.StringVarP(&g.logLocation, "log", "l", "", "log file (default console)")
	pf.StringVar(&g.logLevel, "log-level", "", "minimum log level: debug, info, warn, error, critical")
	pf.StringSliceVarP(&g.configFiles, "config", "c", nil, "config file, repeatable; the first file to set a key wins")
	pf.VarP(&g.checks, "check", "k", "check command as CMD or CODES:CMD, repeatable (e.g. -k '0,5:/bin/somecommand')")
	pf.Var(&g.defaults, "default", "override a built-in default as key=value")
	_ = pf.MarkHidden("default")

	root.AddCommand(
		serveCommand(g),
		superviseCommand(g),
		versionCommand(),
	)
	return root
}

// settings converts the flags into resolver input.
func (g *globalArgs) settings() config.Settings {
	return config.Settings{
		Explicit: config.Values{
			config.KeyUser:        g.user,
			config.KeyPort:        g.port,
			config.KeyLogLocation: g.logLocation,
			config.KeyLogLevel:    g.logLevel,
			config.KeyChecks:      g.checks.list(),
		},
		ConfigFiles: g.configFiles,
		Defaults:    g.defaults.values(),
	}
}
