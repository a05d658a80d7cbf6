package main

import (
	"github.com/spf13/cobra"

	"github.com/jonwraymond/cmdchk/worker"
)

func serveCommand(g *globalArgs) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the status server in the foreground",
		Long: `serve resolves the configuration, binds the port, drops privileges and
answers status requests until it is killed. A fatal configuration makes it
exit with status 78 after a short cooldown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			code := worker.Run(cmd.Context(), worker.Options{
				Settings: g.settings(),
				Console:  cmd.ErrOrStderr(),
				Version:  version,
			})
			if code != worker.ExitOK {
				return exitCodeError{code: code}
			}
			return nil
		},
	}
}
