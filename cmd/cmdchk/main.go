// Command cmdchk serves the result of local health-check commands over
// HTTP.
//
//	cmdchk supervise -c /etc/cmdchk.cfg -k '0,3:/etc/init.d/nginx status'
//
// supervise runs a supervisor that keeps one serve process alive; serve
// runs the status server directly.
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cmd := makeCommand()
	cmd.SetArgs(args)
	err := cmd.Execute()

	var ec exitCodeError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &ec):
		return ec.code
	default:
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
}

// exitCodeError carries a process exit code out of a subcommand.
type exitCodeError struct {
	code int
}

func (e exitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}
