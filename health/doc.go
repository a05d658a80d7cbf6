// Package health runs the configured command checks and serves the verdict
// over HTTP.
//
// # Checks
//
// A check is a shell command plus the exit codes that count as success
// (config.Check). An Engine runs the checks in order through a Runner and
// stops at the first failure:
//
//	engine := health.NewEngine(cfg.Checks, health.ShellRunner{}, logger)
//	v := engine.Evaluate(ctx)
//	if v.Status == health.StatusUnhealthy {
//	    // v.Err() names the failing command and its exit code
//	}
//
// Nothing is cached; each call runs every check again.
//
// # HTTP Endpoint
//
// StatusHandler answers on "/" only:
//
//	200 All checks succeeded.
//	503 Check failed, please see log.
//
// HEAD returns the headers without a body. OPTIONS behaves exactly like GET.
// Everything else is 501.
package health
