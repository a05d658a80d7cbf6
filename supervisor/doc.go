// Package supervisor keeps one worker process alive.
//
// A Supervisor has two states. In StateIdle it spawns a worker, retrying
// exec failures with backoff; in StateRunning it waits for the worker to
// exit and respawns it at once. When its context ends it sends the worker
// SIGTERM, escalates to SIGKILL after the grace period, reaps it and
// returns. Workers run in their own process group and, on Linux, die with
// the supervisor.
//
// Daemon adds the process plumbing: a pidfile, SIGUSR1 restarts and
// restarts on config file changes.
package supervisor
