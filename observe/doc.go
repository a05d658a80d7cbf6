// Package observe provides telemetry for check executions.
//
// It is a pure instrumentation library: it runs nothing itself. The health
// engine wraps each command execution with a Middleware, which records one
// check.exec span, the check.exec.total and check.exec.failures counters and
// the check.exec.duration_ms histogram.
package observe
