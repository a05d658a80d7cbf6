package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric instrument names.
const (
	MetricTotal    = "check.exec.total"
	MetricFailures = "check.exec.failures"
	MetricDuration = "check.exec.duration_ms"
)

// Metrics records execution metrics for checks.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordExecution records one check execution.
	RecordExecution(ctx context.Context, meta CheckMeta, duration time.Duration, out Outcome, err error)
}

type metricsImpl struct {
	totalCount   metric.Int64Counter
	failureCount metric.Int64Counter
	durationHist metric.Float64Histogram
}

func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	totalCount, err := meter.Int64Counter(
		MetricTotal,
		metric.WithDescription("Total number of check executions"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	failureCount, err := meter.Int64Counter(
		MetricFailures,
		metric.WithDescription("Check executions that failed to start or exited with an unaccepted code"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		MetricDuration,
		metric.WithDescription("Check execution duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		totalCount:   totalCount,
		failureCount: failureCount,
		durationHist: durationHist,
	}, nil
}

func (m *metricsImpl) RecordExecution(ctx context.Context, meta CheckMeta, duration time.Duration, out Outcome, err error) {
	opt := metric.WithAttributes(
		attribute.String("check.id", meta.CheckID()),
		attribute.String("check.command", meta.Command),
	)

	m.totalCount.Add(ctx, 1, opt)
	if err != nil || !out.Accepted {
		m.failureCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

type noopMetrics struct{}

func (noopMetrics) RecordExecution(context.Context, CheckMeta, time.Duration, Outcome, error) {}
