package observe

import (
	"context"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// SpanName is the name of the span wrapping one check execution.
const SpanName = "check.exec"

// CheckMeta describes one configured check for telemetry purposes.
type CheckMeta struct {
	Index    int    // Position in the configured check list
	Command  string // Shell command line (required)
	Accepted []int  // Accepted exit codes; empty means {0}
}

// Outcome is the result of one check execution.
type Outcome struct {
	ExitCode int
	Accepted bool
	Output   []byte
}

// CheckID returns a stable identifier for the check.
func (m CheckMeta) CheckID() string {
	return "check." + strconv.Itoa(m.Index)
}

// Tracer wraps OpenTelemetry tracing with check-specific span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for a check execution.
	StartSpan(ctx context.Context, meta CheckMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording the outcome and any error.
	EndSpan(span trace.Span, out Outcome, err error)
}

type tracerImpl struct {
	tracer trace.Tracer
}

func newTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with check metadata as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, meta CheckMeta) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("check.id", meta.CheckID()),
		attribute.Int("check.index", meta.Index),
		attribute.String("check.command", meta.Command),
		attribute.Bool("check.failed", false),
	}
	if len(meta.Accepted) > 0 {
		attrs = append(attrs, attribute.IntSlice("check.accepted", meta.Accepted))
	}

	return t.tracer.Start(ctx, SpanName,
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpan ends the span. A start error or an unaccepted exit code marks the
// span as failed.
func (t *tracerImpl) EndSpan(span trace.Span, out Outcome, err error) {
	span.SetAttributes(attribute.Int("check.exit_code", out.ExitCode))
	switch {
	case err != nil:
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("check.failed", true))
		span.RecordError(err)
	case !out.Accepted:
		span.SetStatus(codes.Error, "exit code "+strconv.Itoa(out.ExitCode)+" not accepted")
		span.SetAttributes(attribute.Bool("check.failed", true))
	default:
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

type noopTracer struct {
	noop trace.Tracer
}

func newNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, _ CheckMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, SpanName)
}

func (t *noopTracer) EndSpan(span trace.Span, _ Outcome, _ error) {
	span.End()
}
