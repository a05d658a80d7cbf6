package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/jonwraymond/cmdchk/logging"
)

func TestMiddleware_RecordsExecution(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	metrics, reader := newTestMetrics(t)

	var logBuf bytes.Buffer
	mw := NewMiddleware(newTracer(tp.Tracer("test")), metrics, logging.NewWithWriter(logging.LevelDebug, &logBuf))

	want := Outcome{ExitCode: 3, Accepted: true, Output: []byte("ok\n")}
	wrapped := mw.Wrap(func(ctx context.Context, check CheckMeta) (Outcome, error) {
		return want, nil
	})

	got, err := wrapped(context.Background(), CheckMeta{Index: 0, Command: "exit 3", Accepted: []int{3}})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if got.ExitCode != want.ExitCode || !got.Accepted || string(got.Output) != "ok\n" {
		t.Errorf("outcome = %+v, want %+v", got, want)
	}

	if n := len(recorder.Ended()); n != 1 {
		t.Fatalf("expected 1 span, got %d", n)
	}

	rm := collect(t, reader)
	if total := counterTotal(t, rm, MetricTotal); total != 1 {
		t.Errorf("%s = %d, want 1", MetricTotal, total)
	}
	if failures := counterTotal(t, rm, MetricFailures); failures != 0 {
		t.Errorf("%s = %d, want 0", MetricFailures, failures)
	}

	var entry map[string]any
	if err := json.Unmarshal(logBuf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, logBuf.String())
	}
	if entry["msg"] != "check executed" {
		t.Errorf("msg = %v, want %q", entry["msg"], "check executed")
	}
	if entry["command"] != "exit 3" {
		t.Errorf("command = %v, want %q", entry["command"], "exit 3")
	}
}

func TestMiddleware_PropagatesError(t *testing.T) {
	metrics, reader := newTestMetrics(t)
	mw := NewMiddleware(newNoopTracer(), metrics, nil)

	startErr := errors.New("fork/exec /bin/sh: no such file or directory")
	wrapped := mw.Wrap(func(ctx context.Context, check CheckMeta) (Outcome, error) {
		return Outcome{ExitCode: -1}, startErr
	})

	out, err := wrapped(context.Background(), CheckMeta{Command: "true"})
	if err != startErr {
		t.Errorf("expected error %v, got %v", startErr, err)
	}
	if out.ExitCode != -1 {
		t.Errorf("ExitCode = %d, want -1", out.ExitCode)
	}
	if failures := counterTotal(t, collect(t, reader), MetricFailures); failures != 1 {
		t.Errorf("%s = %d, want 1", MetricFailures, failures)
	}
}

func TestNopMiddleware(t *testing.T) {
	calls := 0
	wrapped := NopMiddleware().Wrap(func(ctx context.Context, check CheckMeta) (Outcome, error) {
		calls++
		return Outcome{Accepted: true}, nil
	})
	if _, err := wrapped(context.Background(), CheckMeta{Command: "true"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("inner called %d times, want 1", calls)
	}
}
