package health

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jonwraymond/cmdchk/config"
)

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusHealthy, "healthy"},
		{StatusUnhealthy, "unhealthy"},
		{Status(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.status.String(); got != tt.want {
				t.Errorf("Status.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResult_Passed(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		want   bool
	}{
		{"zero exit default codes", Result{Check: config.Check{Command: "true"}, ExitCode: 0}, true},
		{"non-zero exit default codes", Result{Check: config.Check{Command: "false"}, ExitCode: 1}, false},
		{"accepted custom code", Result{Check: config.Check{Command: "x", Accepted: []int{0, 5}}, ExitCode: 5}, true},
		{"zero not in custom codes", Result{Check: config.Check{Command: "x", Accepted: []int{3}}, ExitCode: 0}, false},
		{"start error", Result{Check: config.Check{Command: "x"}, ExitCode: -1, Err: ErrCheckStart}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.result.Passed(); got != tt.want {
				t.Errorf("Passed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRunnerFunc(t *testing.T) {
	var got string
	r := RunnerFunc(func(ctx context.Context, command string) (int, []byte, error) {
		got = command
		return 7, nil, nil
	})

	code, _, err := r.Run(context.Background(), "echo hi")
	if err != nil || code != 7 {
		t.Errorf("Run() = %d, %v; want 7, nil", code, err)
	}
	if got != "echo hi" {
		t.Errorf("command = %q, want %q", got, "echo hi")
	}
}

func TestShellRunner_ExitCodes(t *testing.T) {
	tests := []struct {
		command string
		want    int
	}{
		{"true", 0},
		{"false", 1},
		{"exit 5", 5},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			code, _, err := ShellRunner{}.Run(context.Background(), tt.command)
			if err != nil {
				t.Fatalf("Run(%q) error = %v", tt.command, err)
			}
			if code != tt.want {
				t.Errorf("Run(%q) exit code = %d, want %d", tt.command, code, tt.want)
			}
		})
	}
}

func TestShellRunner_CombinedOutput(t *testing.T) {
	_, out, err := ShellRunner{}.Run(context.Background(), "echo out; echo err 1>&2")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	s := string(out)
	if !strings.Contains(s, "out\n") || !strings.Contains(s, "err\n") {
		t.Errorf("output = %q, want both stdout and stderr", s)
	}
}

func TestShellRunner_MissingShell(t *testing.T) {
	code, _, err := ShellRunner{Shell: "/nonexistent/shell"}.Run(context.Background(), "true")
	if !errors.Is(err, ErrCheckStart) {
		t.Errorf("error = %v, want %v", err, ErrCheckStart)
	}
	if code != -1 {
		t.Errorf("exit code = %d, want -1", code)
	}
}
