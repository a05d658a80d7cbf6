package config

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Recognized setting keys.
const (
	KeyUser            = "user"
	KeyPort            = "port"
	KeyLogLocation     = "log_location"
	KeyChecks          = "checks"
	KeyLogLevel        = "log_level"
	KeyTracingExporter = "tracing_exporter"
	KeyMetricsExporter = "metrics_exporter"
)

// Keys lists every recognized key in resolution order.
var Keys = []string{
	KeyUser,
	KeyPort,
	KeyLogLocation,
	KeyChecks,
	KeyLogLevel,
	KeyTracingExporter,
	KeyMetricsExporter,
}

// IsKey reports whether key is a recognized setting.
func IsKey(key string) bool {
	return slices.Contains(Keys, key)
}

// Check is one monitored command and the exit codes that count as success.
type Check struct {
	Command string
	// Accepted lists the exit codes treated as success. Empty means {0}.
	Accepted []int
}

// Accepts reports whether code is an accepted exit code for c.
func (c Check) Accepts(code int) bool {
	if len(c.Accepted) == 0 {
		return code == 0
	}
	return slices.Contains(c.Accepted, code)
}

// String renders c in the CODES:COMMAND form understood by ParseCheck.
func (c Check) String() string {
	if len(c.Accepted) == 0 {
		return c.Command
	}
	codes := make([]string, len(c.Accepted))
	for i, code := range c.Accepted {
		codes[i] = strconv.Itoa(code)
	}
	return strings.Join(codes, ",") + ":" + c.Command
}

// ParseCheck parses "COMMAND" or "CODES:COMMAND", where CODES is a comma
// separated list of exit codes, e.g. "0,5:/usr/bin/somecommand --quiet".
// A value whose prefix before the first ':' is not a code list is taken
// whole as the command.
func ParseCheck(s string) (Check, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Check{}, fmt.Errorf("%w: empty check", ErrInvalidValue)
	}

	if prefix, rest, ok := strings.Cut(s, ":"); ok {
		if codes, err := parseCodes(prefix, ","); err == nil && len(codes) > 0 {
			rest = strings.TrimSpace(rest)
			if rest == "" {
				return Check{}, fmt.Errorf("%w: check %q has no command", ErrInvalidValue, s)
			}
			return Check{Command: rest, Accepted: codes}, nil
		}
	}

	return Check{Command: s}, nil
}

// parseCodes parses a list of integer exit codes separated by sep and/or
// whitespace.
func parseCodes(s, sep string) ([]int, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return strings.ContainsRune(sep, r) || r == ' ' || r == '\t'
	})
	codes := make([]int, 0, len(fields))
	for _, f := range fields {
		code, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("%w: exit code %q", ErrInvalidValue, f)
		}
		codes = append(codes, code)
	}
	return codes, nil
}

// Config is the fully resolved configuration of a worker. It is not
// modified after Resolve returns it.
type Config struct {
	User        string
	Port        int
	LogLocation string
	Checks      []Check
	LogLevel    string
	Telemetry   Telemetry
}

// Telemetry selects the telemetry exporters.
type Telemetry struct {
	TracingExporter string
	MetricsExporter string
}

// Values is a flat key/value view of settings from one source. Values are
// string, int or []Check.
type Values map[string]any

// Clone returns a shallow copy of v.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// BuiltinDefaults returns the lowest precedence settings.
func BuiltinDefaults() Values {
	return Values{
		KeyUser:            "nobody",
		KeyPort:            9200,
		KeyLogLocation:     "",
		KeyChecks:          []Check{{Command: "/bin/true"}},
		KeyLogLevel:        "debug",
		KeyTracingExporter: "none",
		KeyMetricsExporter: "none",
	}
}

// isEmpty reports whether an explicit value counts as "not supplied".
func isEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case int:
		return val == 0
	case []Check:
		return len(val) == 0
	default:
		return false
	}
}
