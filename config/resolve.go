package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/jonwraymond/cmdchk/logging"
	"github.com/jonwraymond/cmdchk/startup"
)

// Settings are the inputs of Resolve, highest precedence first.
type Settings struct {
	// Explicit holds command line settings. A non-empty value always wins.
	Explicit Values

	// ConfigFiles are read in order; the first file to set a key wins.
	ConfigFiles []string

	// Defaults override individual built-in defaults.
	Defaults Values
}

// Result is the outcome of Resolve. Config is nil when any CRITICAL message
// was recorded.
type Result struct {
	Config   *Config
	Messages *startup.Buffer
}

// readFile is replaced in tests.
var readFile = os.ReadFile

// Resolve merges explicit settings, config files and defaults into one
// Config. Problems are recorded as startup messages rather than returned,
// since no logger exists yet: unreadable files are DEBUG, everything that
// prevents a complete configuration is CRITICAL.
func Resolve(s Settings) Result {
	msgs := &startup.Buffer{}
	msgs.Debugf("Server started.")

	merged := make(Values, len(Keys))
	for _, key := range sortedKeys(s.Explicit) {
		val := s.Explicit[key]
		if isEmpty(val) {
			continue
		}
		if !IsKey(key) {
			msgs.Criticalf("Unknown setting %s", key)
			continue
		}
		merged[key] = val
	}

	mergeFiles(s.ConfigFiles, merged, msgs)

	defaults := BuiltinDefaults()
	for _, key := range sortedKeys(s.Defaults) {
		if !IsKey(key) {
			msgs.Criticalf("Bad default value %s: %v", key, ErrUnknownKey)
			continue
		}
		defaults[key] = s.Defaults[key]
	}
	for _, key := range Keys {
		if _, ok := merged[key]; !ok {
			merged[key] = defaults[key]
		}
	}

	cfg, errs := build(merged)
	for _, err := range errs {
		msgs.Criticalf("Invalid configuration: %v", err)
	}

	if msgs.HasCritical() {
		return Result{Messages: msgs}
	}
	return Result{Config: cfg, Messages: msgs}
}

// mergeFiles fills keys missing from merged with values from each readable
// file in order.
func mergeFiles(paths []string, merged Values, msgs *startup.Buffer) {
	var read []string

	for _, path := range paths {
		data, err := readFile(path)
		if err != nil {
			msgs.Debugf("Could not open file: %s", path)
			continue
		}

		values, err := DetectLoader(data).Load(data)
		if err == nil {
			err = expandValues(values)
		}
		if err != nil {
			msgs.Criticalf("Error parsing config %s: %v", path, err)
			continue
		}
		read = append(read, path)

		for key, val := range values {
			if _, ok := merged[key]; !ok {
				merged[key] = val
			}
		}
	}

	if len(read) > 0 {
		msgs.Debugf("Read config files: %v", read)
	} else {
		msgs.Debugf("No config files read. Using defaults.")
	}
}

// expandValues applies strict environment expansion to path-like settings
// read from files. Check commands are left to the shell.
func expandValues(values Values) error {
	for _, key := range []string{KeyUser, KeyLogLocation} {
		s, ok := values[key].(string)
		if !ok {
			continue
		}
		expanded, err := expandEnvStrict(s)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		values[key] = expanded
	}
	return nil
}

var validExporters = map[string]bool{
	"otlp":   true,
	"stdout": true,
	"none":   true,
	"":       true,
}

// build converts fully merged values into a Config.
func build(v Values) (*Config, []error) {
	var errs []error
	cfg := &Config{}

	var err error
	if cfg.User, err = asString(v, KeyUser); err != nil {
		errs = append(errs, err)
	} else if cfg.User == "" {
		errs = append(errs, fmt.Errorf("%w: %s is empty", ErrInvalidValue, KeyUser))
	}

	if cfg.Port, err = asInt(v, KeyPort); err != nil {
		errs = append(errs, err)
	} else if cfg.Port < 1 || cfg.Port > 65535 {
		errs = append(errs, fmt.Errorf("%w: %s %d out of range", ErrInvalidValue, KeyPort, cfg.Port))
	}

	if cfg.LogLocation, err = asString(v, KeyLogLocation); err != nil {
		errs = append(errs, err)
	}

	if cfg.Checks, err = asChecks(v, KeyChecks); err != nil {
		errs = append(errs, err)
	}

	if cfg.LogLevel, err = asString(v, KeyLogLevel); err != nil {
		errs = append(errs, err)
	} else if !logging.ValidLevel(cfg.LogLevel) {
		errs = append(errs, fmt.Errorf("%w: %s %q", ErrInvalidValue, KeyLogLevel, cfg.LogLevel))
	}

	if cfg.Telemetry.TracingExporter, err = asString(v, KeyTracingExporter); err != nil {
		errs = append(errs, err)
	} else if !validExporters[cfg.Telemetry.TracingExporter] {
		errs = append(errs, fmt.Errorf("%w: %s %q", ErrInvalidValue, KeyTracingExporter, cfg.Telemetry.TracingExporter))
	}
	if cfg.Telemetry.MetricsExporter, err = asString(v, KeyMetricsExporter); err != nil {
		errs = append(errs, err)
	} else if !validExporters[cfg.Telemetry.MetricsExporter] {
		errs = append(errs, fmt.Errorf("%w: %s %q", ErrInvalidValue, KeyMetricsExporter, cfg.Telemetry.MetricsExporter))
	}

	return cfg, errs
}

func asString(v Values, key string) (string, error) {
	switch val := v[key].(type) {
	case string:
		return val, nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("%w: %s must be a string, got %T", ErrInvalidValue, key, val)
	}
}

func asInt(v Values, key string) (int, error) {
	switch val := v[key].(type) {
	case int:
		return val, nil
	case float64:
		if val != float64(int(val)) {
			return 0, fmt.Errorf("%w: %s must be an integer, got %v", ErrInvalidValue, key, val)
		}
		return int(val), nil
	case string:
		n, err := strconv.Atoi(val)
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %v", ErrInvalidValue, key, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: %s must be an integer, got %T", ErrInvalidValue, key, val)
	}
}

func asChecks(v Values, key string) ([]Check, error) {
	switch val := v[key].(type) {
	case []Check:
		out := make([]Check, len(val))
		copy(out, val)
		return out, nil
	case nil:
		return nil, nil
	case string:
		if val == "" {
			return nil, nil
		}
		check, err := ParseCheck(val)
		if err != nil {
			return nil, err
		}
		return []Check{check}, nil
	default:
		return nil, fmt.Errorf("%w: %s must be a check list, got %T", ErrInvalidValue, key, val)
	}
}

func sortedKeys(v Values) []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
