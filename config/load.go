package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-ini/ini"
)

// Loader parses the contents of one config file into flat Values.
type Loader interface {
	Load(data []byte) (Values, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(data []byte) (Values, error)

// Load calls f(data).
func (f LoaderFunc) Load(data []byte) (Values, error) {
	return f(data)
}

// DetectLoader picks the JSON loader when the first non-blank byte of data
// is '{' and the INI loader otherwise.
func DetectLoader(data []byte) Loader {
	trimmed := bytes.TrimLeft(data, " \t\r\n\ufeff")
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return JSONLoader
	}
	return INILoader
}

// JSONLoader parses a JSON object:
//
//	{"user": "nobody", "port": 9200, "log_location": "",
//	 "checks": [{"command": "/bin/true", "accepted": [0]}]}
//
// A null value is treated as absent.
var JSONLoader Loader = LoaderFunc(loadJSON)

type jsonCheck struct {
	Command  string `json:"command"`
	Accepted []int  `json:"accepted"`
}

func loadJSON(data []byte) (Values, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	values := make(Values, len(raw))
	for key, msg := range raw {
		if !IsKey(key) {
			return nil, fmt.Errorf("%w %q", ErrUnknownKey, key)
		}
		if string(bytes.TrimSpace(msg)) == "null" {
			continue
		}

		switch key {
		case KeyPort:
			var port int
			if err := json.Unmarshal(msg, &port); err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrInvalidValue, key, err)
			}
			values[key] = port

		case KeyChecks:
			dec := json.NewDecoder(bytes.NewReader(msg))
			dec.DisallowUnknownFields()
			var entries []jsonCheck
			if err := dec.Decode(&entries); err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrInvalidValue, key, err)
			}
			checks := make([]Check, 0, len(entries))
			for i, e := range entries {
				if strings.TrimSpace(e.Command) == "" {
					return nil, fmt.Errorf("%w: %s[%d]: empty command", ErrInvalidValue, key, i)
				}
				checks = append(checks, Check{Command: e.Command, Accepted: e.Accepted})
			}
			values[key] = checks

		default:
			var s string
			if err := json.Unmarshal(msg, &s); err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrInvalidValue, key, err)
			}
			values[key] = s
		}
	}

	return values, nil
}

// INILoader parses key/value files. Top-level keys hold scalar settings and
// each [check.<name>] section holds one check, in file order:
//
//	port = 9200
//
//	[check.nginx]
//	command  = /etc/init.d/nginx status
//	accepted = 0 3
var INILoader Loader = LoaderFunc(loadINI)

const checkSectionPrefix = "check."

func loadINI(data []byte) (Values, error) {
	f, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment: true,
	}, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	values := make(Values)
	var checks []Check

	for _, section := range f.Sections() {
		name := section.Name()

		if name == ini.DefaultSection {
			for _, k := range section.Keys() {
				key := k.Name()
				if !IsKey(key) || key == KeyChecks {
					return nil, fmt.Errorf("%w %q", ErrUnknownKey, key)
				}
				if key == KeyPort {
					port, err := k.Int()
					if err != nil {
						return nil, fmt.Errorf("%w: %s: %v", ErrInvalidValue, key, err)
					}
					values[key] = port
					continue
				}
				values[key] = k.String()
			}
			continue
		}

		if !strings.HasPrefix(name, checkSectionPrefix) {
			return nil, fmt.Errorf("%w: section %q", ErrUnknownKey, name)
		}

		check, err := iniCheck(section)
		if err != nil {
			return nil, err
		}
		checks = append(checks, check)
	}

	if len(checks) > 0 {
		values[KeyChecks] = checks
	}
	return values, nil
}

func iniCheck(section *ini.Section) (Check, error) {
	var check Check
	for _, k := range section.Keys() {
		switch k.Name() {
		case "command":
			check.Command = strings.TrimSpace(k.String())
		case "accepted":
			codes, err := parseCodes(k.String(), ",")
			if err != nil {
				return Check{}, fmt.Errorf("section %q: %w", section.Name(), err)
			}
			check.Accepted = codes
		default:
			return Check{}, fmt.Errorf("%w %q in section %q", ErrUnknownKey, k.Name(), section.Name())
		}
	}
	if check.Command == "" {
		return Check{}, fmt.Errorf("%w: section %q has no command", ErrInvalidValue, section.Name())
	}
	return check, nil
}
