package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/pflag"

	"github.com/jonwraymond/cmdchk/config"
)

// checkList is the repeatable --check flag. Each occurrence is one check,
// so commas in CODES:CMD stay part of the value.
type checkList struct {
	checks []config.Check
}

var _ pflag.SliceValue = (*checkList)(nil)

func (c *checkList) String() string {
	return "[" + strings.Join(c.GetSlice(), " ") + "]"
}

func (c *checkList) Set(s string) error {
	check, err := config.ParseCheck(s)
	if err != nil {
		return err
	}
	c.checks = append(c.checks, check)
	return nil
}

func (c *checkList) Type() string { return "check" }

func (c *checkList) Append(s string) error { return c.Set(s) }

func (c *checkList) Replace(ss []string) error {
	c.checks = nil
	for _, s := range ss {
		if err := c.Set(s); err != nil {
			return err
		}
	}
	return nil
}

func (c *checkList) GetSlice() []string {
	out := make([]string, len(c.checks))
	for i, check := range c.checks {
		out[i] = check.String()
	}
	return out
}

func (c *checkList) list() []config.Check {
	return append([]config.Check(nil), c.checks...)
}

// defaultValues is the repeatable --default key=value flag. Keys are not
// validated here; the resolver reports unknown ones.
type defaultValues struct {
	m map[string]string
}

var _ pflag.SliceValue = (*defaultValues)(nil)

func (d *defaultValues) String() string {
	return "[" + strings.Join(d.GetSlice(), " ") + "]"
}

func (d *defaultValues) Set(s string) error {
	key, val, ok := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return fmt.Errorf("expected key=value, got %q", s)
	}
	if d.m == nil {
		d.m = make(map[string]string)
	}
	d.m[key] = val
	return nil
}

func (d *defaultValues) Type() string { return "key=value" }

func (d *defaultValues) Append(s string) error { return d.Set(s) }

func (d *defaultValues) Replace(ss []string) error {
	d.m = nil
	for _, s := range ss {
		if err := d.Set(s); err != nil {
			return err
		}
	}
	return nil
}

// GetSlice returns the entries sorted by key.
func (d *defaultValues) GetSlice() []string {
	keys := make([]string, 0, len(d.m))
	for k := range d.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k + "=" + d.m[k]
	}
	return out
}

func (d *defaultValues) values() config.Values {
	if len(d.m) == 0 {
		return nil
	}
	out := make(config.Values, len(d.m))
	for k, v := range d.m {
		out[k] = v
	}
	return out
}

// setDefault records key=val unless the user already supplied key.
func (d *defaultValues) setDefault(key, val string) {
	if _, ok := d.m[key]; ok {
		return
	}
	_ = d.Set(key + "=" + val)
}

// forwardFlags renders the changed flags of fs as --name=value arguments,
// one per element for slice flags. Flags named in skip are left out.
func forwardFlags(fs *pflag.FlagSet, skip map[string]bool) []string {
	var args []string
	fs.Visit(func(f *pflag.Flag) {
		if skip[f.Name] {
			return
		}
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			for _, v := range sv.GetSlice() {
				args = append(args, "--"+f.Name+"="+v)
			}
			return
		}
		args = append(args, "--"+f.Name+"="+f.Value.String())
	})
	return args
}
