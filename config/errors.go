package config

import "errors"

var (
	// ErrParse indicates a readable config file could not be parsed.
	ErrParse = errors.New("config: parse error")

	// ErrUnknownKey indicates a setting name outside the recognized set.
	ErrUnknownKey = errors.New("config: unknown key")

	// ErrInvalidValue indicates a setting has the wrong type or range.
	ErrInvalidValue = errors.New("config: invalid value")

	// ErrMissingEnv indicates a ${VAR} reference to an unset variable.
	ErrMissingEnv = errors.New("config: missing environment variable")
)
