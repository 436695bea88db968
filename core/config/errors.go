package config

import "errors"

var (
	// ErrNotStructPointer is returned when Load receives anything other
	// than a non-nil pointer to a struct.
	ErrNotStructPointer = errors.New("config target must be a non-nil struct pointer")
	// ErrParseFailed wraps environment parsing failures.
	ErrParseFailed = errors.New("failed to parse environment config")
)
