package gate

import "errors"

// Errors returned by the gate package. Check with errors.Is.
var (
	// ErrNilHost is returned by New when no Host is supplied.
	ErrNilHost = errors.New("gate: host is nil")

	// ErrInvalidConfig is returned when a configuration mapping cannot be decoded.
	ErrInvalidConfig = errors.New("gate: invalid configuration")

	// ErrInvalidVersion is returned when a version string cannot be parsed.
	ErrInvalidVersion = errors.New("gate: invalid version")
)
