package config

import "errors"

var (
	// ErrNilPointer indicates Load was called with a nil destination.
	ErrNilPointer = errors.New("config: nil pointer passed to Load")
	// ErrParse indicates environment variables could not be parsed into
	// the destination struct.
	ErrParse = errors.New("config: failed to parse environment variables")
)
