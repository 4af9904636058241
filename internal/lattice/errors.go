package lattice

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is the kind of every precondition violation reported by
// the lattice and the sampler built on it.
var ErrInvalidArgument = errors.New("lattice: invalid argument")

// ArgumentError names the offending argument of a rejected call.
type ArgumentError struct {
	Field  string
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidArgument, e.Field, e.Reason)
}

func (e *ArgumentError) Unwrap() error {
	return ErrInvalidArgument
}

// InvalidArgument builds an *ArgumentError with a formatted reason.
func InvalidArgument(field, format string, args ...any) error {
	return &ArgumentError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
