package types

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is matched by every validation failure.
// Callers should test with errors.Is rather than comparing messages.
var ErrInvalidArgument = errors.New("invalid argument")

// ValidationError describes a structural or business-rule violation found
// before any network call is made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrInvalidArgument }

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
