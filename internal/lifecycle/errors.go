package lifecycle

import (
	"fmt"

	"github.com/jonathan/candidate-tracker/internal/types"
)

// NotFoundError is returned for an unknown candidate id or token
type NotFoundError struct {
	Kind string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("candidate not found for %s %q", e.Kind, e.Key)
}

// InvalidTransitionError is returned when a status precondition does not hold.
// The record is left unchanged.
type InvalidTransitionError struct {
	Axis    types.Axis
	From    string
	To      string
	Message string
}

func (e *InvalidTransitionError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("invalid %s transition %s -> %s: %s", e.Axis, e.From, e.To, e.Message)
	}
	return fmt.Sprintf("invalid %s transition %s -> %s", e.Axis, e.From, e.To)
}

// ValidationError is returned for malformed requests
type ValidationError struct {
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}
