package scanjob

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("invalid scan request")

	// ErrSubmitInFlight rejects a submission while another is outstanding.
	ErrSubmitInFlight = errors.New("a scan is already in flight")

	// ErrInputLocked rejects input edits while a request is outstanding.
	ErrInputLocked = errors.New("input is locked while a scan is in flight")
)

// ValidationError is a local rejection of user input. The backend is never
// contacted when one is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
