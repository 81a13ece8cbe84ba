package api

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the backend has no record for an ID.
	ErrNotFound = errors.New("scan not found")

	// ErrMalformedResponse marks a 2xx body that does not have the expected shape.
	ErrMalformedResponse = errors.New("malformed response")
)

// TransportError wraps a failure to complete a request/response cycle:
// connection refused, timeouts, truncated or unparseable bodies.
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError is returned for non-2xx responses. Detail carries the
// backend's error message when it sent one.
type StatusError struct {
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Detail)
}
