package api

import (
	"errors"
	"fmt"
)

// ErrInvalidResponse marks a 2xx list response whose body is not a task
// collection.
var ErrInvalidResponse = errors.New("invalid response")

// Error is the one failure kind the client reports: a call that did not
// complete, either because the server answered with a non-success status
// or because the request itself failed.
type Error struct {
	Method string
	Path   string
	Status int   // 0 when no response was received
	Err    error // transport or decode failure, nil for status failures
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s -> %d", e.Method, e.Path, e.Status)
	}
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
