package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// NetworkError is returned when the backend could not be reached at all:
// connection refused, timeout, cancelled context, unreadable body.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("gateway: %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError is returned by read calls when the backend answered with a
// non-2xx status. Mutations report the same condition as Result{Success: false}.
type ServerError struct {
	Op      string
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gateway: %s: backend returned %d", e.Op, e.Status)
	}
	return fmt.Sprintf("gateway: %s: backend returned %d: %s", e.Op, e.Status, e.Message)
}

// Unauthorized reports whether the backend rejected the bearer token.
func (e *ServerError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// IsNetwork reports whether err is, or wraps, a NetworkError.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsUnauthorized reports whether err is a ServerError caused by a rejected token.
func IsUnauthorized(err error) bool {
	var se *ServerError
	return errors.As(err, &se) && se.Unauthorized()
}
