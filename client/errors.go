package client

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("not found")

// APIError is returned for any non-2xx response from the hostel backend.
type APIError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
}

func (e *APIError) Unwrap() error { return e.Err }
