package backend

import (
	"errors"
	"fmt"
)

// ErrTransport marks failures where no usable response was obtained:
// the backend was unreachable or answered with a body that could not be parsed.
var ErrTransport = errors.New("backend transport failure")

// APIError is a non-2xx answer from the backend.
// Message carries the backend's "error" field verbatim and may be empty.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.Status)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Message)
}

// IsAPIError reports whether err is (or wraps) an APIError and returns it
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func transportError(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrTransport, err)
}
