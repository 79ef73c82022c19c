package upstream

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrUnknownProvider is returned when a candidate references a provider
	// with no configured upstream.
	ErrUnknownProvider = errors.New("upstream: unknown provider")
)

// StatusError is returned when an upstream responds with a non-2xx status.
// It carries the HTTP status code for the classifier and a truncated copy
// of the response body for message-pattern matching.
type StatusError struct {
	Code int
	Body string
}

// Error includes the status code and the (truncated) upstream body, so
// message-pattern classification sees the provider's own wording.
func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upstream: unexpected status %d", e.Code)
	}
	return fmt.Sprintf("upstream: status %d: %s", e.Code, e.Body)
}

// HTTPStatus implements classify.HTTPStatusError.
func (e *StatusError) HTTPStatus() int {
	return e.Code
}
