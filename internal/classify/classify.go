// Package classify turns heterogeneous provider failures into a small,
// closed set of recoverable reasons.
//
// Classification runs in two stages: an exact HTTP status code mapping,
// then an ordered table of message pattern groups. Cancellation is
// recognized separately (see IsCancellation) and is never classified as
// a reason; the failover engine treats it as immediately fatal.
package classify

import (
	"context"
	"errors"
)

// Reason identifies a recoverable failure cause.
type Reason int

// The closed set of recoverable reasons. ReasonUnknown is the zero value
// and is never returned by Classify with ok=true; it exists so attempt
// records have a printable placeholder before classification.
const (
	ReasonUnknown Reason = iota
	ReasonAuth
	ReasonBilling
	ReasonRateLimit
	ReasonTimeout
	ReasonContextOverflow
	ReasonModelUnavailable
)

// String returns the reason label used in logs and aggregate summaries.
func (r Reason) String() string {
	switch r {
	case ReasonAuth:
		return "auth"
	case ReasonBilling:
		return "billing"
	case ReasonRateLimit:
		return "rate_limit"
	case ReasonTimeout:
		return "timeout"
	case ReasonContextOverflow:
		return "context_overflow"
	case ReasonModelUnavailable:
		return "model_unavailable"
	default:
		return "unknown"
	}
}

// statusReasons maps HTTP status codes to reasons. Status codes take
// precedence over message inspection; codes absent from this map fall
// through to the pattern table.
var statusReasons = map[int]Reason{
	401: ReasonAuth,
	403: ReasonAuth,
	402: ReasonBilling,
	429: ReasonRateLimit,
	408: ReasonTimeout,
	502: ReasonModelUnavailable,
	503: ReasonModelUnavailable,
}

// HTTPStatusError is implemented by errors that carry an HTTP status code.
// upstream.StatusError satisfies it; any wrapped error in the chain can
// supply the code.
type HTTPStatusError interface {
	HTTPStatus() int
}

// StatusCode extracts an HTTP status code from anywhere in err's chain.
// Returns 0 when no error in the chain carries one.
func StatusCode(err error) int {
	var se HTTPStatusError
	if errors.As(err, &se) {
		return se.HTTPStatus()
	}
	return 0
}

// Classify maps a failure to a recoverable Reason.
//
// statusCode is consulted first when non-zero; unmapped codes fall through
// to message inspection. Message inspection evaluates the pattern groups in
// their declared order and the first group with any match wins, so the
// result never depends on map iteration order.
//
// ok=false means the failure is not recoverable: the caller must propagate
// it rather than fail over. Classify is pure; the same inputs always yield
// the same result.
func Classify(err error, statusCode int) (Reason, bool) {
	if err == nil {
		return ReasonUnknown, false
	}

	if reason, matched := statusReasons[statusCode]; matched {
		return reason, true
	}

	// Structured timeout signal, independent of message wording.
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout, true
	}

	return matchMessage(err.Error())
}

// ClassifyError is Classify with the status code discovered from the error
// chain via StatusCode. This is what the failover engine calls.
func ClassifyError(err error) (Reason, bool) {
	return Classify(err, StatusCode(err))
}

// IsCancellation reports whether err is a cancellation-class failure:
// an explicit operation-cancelled or user-abort signal. Cancellations are
// fatal to a failover run; they are never classified, retried, or advanced
// past. The check is independent of the pattern table.
func IsCancellation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	return cancellationPattern.MatchString(err.Error())
}
