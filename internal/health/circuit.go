// Package health provides per-candidate circuit breaking for cc-fallback.
package health

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/omarluq/cc-fallback/internal/classify"
)

// State represents the circuit breaker state.
type State = gobreaker.State

// Circuit breaker state constants.
const (
	StateClosed   = gobreaker.StateClosed
	StateOpen     = gobreaker.StateOpen
	StateHalfOpen = gobreaker.StateHalfOpen
)

// CircuitBreaker wraps sony/gobreaker TwoStepCircuitBreaker for one candidate.
type CircuitBreaker struct {
	cb  *gobreaker.TwoStepCircuitBreaker[struct{}]
	key string
}

// NewCircuitBreaker creates a circuit breaker for the candidate identified
// by key ("provider/model").
func NewCircuitBreaker(key string, cfg CircuitBreakerConfig, logger *zerolog.Logger) *CircuitBreaker {
	failureThreshold := cfg.GetFailureThreshold()
	halfOpenProbes := cfg.GetHalfOpenProbes()

	settings := gobreaker.Settings{
		Name:        key,
		MaxRequests: uint32(halfOpenProbes), //nolint:gosec // getter clamps to positive
		Timeout:     cfg.GetOpenDuration(),
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(failureThreshold) //nolint:gosec // getter clamps to positive
		},
		OnStateChange: func(key string, from, to gobreaker.State) {
			if logger == nil {
				return
			}
			event := logger.Info()
			if to == gobreaker.StateOpen {
				event = logger.Warn()
			}
			event.
				Str("candidate", key).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
		},
		IsSuccessful: func(err error) bool {
			// A caller abort says nothing about candidate health.
			return err == nil || errors.Is(err, context.Canceled) || classify.IsCancellation(err)
		},
	}

	return &CircuitBreaker{
		cb:  gobreaker.NewTwoStepCircuitBreaker[struct{}](settings),
		key: key,
	}
}

// Allow checks if a request is allowed through the circuit breaker.
func (c *CircuitBreaker) Allow() (done func(err error), err error) {
	d, err := c.cb.Allow()
	if err != nil {
		return nil, ErrCircuitOpen
	}
	return d, nil
}

// State returns the current circuit breaker state.
func (c *CircuitBreaker) State() State {
	return c.cb.State()
}

// Key returns the candidate key this breaker tracks.
func (c *CircuitBreaker) Key() string {
	return c.key
}

// ReportSuccess reports a successful attempt. Returns false when the circuit
// is OPEN: gobreaker blocks recording until the open timeout expires, so the
// transition to HALF-OPEN cannot be accelerated from here.
func (c *CircuitBreaker) ReportSuccess() bool {
	done, err := c.Allow()
	if err != nil {
		return false
	}
	done(nil)
	return true
}

// ReportFailure reports a failed attempt. Returns false when the circuit is
// OPEN (already tracking failures).
func (c *CircuitBreaker) ReportFailure(err error) bool {
	done, allowErr := c.Allow()
	if allowErr != nil {
		return false
	}
	done(err)
	return true
}
