package health

import (
	"sync"

	"github.com/rs/zerolog"
)

// Tracker manages per-candidate circuit breakers. It provides thread-safe
// access to breakers keyed by "provider/model" and exposes IsHealthyFunc
// closures for the relay's candidate filtering.
type Tracker struct {
	circuits map[string]*CircuitBreaker
	logger   *zerolog.Logger
	config   CircuitBreakerConfig
	mu       sync.RWMutex
}

// NewTracker creates a new Tracker with the given configuration.
func NewTracker(cfg CircuitBreakerConfig, logger *zerolog.Logger) *Tracker {
	return &Tracker{
		circuits: make(map[string]*CircuitBreaker),
		config:   cfg,
		logger:   logger,
	}
}

// GetOrCreateCircuit returns the breaker for a candidate key, creating it
// lazily. Thread-safe.
func (t *Tracker) GetOrCreateCircuit(key string) *CircuitBreaker {
	t.mu.RLock()
	cb, exists := t.circuits[key]
	t.mu.RUnlock()

	if exists {
		return cb
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if cb, exists = t.circuits[key]; exists {
		return cb
	}

	cb = NewCircuitBreaker(key, t.config, t.logger)
	t.circuits[key] = cb

	if t.logger != nil {
		t.logger.Debug().
			Str("candidate", key).
			Msg("created circuit breaker")
	}

	return cb
}

// IsHealthyFunc returns a closure that reports whether a candidate may
// receive requests. A candidate is unhealthy only while its circuit is OPEN;
// CLOSED and HALF-OPEN (probing) both allow traffic.
func (t *Tracker) IsHealthyFunc(key string) func() bool {
	return func() bool {
		return t.GetOrCreateCircuit(key).State() != StateOpen
	}
}

// GetState returns the current state of a candidate's circuit breaker.
// Candidates without a breaker yet are healthy by default.
func (t *Tracker) GetState(key string) State {
	t.mu.RLock()
	cb, exists := t.circuits[key]
	t.mu.RUnlock()

	if !exists {
		return StateClosed
	}
	return cb.State()
}

// RecordSuccess records a successful attempt for a candidate.
func (t *Tracker) RecordSuccess(key string) {
	cb := t.GetOrCreateCircuit(key)
	cb.ReportSuccess()

	if t.logger != nil {
		t.logger.Debug().
			Str("candidate", key).
			Str("state", cb.State().String()).
			Msg("recorded success")
	}
}

// RecordFailure records a failed attempt for a candidate.
func (t *Tracker) RecordFailure(key string, err error) {
	cb := t.GetOrCreateCircuit(key)
	cb.ReportFailure(err)

	if t.logger != nil {
		t.logger.Debug().
			Str("candidate", key).
			Str("state", cb.State().String()).
			Err(err).
			Msg("recorded failure")
	}
}

// AllStates returns a snapshot of all candidate circuit states.
func (t *Tracker) AllStates() map[string]State {
	t.mu.RLock()
	defer t.mu.RUnlock()

	states := make(map[string]State, len(t.circuits))
	for key, cb := range t.circuits {
		states[key] = cb.State()
	}
	return states
}
