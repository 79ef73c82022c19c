// Package ratelimit provides local request pacing for cc-fallback upstreams.
//
// Each upstream gets a token bucket limiter tracking requests per minute.
// The relay consults the limiter before dispatching an attempt: a denial is
// reported as a rate-limit failure without calling the upstream, so failover
// advances exactly as it would for a provider-side 429.
package ratelimit

import (
	"sync"

	"golang.org/x/time/rate"
)

// unlimitedRate stands in for "no limit" so a limiter always exists.
const unlimitedRate = 1_000_000

// Limiter paces requests to one upstream using golang.org/x/time/rate.
// Burst equals the limit, allowing a full minute's capacity instantly and
// refilling gradually. Safe for concurrent use.
type Limiter struct {
	limiter *rate.Limiter
	rpm     int
}

// NewLimiter creates a limiter allowing rpm requests per minute.
// Zero or negative rpm means unlimited.
func NewLimiter(rpm int) *Limiter {
	if rpm <= 0 {
		rpm = unlimitedRate
	}

	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), rpm),
		rpm:     rpm,
	}
}

// Allow reports whether a request may be dispatched now. Non-blocking;
// a denied request is not queued.
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}

// RPM returns the configured requests-per-minute limit.
func (l *Limiter) RPM() int {
	return l.rpm
}

// Registry holds one Limiter per upstream name.
type Registry struct {
	limiters map[string]*Limiter
	mu       sync.RWMutex
}

// NewRegistry creates a registry from upstream name -> rpm limits.
func NewRegistry(limits map[string]int) *Registry {
	limiters := make(map[string]*Limiter, len(limits))
	for name, rpm := range limits {
		limiters[name] = NewLimiter(rpm)
	}
	return &Registry{limiters: limiters}
}

// Allow checks the limiter for the named upstream. Upstreams without a
// configured limiter are unlimited.
func (r *Registry) Allow(name string) bool {
	r.mu.RLock()
	limiter, exists := r.limiters[name]
	r.mu.RUnlock()

	if !exists {
		return true
	}
	return limiter.Allow()
}

// Get returns the limiter for the named upstream, or nil.
func (r *Registry) Get(name string) *Limiter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.limiters[name]
}
