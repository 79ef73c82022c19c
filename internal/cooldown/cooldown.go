// Package cooldown benches fallback candidates that keep failing.
//
// When a run ends in candidate exhaustion, candidates whose final failure
// was a rate limit or billing problem get benched for a TTL: retrying them
// immediately would burn the retry budget on a quota that has not reset yet.
// The bench is a per-process ristretto cache; state is discarded on exit.
package cooldown

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/rs/zerolog"
)

// Default configuration values.
const (
	DefaultTTLSeconds = 60
	DefaultMaxEntries = 1024
)

// ErrClosed is returned when an operation is attempted on a closed bench.
var ErrClosed = errors.New("cooldown: bench is closed")

// Config is the cooldown section of the cc-fallback configuration.
type Config struct {
	Enabled    *bool `yaml:"enabled" toml:"enabled"`
	TTLSeconds int   `yaml:"ttl_seconds" toml:"ttl_seconds"`
	MaxEntries int64 `yaml:"max_entries" toml:"max_entries"`
}

// IsEnabled returns whether cooldown benching is enabled (default true).
func (c *Config) IsEnabled() bool {
	if c.Enabled == nil {
		return true
	}
	return *c.Enabled
}

// GetTTL returns the bench TTL as time.Duration.
func (c *Config) GetTTL() time.Duration {
	if c.TTLSeconds <= 0 {
		return DefaultTTLSeconds * time.Second
	}
	return time.Duration(c.TTLSeconds) * time.Second
}

// GetMaxEntries returns the cache capacity.
func (c *Config) GetMaxEntries() int64 {
	if c.MaxEntries <= 0 {
		return DefaultMaxEntries
	}
	return c.MaxEntries
}

// Bench tracks benched candidates by key with per-entry TTL.
// Safe for concurrent use.
type Bench struct {
	cache  *ristretto.Cache[string, time.Time]
	log    zerolog.Logger
	ttl    time.Duration
	closed atomic.Bool
}

// NewBench creates a bench with the given configuration.
func NewBench(cfg Config, logger *zerolog.Logger) (*Bench, error) {
	maxEntries := cfg.GetMaxEntries()

	cache, err := ristretto.NewCache(&ristretto.Config[string, time.Time]{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}

	log := zerolog.Nop()
	if logger != nil {
		log = logger.With().Str("component", "cooldown").Logger()
	}

	return &Bench{
		cache: cache,
		log:   log,
		ttl:   cfg.GetTTL(),
	}, nil
}

// Add benches a candidate key for the configured TTL.
func (b *Bench) Add(key string) error {
	if b.closed.Load() {
		return ErrClosed
	}

	until := time.Now().Add(b.ttl)
	b.cache.SetWithTTL(key, until, 1, b.ttl)
	b.cache.Wait()

	b.log.Info().
		Str("candidate", key).
		Time("until", until).
		Msg("candidate benched")

	return nil
}

// Benched reports whether a candidate key is currently benched.
func (b *Bench) Benched(key string) bool {
	if b.closed.Load() {
		return false
	}
	_, found := b.cache.Get(key)
	return found
}

// Remaining returns how long the candidate stays benched, or zero when it
// is not benched.
func (b *Bench) Remaining(key string) time.Duration {
	if b.closed.Load() {
		return 0
	}

	until, found := b.cache.Get(key)
	if !found {
		return 0
	}

	remaining := time.Until(until)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Close releases the cache. Idempotent.
func (b *Bench) Close() {
	if b.closed.CompareAndSwap(false, true) {
		b.cache.Close()
	}
}
