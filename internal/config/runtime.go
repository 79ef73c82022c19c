package config

import "sync/atomic"

// Runtime provides atomic access to configuration for hot-reload support.
// Reads are lock-free: in-flight requests finish with the snapshot they
// loaded while new requests observe the updated config.
type Runtime struct {
	ptr atomic.Pointer[Config]
}

// NewRuntime creates a new Runtime with the given initial configuration.
func NewRuntime(initial *Config) *Runtime {
	r := &Runtime{}
	r.ptr.Store(initial)
	return r
}

// Get returns the current configuration atomically. Components should call
// Get per request to observe the latest configuration after hot-reload.
func (r *Runtime) Get() *Config {
	return r.ptr.Load()
}

// Store atomically swaps in a new configuration. Called by the config
// watcher when a file change is detected.
func (r *Runtime) Store(cfg *Config) {
	r.ptr.Store(cfg)
}

var _ RuntimeConfig = (*Runtime)(nil)
