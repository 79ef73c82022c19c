// Package config provides configuration loading, parsing, and validation
// for cc-fallback.
package config

import (
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/mo"

	"github.com/omarluq/cc-fallback/internal/cooldown"
	"github.com/omarluq/cc-fallback/internal/failover"
	"github.com/omarluq/cc-fallback/internal/health"
)

// Log level constants.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Fallback defaults.
const (
	DefaultMaxRetries        = 1
	DefaultRetryDelayMS      = 1000
	DefaultListen            = "127.0.0.1:8787"
	DefaultUpstreamTimeoutMS = 120000
)

// Config represents the complete cc-fallback configuration.
type Config struct {
	Fallback  FallbackConfig   `yaml:"fallback" toml:"fallback"`
	Upstreams []UpstreamConfig `yaml:"upstreams" toml:"upstreams"`
	Logging   LoggingConfig    `yaml:"logging" toml:"logging"`
	Health    health.Config    `yaml:"health" toml:"health"`
	Cooldown  cooldown.Config  `yaml:"cooldown" toml:"cooldown"`
	Server    ServerConfig     `yaml:"server" toml:"server"`
}

// RuntimeConfig is the interface components use to observe hot-reloaded
// configuration. Holding a *Config pointer directly would go stale after a
// reload; calling Get() per request always observes the latest snapshot.
type RuntimeConfig interface {
	Get() *Config
}

// FallbackConfig defines the candidate list and retry policy.
type FallbackConfig struct {
	// Enabled turns failover on or off. When disabled only the first
	// candidate is ever tried. Default: true.
	Enabled *bool `yaml:"enabled" toml:"enabled"`

	// Candidates is the ordered priority list, primary first, each entry a
	// "provider/model" string. The provider part must name a configured
	// upstream.
	Candidates []string `yaml:"candidates" toml:"candidates"`

	// MaxRetries is how many times one candidate is tried before advancing.
	// Default: 1.
	MaxRetries int `yaml:"max_retries" toml:"max_retries"`

	// RetryDelayMS is the wait between retries of one candidate,
	// in milliseconds. Default: 1000.
	RetryDelayMS int `yaml:"retry_delay_ms" toml:"retry_delay_ms"`

	// LogAttempts enables one log record per attempt.
	LogAttempts bool `yaml:"log_attempts" toml:"log_attempts"`
}

// IsEnabled returns whether failover is enabled (default true).
func (f *FallbackConfig) IsEnabled() bool {
	if f.Enabled == nil {
		return true
	}
	return *f.Enabled
}

// GetMaxRetries returns the retry budget with default fallback.
func (f *FallbackConfig) GetMaxRetries() int {
	if f.MaxRetries < 1 {
		return DefaultMaxRetries
	}
	return f.MaxRetries
}

// GetRetryDelay returns the inter-retry delay with default fallback.
// An explicit 0 means no delay; only negative values fall back.
func (f *FallbackConfig) GetRetryDelay() time.Duration {
	if f.RetryDelayMS < 0 {
		return DefaultRetryDelayMS * time.Millisecond
	}
	return time.Duration(f.RetryDelayMS) * time.Millisecond
}

// ParseCandidates converts the configured "provider/model" strings into
// typed candidates. Parsing lives here, outside the failover core: the
// engine only ever consumes a typed list.
func (f *FallbackConfig) ParseCandidates() ([]failover.Candidate, error) {
	errs := &ValidationError{}
	candidates := make([]failover.Candidate, 0, len(f.Candidates))

	for i, entry := range f.Candidates {
		candidate, ok := failover.ParseCandidate(entry)
		if !ok {
			errs.Addf("fallback.candidates[%d]: %q is not of the form provider/model", i, entry)
			continue
		}
		candidates = append(candidates, candidate)
	}

	if err := errs.ToError(); err != nil {
		return nil, err
	}
	return candidates, nil
}

// UpstreamConfig describes one backend provider endpoint.
type UpstreamConfig struct {
	// Name is the provider identifier candidates reference.
	Name string `yaml:"name" toml:"name"`

	// BaseURL is the endpoint root, e.g. https://api.anthropic.com.
	BaseURL string `yaml:"base_url" toml:"base_url"`

	// APIKey is sent as x-api-key. ${ENV} expansion applies.
	APIKey string `yaml:"api_key" toml:"api_key"`

	// TimeoutMS bounds one request to this upstream. Default: 120000.
	TimeoutMS int `yaml:"timeout_ms" toml:"timeout_ms"`

	// RPM caps local request pacing for this upstream. 0 = unlimited.
	RPM int `yaml:"rpm" toml:"rpm"`
}

// GetTimeoutOption returns the per-request timeout as a duration Option,
// None when the explicit value is absent and the caller's default applies.
func (u *UpstreamConfig) GetTimeoutOption() mo.Option[time.Duration] {
	if u.TimeoutMS <= 0 {
		return mo.None[time.Duration]()
	}
	return mo.Some(time.Duration(u.TimeoutMS) * time.Millisecond)
}

// Upstream returns the upstream config with the given name.
func (c *Config) Upstream(name string) (UpstreamConfig, bool) {
	for _, u := range c.Upstreams {
		if u.Name == name {
			return u, true
		}
	}
	return UpstreamConfig{}, false
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`   // debug, info, warn, error
	Format string `yaml:"format" toml:"format"` // json, console, pretty
	Output string `yaml:"output" toml:"output"` // stdout, stderr, or file path
	Pretty bool   `yaml:"pretty" toml:"pretty"` // force colored console output
}

// ParseLevel converts the configured level string to a zerolog level.
// Unknown or empty levels default to info.
func (l *LoggingConfig) ParseLevel() zerolog.Level {
	switch strings.ToLower(l.Level) {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelInfo:
		return zerolog.InfoLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// ServerConfig controls the relay's HTTP listener.
type ServerConfig struct {
	Listen      string `yaml:"listen" toml:"listen"`
	EnableHTTP2 bool   `yaml:"enable_http2" toml:"enable_http2"` // HTTP/2 cleartext (h2c)
}

// GetListen returns the listen address with default fallback.
func (s *ServerConfig) GetListen() string {
	if s.Listen == "" {
		return DefaultListen
	}
	return s.Listen
}
