package config

import (
	"errors"
	"net"
	"net/url"
	"strings"
)

// Valid logging levels.
var validLogLevels = map[string]bool{
	"":      true, // Empty defaults to info
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Valid logging formats.
var validLogFormats = map[string]bool{
	"":        true, // Empty defaults to json
	"json":    true,
	"console": true,
	"pretty":  true,
}

// Validate checks the configuration for errors.
// It validates required fields, valid values, and cross-field constraints
// (every candidate must reference a configured upstream). Returns a
// ValidationError containing all errors found, or nil if valid.
func (c *Config) Validate() error {
	errs := &ValidationError{}

	validateServer(c, errs)
	validateUpstreams(c, errs)
	validateFallback(c, errs)
	validateLogging(c, errs)

	return errs.ToError()
}

func validateServer(c *Config, errs *ValidationError) {
	listen := c.Server.GetListen()
	if _, _, err := net.SplitHostPort(listen); err != nil {
		errs.Addf("server.listen: invalid address %q: %v", listen, err)
	}
}

func validateUpstreams(c *Config, errs *ValidationError) {
	if len(c.Upstreams) == 0 {
		errs.Add("upstreams: at least one upstream is required")
		return
	}

	seen := make(map[string]bool, len(c.Upstreams))

	for i, u := range c.Upstreams {
		if u.Name == "" {
			errs.Addf("upstreams[%d]: name is required", i)
		} else if seen[u.Name] {
			errs.Addf("upstreams[%d]: duplicate name %q", i, u.Name)
		} else {
			seen[u.Name] = true
		}

		if u.BaseURL == "" {
			errs.Addf("upstreams[%d]: base_url is required", i)
			continue
		}

		parsed, err := url.Parse(u.BaseURL)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			errs.Addf("upstreams[%d]: invalid base_url %q", i, u.BaseURL)
		}

		if u.RPM < 0 {
			errs.Addf("upstreams[%d]: rpm must be >= 0, got %d", i, u.RPM)
		}
	}
}

func validateFallback(c *Config, errs *ValidationError) {
	if len(c.Fallback.Candidates) == 0 {
		errs.Add("fallback.candidates: at least one candidate is required")
		return
	}

	candidates, err := c.Fallback.ParseCandidates()
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			errs.Errors = append(errs.Errors, verr.Errors...)
		} else {
			errs.Add(err.Error())
		}
		return
	}

	for i, candidate := range candidates {
		if _, found := c.Upstream(candidate.Provider); !found {
			errs.Addf("fallback.candidates[%d]: provider %q has no matching upstream", i, candidate.Provider)
		}
	}

	if c.Fallback.MaxRetries < 0 {
		errs.Addf("fallback.max_retries: must be >= 1, got %d", c.Fallback.MaxRetries)
	}

	if c.Fallback.RetryDelayMS < 0 {
		errs.Addf("fallback.retry_delay_ms: must be >= 0, got %d", c.Fallback.RetryDelayMS)
	}
}

func validateLogging(c *Config, errs *ValidationError) {
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs.Addf("logging.level: unknown level %q", c.Logging.Level)
	}

	if !validLogFormats[strings.ToLower(c.Logging.Format)] {
		errs.Addf("logging.format: unknown format %q", c.Logging.Format)
	}
}
