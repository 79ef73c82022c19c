package config

import (
	"strings"
	"testing"
)

// validConfig builds a minimal configuration that passes validation.
func validConfig() *Config {
	return &Config{
		Upstreams: []UpstreamConfig{
			{Name: "anthropic", BaseURL: "https://api.anthropic.com", APIKey: "sk-ant-test"},
			{Name: "zai", BaseURL: "https://api.z.ai/api/anthropic", APIKey: "zai-test"},
		},
		Fallback: FallbackConfig{
			Candidates: []string{"anthropic/claude-opus-4", "zai/glm-4"},
		},
	}
}

func TestValidateValidConfig(t *testing.T) {
	t.Parallel()

	if err := validConfig().Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestValidateErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{
			name:    "no upstreams",
			mutate:  func(c *Config) { c.Upstreams = nil },
			wantMsg: "at least one upstream is required",
		},
		{
			name: "upstream missing name",
			mutate: func(c *Config) {
				c.Upstreams[0].Name = ""
				c.Fallback.Candidates = []string{"zai/glm-4"}
			},
			wantMsg: "name is required",
		},
		{
			name: "duplicate upstream name",
			mutate: func(c *Config) {
				c.Upstreams[1].Name = "anthropic"
				c.Fallback.Candidates = []string{"anthropic/claude-opus-4"}
			},
			wantMsg: "duplicate name",
		},
		{
			name:    "upstream missing base_url",
			mutate:  func(c *Config) { c.Upstreams[0].BaseURL = "" },
			wantMsg: "base_url is required",
		},
		{
			name:    "upstream bad base_url",
			mutate:  func(c *Config) { c.Upstreams[0].BaseURL = "not a url" },
			wantMsg: "invalid base_url",
		},
		{
			name:    "negative rpm",
			mutate:  func(c *Config) { c.Upstreams[0].RPM = -1 },
			wantMsg: "rpm must be >= 0",
		},
		{
			name:    "no candidates",
			mutate:  func(c *Config) { c.Fallback.Candidates = nil },
			wantMsg: "at least one candidate is required",
		},
		{
			name:    "malformed candidate",
			mutate:  func(c *Config) { c.Fallback.Candidates = []string{"just-a-model"} },
			wantMsg: "is not of the form provider/model",
		},
		{
			name:    "candidate with unknown provider",
			mutate:  func(c *Config) { c.Fallback.Candidates = []string{"missing/claude-opus-4"} },
			wantMsg: `provider "missing" has no matching upstream`,
		},
		{
			name:    "negative max_retries",
			mutate:  func(c *Config) { c.Fallback.MaxRetries = -1 },
			wantMsg: "max_retries",
		},
		{
			name:    "negative retry_delay_ms",
			mutate:  func(c *Config) { c.Fallback.RetryDelayMS = -100 },
			wantMsg: "retry_delay_ms",
		},
		{
			name:    "bad listen address",
			mutate:  func(c *Config) { c.Server.Listen = "no-port" },
			wantMsg: "server.listen",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantMsg: "unknown level",
		},
		{
			name:    "unknown log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantMsg: "unknown format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}

			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Validate() = %q, want message containing %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestValidateCollectsMultipleErrors(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Upstreams[0].BaseURL = ""
	cfg.Fallback.Candidates = []string{"broken"}
	cfg.Logging.Level = "loud"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}

	msg := err.Error()
	for _, want := range []string{"base_url is required", "provider/model", "unknown level"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Validate() = %q, missing %q", msg, want)
		}
	}
}

func TestValidateModelWithSlashes(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Fallback.Candidates = []string{"anthropic/vendor/model-path"}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil for model containing slashes", err)
	}
}
