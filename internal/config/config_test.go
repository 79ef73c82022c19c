package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestFallbackIsEnabled(t *testing.T) {
	t.Parallel()

	var f FallbackConfig
	if !f.IsEnabled() {
		t.Error("Expected nil enabled to default to true")
	}

	enabled := false
	f.Enabled = &enabled

	if f.IsEnabled() {
		t.Error("Expected explicit false to disable fallback")
	}
}

func TestFallbackGetMaxRetries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value int
		want  int
	}{
		{name: "zero defaults", value: 0, want: DefaultMaxRetries},
		{name: "negative defaults", value: -5, want: DefaultMaxRetries},
		{name: "explicit value", value: 4, want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := FallbackConfig{MaxRetries: tt.value}
			if got := f.GetMaxRetries(); got != tt.want {
				t.Errorf("GetMaxRetries() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFallbackGetRetryDelay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value int
		want  time.Duration
	}{
		{name: "zero means no delay", value: 0, want: 0},
		{name: "negative defaults", value: -1, want: DefaultRetryDelayMS * time.Millisecond},
		{name: "explicit value", value: 250, want: 250 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := FallbackConfig{RetryDelayMS: tt.value}
			if got := f.GetRetryDelay(); got != tt.want {
				t.Errorf("GetRetryDelay() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseCandidates(t *testing.T) {
	t.Parallel()

	f := FallbackConfig{Candidates: []string{"anthropic/claude-opus-4", "zai/glm-4"}}

	candidates, err := f.ParseCandidates()
	if err != nil {
		t.Fatalf("ParseCandidates() error = %v", err)
	}

	if len(candidates) != 2 {
		t.Fatalf("Expected 2 candidates, got %d", len(candidates))
	}

	if candidates[0].Provider != "anthropic" || candidates[0].Model != "claude-opus-4" {
		t.Errorf("candidates[0] = %+v", candidates[0])
	}
}

func TestParseCandidatesReportsEachBadEntry(t *testing.T) {
	t.Parallel()

	f := FallbackConfig{Candidates: []string{"ok-provider/model", "bad", "/also-bad"}}

	_, err := f.ParseCandidates()
	if err == nil {
		t.Fatal("ParseCandidates() = nil, want error")
	}

	verr, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("ParseCandidates() error type = %T, want *ValidationError", err)
	}

	if len(verr.Errors) != 2 {
		t.Errorf("Expected 2 errors, got %d: %v", len(verr.Errors), verr.Errors)
	}
}

func TestUpstreamGetTimeoutOption(t *testing.T) {
	t.Parallel()

	var u UpstreamConfig
	if u.GetTimeoutOption().IsPresent() {
		t.Error("Expected None for unset timeout")
	}

	fallback := DefaultUpstreamTimeoutMS * time.Millisecond
	if got := u.GetTimeoutOption().OrElse(fallback); got != fallback {
		t.Errorf("OrElse(default) = %v, want %v for unset timeout", got, fallback)
	}

	u.TimeoutMS = 5000

	d, ok := u.GetTimeoutOption().Get()
	if !ok || d != 5*time.Second {
		t.Errorf("GetTimeoutOption() = (%v, %v), want (5s, true)", d, ok)
	}

	if got := u.GetTimeoutOption().OrElse(fallback); got != 5*time.Second {
		t.Errorf("OrElse(default) = %v, want 5s for explicit timeout", got)
	}
}

func TestConfigUpstreamLookup(t *testing.T) {
	t.Parallel()

	cfg := validConfig()

	u, found := cfg.Upstream("zai")
	if !found || u.Name != "zai" {
		t.Errorf("Upstream(zai) = (%+v, %v), want found", u, found)
	}

	if _, found := cfg.Upstream("missing"); found {
		t.Error("Upstream(missing) found, want not found")
	}
}

func TestLoggingParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"WARN", zerolog.WarnLevel},
		{"", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		l := LoggingConfig{Level: tt.level}
		if got := l.ParseLevel(); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestServerGetListen(t *testing.T) {
	t.Parallel()

	var s ServerConfig
	if got := s.GetListen(); got != DefaultListen {
		t.Errorf("GetListen() = %q, want %q", got, DefaultListen)
	}

	s.Listen = "0.0.0.0:9000"
	if got := s.GetListen(); got != "0.0.0.0:9000" {
		t.Errorf("GetListen() = %q, want 0.0.0.0:9000", got)
	}
}
