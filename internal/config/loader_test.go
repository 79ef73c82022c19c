package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadValidYAML(t *testing.T) {
	t.Parallel()

	yamlContent := `
server:
  listen: "127.0.0.1:9090"
  enable_http2: true

upstreams:
  - name: "anthropic"
    base_url: "https://api.anthropic.com"
    api_key: "sk-ant-test"
    timeout_ms: 60000
    rpm: 50
  - name: "zai"
    base_url: "https://api.z.ai/api/anthropic"
    api_key: "zai-test"

fallback:
  enabled: true
  candidates:
    - "anthropic/claude-opus-4"
    - "zai/glm-4"
  max_retries: 2
  retry_delay_ms: 500
  log_attempts: true

logging:
  level: "debug"
  format: "console"
`

	cfg, err := LoadFromReader(strings.NewReader(yamlContent), FormatYAML)
	if err != nil {
		t.Fatalf("LoadFromReader failed: %v", err)
	}

	if cfg.Server.Listen != "127.0.0.1:9090" {
		t.Errorf("Expected listen=127.0.0.1:9090, got %s", cfg.Server.Listen)
	}

	if !cfg.Server.EnableHTTP2 {
		t.Error("Expected enable_http2=true, got false")
	}

	if len(cfg.Upstreams) != 2 {
		t.Fatalf("Expected 2 upstreams, got %d", len(cfg.Upstreams))
	}

	anthropic := cfg.Upstreams[0]
	if anthropic.Name != "anthropic" {
		t.Errorf("Expected upstream name=anthropic, got %s", anthropic.Name)
	}

	if anthropic.BaseURL != "https://api.anthropic.com" {
		t.Errorf("Expected anthropic base_url, got %s", anthropic.BaseURL)
	}

	if anthropic.APIKey != "sk-ant-test" {
		t.Errorf("Expected api_key=sk-ant-test, got %s", anthropic.APIKey)
	}

	if anthropic.TimeoutMS != 60000 {
		t.Errorf("Expected timeout_ms=60000, got %d", anthropic.TimeoutMS)
	}

	if anthropic.RPM != 50 {
		t.Errorf("Expected rpm=50, got %d", anthropic.RPM)
	}

	if !cfg.Fallback.IsEnabled() {
		t.Error("Expected fallback enabled")
	}

	if len(cfg.Fallback.Candidates) != 2 {
		t.Fatalf("Expected 2 candidates, got %d", len(cfg.Fallback.Candidates))
	}

	if cfg.Fallback.Candidates[0] != "anthropic/claude-opus-4" {
		t.Errorf("Expected primary candidate anthropic/claude-opus-4, got %s", cfg.Fallback.Candidates[0])
	}

	if cfg.Fallback.MaxRetries != 2 {
		t.Errorf("Expected max_retries=2, got %d", cfg.Fallback.MaxRetries)
	}

	if cfg.Fallback.RetryDelayMS != 500 {
		t.Errorf("Expected retry_delay_ms=500, got %d", cfg.Fallback.RetryDelayMS)
	}

	if !cfg.Fallback.LogAttempts {
		t.Error("Expected log_attempts=true, got false")
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("Expected level=debug, got %s", cfg.Logging.Level)
	}
}

func TestLoadValidTOML(t *testing.T) {
	t.Parallel()

	tomlContent := `
[server]
listen = "0.0.0.0:8787"

[[upstreams]]
name = "anthropic"
base_url = "https://api.anthropic.com"
api_key = "sk-ant-test"

[fallback]
candidates = ["anthropic/claude-opus-4"]
max_retries = 3
`

	cfg, err := LoadFromReader(strings.NewReader(tomlContent), FormatTOML)
	if err != nil {
		t.Fatalf("LoadFromReader failed: %v", err)
	}

	if cfg.Server.Listen != "0.0.0.0:8787" {
		t.Errorf("Expected listen=0.0.0.0:8787, got %s", cfg.Server.Listen)
	}

	if len(cfg.Upstreams) != 1 || cfg.Upstreams[0].Name != "anthropic" {
		t.Fatalf("Expected 1 anthropic upstream, got %+v", cfg.Upstreams)
	}

	if cfg.Fallback.MaxRetries != 3 {
		t.Errorf("Expected max_retries=3, got %d", cfg.Fallback.MaxRetries)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	t.Parallel()

	if _, err := LoadFromReader(strings.NewReader("{invalid: [yaml"), FormatYAML); err == nil {
		t.Error("Expected error for invalid YAML, got nil")
	}
}

func TestLoadEnvExpansion(t *testing.T) {
	t.Setenv("CC_FALLBACK_TEST_KEY", "expanded-secret")

	yamlContent := `
upstreams:
  - name: "anthropic"
    base_url: "https://api.anthropic.com"
    api_key: "${CC_FALLBACK_TEST_KEY}"
`

	cfg, err := LoadFromReader(strings.NewReader(yamlContent), FormatYAML)
	if err != nil {
		t.Fatalf("LoadFromReader failed: %v", err)
	}

	if cfg.Upstreams[0].APIKey != "expanded-secret" {
		t.Errorf("Expected expanded api_key, got %s", cfg.Upstreams[0].APIKey)
	}
}

func TestLoadFromFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
upstreams:
  - name: "anthropic"
    base_url: "https://api.anthropic.com"

fallback:
  candidates: ["anthropic/claude-opus-4"]
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(cfg.Upstreams) != 1 {
		t.Errorf("Expected 1 upstream, got %d", len(cfg.Upstreams))
	}
}

func TestLoadTOMLByExtension(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[[upstreams]]
name = "anthropic"
base_url = "https://api.anthropic.com"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(cfg.Upstreams) != 1 || cfg.Upstreams[0].Name != "anthropic" {
		t.Errorf("Expected anthropic upstream from TOML, got %+v", cfg.Upstreams)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("Expected error for missing file, got nil")
	}
}
