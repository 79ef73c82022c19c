package di_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omarluq/cc-fallback/internal/di"
)

// shutdownContainer shuts down the container and logs any error (for use in t.Cleanup).
func shutdownContainer(t *testing.T, container *di.Container) {
	t.Helper()
	if err := container.Shutdown(); err != nil {
		t.Logf("container shutdown: %v", err)
	}
}

// validConfig is a minimal valid configuration for testing.
const validConfig = `
server:
  listen: "127.0.0.1:8787"

logging:
  level: info
  format: json

upstreams:
  - name: anthropic
    base_url: https://api.anthropic.com
    api_key: test-key-1
  - name: zai
    base_url: https://api.z.ai/api/anthropic
    api_key: test-key-2

fallback:
  candidates:
    - anthropic/claude-opus-4
    - zai/glm-4
  max_retries: 2
  retry_delay_ms: 100
`

// createTempConfigFile creates a temporary config file for testing.
func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNewContainer(t *testing.T) {
	t.Parallel()

	t.Run("creates container with valid config", func(t *testing.T) {
		t.Parallel()
		configPath := createTempConfigFile(t, validConfig)

		container, err := di.NewContainer(configPath)
		require.NoError(t, err)
		require.NotNil(t, container)
		t.Cleanup(func() { shutdownContainer(t, container) })

		assert.NotNil(t, container.Injector())
	})

	t.Run("config errors surface on first invoke", func(t *testing.T) {
		t.Parallel()

		// Provider registration is lazy: a bad path fails at resolution,
		// not construction.
		container, err := di.NewContainer("/nonexistent/config.yaml")
		require.NoError(t, err)
		t.Cleanup(func() { shutdownContainer(t, container) })

		_, err = di.Invoke[*di.ConfigService](container)
		require.Error(t, err)
	})

	t.Run("rejects invalid config", func(t *testing.T) {
		t.Parallel()
		configPath := createTempConfigFile(t, "fallback:\n  candidates: []\n")

		container, err := di.NewContainer(configPath)
		require.NoError(t, err)
		t.Cleanup(func() { shutdownContainer(t, container) })

		_, err = di.Invoke[*di.ConfigService](container)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least one")
	})
}

func TestContainerResolvesServices(t *testing.T) {
	t.Parallel()

	configPath := createTempConfigFile(t, validConfig)

	container, err := di.NewContainer(configPath)
	require.NoError(t, err)
	t.Cleanup(func() { shutdownContainer(t, container) })

	cfgSvc, err := di.Invoke[*di.ConfigService](container)
	require.NoError(t, err)
	assert.Equal(t, configPath, cfgSvc.Path())
	require.NotNil(t, cfgSvc.Get())
	assert.Len(t, cfgSvc.Get().Upstreams, 2)

	loggerSvc, err := di.Invoke[*di.LoggerService](container)
	require.NoError(t, err)
	assert.NotNil(t, loggerSvc.Logger)

	trackerSvc, err := di.Invoke[*di.HealthTrackerService](container)
	require.NoError(t, err)
	assert.NotNil(t, trackerSvc.Tracker)

	cooldownSvc, err := di.Invoke[*di.CooldownService](container)
	require.NoError(t, err)
	assert.NotNil(t, cooldownSvc.Bench)

	handlerSvc, err := di.Invoke[*di.HandlerService](container)
	require.NoError(t, err)
	assert.NotNil(t, handlerSvc.Handler)

	serverSvc, err := di.Invoke[*di.ServerService](container)
	require.NoError(t, err)
	require.NotNil(t, serverSvc.Server)
	assert.Equal(t, "127.0.0.1:8787", serverSvc.Server.Addr())
}

func TestContainerDisabledSubsystems(t *testing.T) {
	t.Parallel()

	disabledConfig := validConfig + `
health:
  enabled: false

cooldown:
  enabled: false
`
	configPath := createTempConfigFile(t, disabledConfig)

	container, err := di.NewContainer(configPath)
	require.NoError(t, err)
	t.Cleanup(func() { shutdownContainer(t, container) })

	trackerSvc, err := di.Invoke[*di.HealthTrackerService](container)
	require.NoError(t, err)
	assert.Nil(t, trackerSvc.Tracker)

	cooldownSvc, err := di.Invoke[*di.CooldownService](container)
	require.NoError(t, err)
	assert.Nil(t, cooldownSvc.Bench)

	// The handler tolerates nil tracker and bench.
	handlerSvc, err := di.Invoke[*di.HandlerService](container)
	require.NoError(t, err)
	assert.NotNil(t, handlerSvc.Handler)
}

func TestContainerShutdown(t *testing.T) {
	t.Parallel()

	configPath := createTempConfigFile(t, validConfig)

	container, err := di.NewContainer(configPath)
	require.NoError(t, err)

	// Materialize services so shutdown has something to unwind.
	_, err = di.Invoke[*di.ServerService](container)
	require.NoError(t, err)

	require.NoError(t, container.Shutdown())
}
