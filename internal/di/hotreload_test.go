package di_test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/omarluq/cc-fallback/internal/config"
	"github.com/omarluq/cc-fallback/internal/di"
)

func TestConfigServiceHotReload(t *testing.T) {
	t.Parallel()

	configPath := createTempConfigFile(t, validConfig)

	container, err := di.NewContainer(configPath)
	require.NoError(t, err)
	t.Cleanup(func() { shutdownContainer(t, container) })

	cfgSvc, err := di.Invoke[*di.ConfigService](container)
	require.NoError(t, err)
	require.Equal(t, 2, cfgSvc.Get().Fallback.MaxRetries)

	reloaded := make(chan *config.Config, 1)
	cfgSvc.OnReload(func(cfg *config.Config) error {
		select {
		case reloaded <- cfg:
		default:
		}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cfgSvc.StartWatching(ctx)

	// Let the watcher goroutine settle before the write.
	time.Sleep(50 * time.Millisecond)

	updated := strings.Replace(validConfig, "max_retries: 2", "max_retries: 5", 1)
	require.NoError(t, os.WriteFile(configPath, []byte(updated), 0o600))

	select {
	case cfg := <-reloaded:
		require.Equal(t, 5, cfg.Fallback.MaxRetries)
	case <-time.After(3 * time.Second):
		t.Fatal("reload callback not invoked within timeout")
	}

	// The atomic swap happens before user callbacks run.
	require.Equal(t, 5, cfgSvc.Get().Fallback.MaxRetries)
}
