// Package di wires cc-fallback services into a samber/do container.
package di

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"github.com/samber/do/v2"

	"github.com/omarluq/cc-fallback/internal/config"
)

// ConfigPathKey is the named injection key for the config file path.
const ConfigPathKey = "config.path"

// ConfigService wraps the loaded configuration with hot-reload support.
// Lock-free reads: in-flight requests keep the snapshot they loaded while
// new requests observe reloaded config.
type ConfigService struct {
	config  atomic.Pointer[config.Config]
	watcher *config.Watcher
	path    string
}

// Get returns the current configuration via atomic load.
func (c *ConfigService) Get() *config.Config {
	return c.config.Load()
}

// Path returns the config file path.
func (c *ConfigService) Path() string {
	return c.path
}

// OnReload registers an additional reload callback, invoked after the
// atomic config swap.
func (c *ConfigService) OnReload(cb config.ReloadCallback) {
	if c.watcher != nil {
		c.watcher.OnReload(cb)
	}
}

// StartWatching begins watching the config file for changes. Call after the
// container is fully initialized; cancel ctx to stop watching.
func (c *ConfigService) StartWatching(ctx context.Context) {
	if c.watcher == nil {
		return
	}

	go func() {
		if err := c.watcher.Watch(ctx); err != nil {
			log.Error().Err(err).Msg("config watcher error")
		}
	}()

	log.Info().Str("path", c.path).Msg("config file watcher started")
}

// Shutdown implements do.Shutdowner for graceful watcher cleanup.
func (c *ConfigService) Shutdown() error {
	if c.watcher != nil {
		return c.watcher.Close()
	}
	return nil
}

var _ config.RuntimeConfig = (*ConfigService)(nil)

// NewConfig loads and validates configuration from the injected path and
// creates the file watcher. The watcher swaps the config atomically on each
// successful reload; StartWatching must be called to activate it.
func NewConfig(i do.Injector) (*ConfigService, error) {
	path := do.MustInvokeNamed[string](i, ConfigPathKey)

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	svc := &ConfigService{path: path}
	svc.config.Store(cfg)

	watcher, err := config.NewWatcher(path)
	if err != nil {
		// Watcher failure is not fatal; hot reload is just unavailable.
		log.Warn().Err(err).Str("path", path).Msg("config watcher unavailable")
		return svc, nil
	}

	watcher.OnReload(func(newCfg *config.Config) error {
		svc.config.Store(newCfg)
		log.Info().Str("path", path).Msg("config hot-reloaded successfully")
		return nil
	})
	svc.watcher = watcher

	return svc, nil
}
