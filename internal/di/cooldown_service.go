package di

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/omarluq/cc-fallback/internal/cooldown"
)

// CooldownService wraps the candidate bench for DI.
type CooldownService struct {
	Bench *cooldown.Bench
}

// NewCooldown creates the cooldown bench from configuration.
// Returns a service with a nil Bench when cooldown is disabled.
func NewCooldown(i do.Injector) (*CooldownService, error) {
	cfgSvc := do.MustInvoke[*ConfigService](i)
	loggerSvc := do.MustInvoke[*LoggerService](i)

	cfg := cfgSvc.Get()
	if !cfg.Cooldown.IsEnabled() {
		return &CooldownService{}, nil
	}

	bench, err := cooldown.NewBench(cfg.Cooldown, loggerSvc.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create cooldown bench: %w", err)
	}

	return &CooldownService{Bench: bench}, nil
}

// Shutdown implements do.Shutdowner.
func (s *CooldownService) Shutdown() error {
	if s.Bench != nil {
		s.Bench.Close()
	}
	return nil
}
