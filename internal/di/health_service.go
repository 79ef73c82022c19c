package di

import (
	"github.com/samber/do/v2"

	"github.com/omarluq/cc-fallback/internal/health"
)

// HealthTrackerService wraps the per-candidate circuit tracker for DI.
type HealthTrackerService struct {
	Tracker *health.Tracker
}

// NewHealthTracker creates the circuit tracker from configuration.
// Returns a service with a nil Tracker when health tracking is disabled;
// the handler treats a nil tracker as "everything healthy".
func NewHealthTracker(i do.Injector) (*HealthTrackerService, error) {
	cfgSvc := do.MustInvoke[*ConfigService](i)
	loggerSvc := do.MustInvoke[*LoggerService](i)

	cfg := cfgSvc.Get()
	if !cfg.Health.IsEnabled() {
		return &HealthTrackerService{}, nil
	}

	tracker := health.NewTracker(cfg.Health.CircuitBreaker, loggerSvc.Logger)

	return &HealthTrackerService{Tracker: tracker}, nil
}
