package di

import (
	"github.com/samber/do/v2"
	"github.com/samber/lo"

	"github.com/omarluq/cc-fallback/internal/config"
	"github.com/omarluq/cc-fallback/internal/ratelimit"
	"github.com/omarluq/cc-fallback/internal/relay"
	"github.com/omarluq/cc-fallback/internal/upstream"
)

// HandlerService wraps the relay handler for DI.
type HandlerService struct {
	Handler *relay.Handler
}

// NewHandler assembles the relay handler from its collaborators and hooks
// it into config hot-reload so upstream endpoints and limiters follow the
// file.
func NewHandler(i do.Injector) (*HandlerService, error) {
	cfgSvc := do.MustInvoke[*ConfigService](i)
	loggerSvc := do.MustInvoke[*LoggerService](i)
	trackerSvc := do.MustInvoke[*HealthTrackerService](i)
	cooldownSvc := do.MustInvoke[*CooldownService](i)

	cfg := cfgSvc.Get()

	client := upstream.NewClient(cfg.Upstreams)
	limits := ratelimit.NewRegistry(lo.SliceToMap(cfg.Upstreams,
		func(u config.UpstreamConfig) (string, int) { return u.Name, u.RPM }))

	handler := relay.NewHandler(
		cfgSvc,
		client,
		limits,
		trackerSvc.Tracker,
		cooldownSvc.Bench,
		loggerSvc.Logger,
	)

	cfgSvc.OnReload(func(newCfg *config.Config) error {
		handler.Reload(newCfg)
		return nil
	})

	return &HandlerService{Handler: handler}, nil
}
