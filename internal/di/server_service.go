package di

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/omarluq/cc-fallback/internal/relay"
)

// ServerService wraps the HTTP server.
type ServerService struct {
	Server *relay.Server
}

// NewHTTPServer creates the HTTP server over the routed handler.
func NewHTTPServer(i do.Injector) (*ServerService, error) {
	cfgSvc := do.MustInvoke[*ConfigService](i)
	handlerSvc := do.MustInvoke[*HandlerService](i)

	cfg := cfgSvc.Get()
	routes := relay.SetupRoutes(handlerSvc.Handler)

	server := relay.NewServer(
		cfg.Server.GetListen(),
		routes,
		cfg.Server.EnableHTTP2,
	)

	return &ServerService{Server: server}, nil
}

// Shutdown implements do.Shutdowner for graceful server shutdown.
func (s *ServerService) Shutdown() error {
	if s.Server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return s.Server.Shutdown(ctx)
	}
	return nil
}
