package di

import "github.com/samber/do/v2"

// RegisterSingletons registers all service providers as singletons.
// Services are registered in dependency order:
// 1. Config (no dependencies)
// 2. Logger (depends on Config)
// 3. HealthTracker (depends on Config, Logger)
// 4. Cooldown (depends on Config, Logger)
// 5. Handler (depends on Config, Logger, HealthTracker, Cooldown)
// 6. Server (depends on Config, Handler).
func RegisterSingletons(i do.Injector) {
	do.Provide(i, NewConfig)
	do.Provide(i, NewLogger)
	do.Provide(i, NewHealthTracker)
	do.Provide(i, NewCooldown)
	do.Provide(i, NewHandler)
	do.Provide(i, NewHTTPServer)
}
