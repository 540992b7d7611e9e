// Package di wires the Content Client, the AI helper and the services together.
package di

import (
	"github.com/samber/do/v2"

	"stackit/internal/config"
	"stackit/internal/service"
)

// NewContainer creates the container, loading configuration from the environment.
func NewContainer() *do.RootScope {
	injector := do.New()
	do.Provide(injector, ProvideConfig)
	register(injector)
	return injector
}

// NewContainerWithConfig creates the container around an already loaded configuration.
func NewContainerWithConfig(cfg *config.Config) *do.RootScope {
	injector := do.New()
	do.ProvideValue(injector, cfg)
	register(injector)
	return injector
}

func register(injector do.Injector) {
	// Core infrastructure
	do.Provide(injector, ProvideLogger)
	do.Provide(injector, ProvideMetrics)

	// Clients
	do.Provide(injector, ProvideStore)
	do.Provide(injector, ProvideAssistant)

	// Services
	do.Provide(injector, ProvideDashboardService)
	do.Provide(injector, ProvideAnalyticsService)
	do.Provide(injector, ProvideLeaderboardService)
	do.Provide(injector, ProvideProfileService)
	do.Provide(injector, ProvideTagService)
	do.Provide(injector, ProvideNotificationService)
	do.Provide(injector, ProvideSearchService)
	do.Provide(injector, ProvideAssistantService)
}

// Bootstrap builds every service so configuration problems surface before any work starts.
func Bootstrap(injector do.Injector) error {
	if _, err := do.Invoke[*StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.DashboardService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.AnalyticsService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.LeaderboardService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.TagService](injector); err != nil {
		return err
	}
	return nil
}
