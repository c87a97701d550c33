//go:build wireinject
// +build wireinject

package di

import (
	"CoinBoard/pkg/config"
	"CoinBoard/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Upstream and cache
		ProvideRateLimiter,
		ProvideMarketSource,
		ProvideSecondTier,
		ProvideTTLCache,

		// Use cases
		ProvideMarketData,
		ProvideController,
		ProvideScheduler,

		// Transport
		ProvideDashboardHandler,
		ProvideHTTPServer,

		ProvideApp,
	)
	return nil, nil, nil
}
