//go:build wireinject
// +build wireinject

package di

import (
	"ChainSight/pkg/config"
	"ChainSight/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideRateLimiter,
		ProvideChainFetcher,
		ProvideAnalysisCache,
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Repositories
		ProvideSnapshotStore,
		ProvideLiveHandler,
		ProvideSignalPublisher,

		// Use cases
		ProvideAnalyzer,
		ProvideBacktester,
		ProvideSnapshotIngestHandler,

		// HTTP surface and application server
		ProvideHandlers,
		ProvideApp,
	)
	return &server.App{}, nil
}
