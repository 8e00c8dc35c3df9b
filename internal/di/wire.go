//go:build wireinject
// +build wireinject

package di

import (
	"github.com/davidromeo/tradeblocks-sub006/pkg/config"
	"github.com/davidromeo/tradeblocks-sub006/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Store
		ProvideDuckDB,
		ProvideMarketStore,
		ProvideBlockStore,
		ProvideProvenanceStore,

		// Event fan-out
		ProvideKafkaProducer,
		ProvideStatusHub,
		ProvideEventPublisher,

		// Caching and schedules
		ProvideCache,
		ProvideSchedules,

		// Use cases
		ProvideEnricher,
		ProvideImporter,
		ProvideBlockSyncer,
		ProvideQueryService,

		// HTTP
		ProvideRateLimiter,
		ProvidePipelineHandler,

		// Async enrichment
		ProvideKafkaConsumer,
		ProvideEnrichmentHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
