//go:build wireinject
// +build wireinject

package di

import (
	"artifactd/internal"
	"artifactd/internal/controllers"
	"artifactd/internal/providers"
	"artifactd/internal/refresh"
	"artifactd/internal/services"
	"artifactd/internal/structures"
	"artifactd/internal/upstream"

	wire "github.com/google/wire"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,
		providers.NewClockProvider,

		upstream.NewClient,
		services.NewArtifactService,
		refresh.NewZstdCompressor,
		refresh.NewFileManager,
		refresh.NewScheduler,
		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
