//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"kgraph/application/ports"
	"kgraph/application/services"
	"kgraph/infrastructure/config"
	"kgraph/interfaces/http/rest"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideExportSource,
	ProvideTransformer,
	ProvideMetrics,
	ProvideIngestMetrics,
	ProvideTracing,
	ProvideGraphSession,
	wire.Bind(new(ports.StoreProvider), new(*services.GraphSession)),
	wire.Bind(new(ports.Refresher), new(*services.GraphSession)),
	wire.Bind(new(rest.SnapshotSource), new(*services.GraphSession)),
	ProvideRefreshHandler,
	ProvideQueryBus,
	ProvideErrorHandler,
	rest.NewRouter,
	ProvideHTTPHandler,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil // Wire will replace this
}

