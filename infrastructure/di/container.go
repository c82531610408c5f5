package di

import (
	"net/http"

	"go.uber.org/zap"

	"kgraph/application/ports"
	querybus "kgraph/application/queries/bus"
	"kgraph/application/services"
	"kgraph/infrastructure/config"
	"kgraph/infrastructure/observability"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	Source      ports.ExportSource
	Session     *services.GraphSession
	QueryBus    *querybus.QueryBus
	Metrics     *observability.Collector
	Tracing     *observability.TracerProvider
	HTTPHandler http.Handler
}
