package di

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"kgraph/application/commands"
	"kgraph/application/ingest"
	"kgraph/application/ports"
	"kgraph/application/queries"
	querybus "kgraph/application/queries/bus"
	"kgraph/application/queries/handlers"
	"kgraph/application/services"
	"kgraph/infrastructure/config"
	"kgraph/infrastructure/exportsource"
	"kgraph/infrastructure/observability"
	"kgraph/interfaces/http/rest"
	pkgerrors "kgraph/pkg/errors"
)

const metricsNamespace = "kgraph"

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}

// ProvideExportSource creates the configured export source
func ProvideExportSource(cfg *config.Config, logger *zap.Logger) (ports.ExportSource, error) {
	switch cfg.ExportSource {
	case config.SourceFile:
		return exportsource.NewFileSource(cfg.ExportFile, logger.Named("export-file"))
	case config.SourceHTTP:
		return exportsource.NewHTTPSource(exportsource.HTTPConfig{
			BaseURL:      cfg.BackendURL,
			Path:         cfg.ExportPath,
			Timeout:      cfg.FetchTimeout,
			MaxBodyBytes: cfg.MaxExportBytes,
			Breaker: exportsource.BreakerConfig{
				MaxRequests:      cfg.BreakerMaxRequests,
				Interval:         cfg.BreakerInterval,
				Timeout:          cfg.BreakerTimeout,
				FailureThreshold: cfg.BreakerFailureThreshold,
				MinRequests:      cfg.BreakerMinRequests,
			},
		}, &http.Client{Timeout: cfg.FetchTimeout}, logger.Named("export-http"))
	default:
		return nil, fmt.Errorf("unknown export source %q", cfg.ExportSource)
	}
}

// ProvideTransformer creates the ingestion transformer
func ProvideTransformer(logger *zap.Logger) *ingest.Transformer {
	return ingest.NewTransformer(logger.Named("ingest"))
}

// ProvideMetrics creates the Prometheus collector, or nil when metrics are disabled
func ProvideMetrics(cfg *config.Config) *observability.Collector {
	if !cfg.EnableMetrics {
		return nil
	}
	return observability.NewCollector(metricsNamespace)
}

// ProvideIngestMetrics adapts the collector to the session's metrics port
func ProvideIngestMetrics(collector *observability.Collector) ports.IngestMetrics {
	if collector == nil {
		return ports.NopIngestMetrics{}
	}
	return collector
}

// ProvideTracing installs the OTLP tracer provider when tracing is enabled.
// The cleanup flushes pending spans.
func ProvideTracing(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*observability.TracerProvider, func(), error) {
	if !cfg.EnableTracing {
		return nil, func() {}, nil
	}

	tp, err := observability.InitTracing(ctx, observability.TracingConfig{
		ServiceName: metricsNamespace,
		Environment: cfg.Environment,
		Endpoint:    cfg.OTLPEndpoint,
	}, logger)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Warn("Failed to flush traces", zap.Error(err))
		}
	}
	return tp, cleanup, nil
}

// ProvideGraphSession creates the session owning the graph store
func ProvideGraphSession(
	source ports.ExportSource,
	transformer *ingest.Transformer,
	metrics ports.IngestMetrics,
	logger *zap.Logger,
) *services.GraphSession {
	return services.NewGraphSession(source, transformer, metrics, logger.Named("session"))
}

// ProvideRefreshHandler creates the refresh command handler
func ProvideRefreshHandler(refresher ports.Refresher, logger *zap.Logger) *commands.RefreshGraphHandler {
	return commands.NewRefreshGraphHandler(refresher, logger)
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	provider ports.StoreProvider,
	collector *observability.Collector,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	var middlewares []querybus.Middleware
	if collector != nil {
		middlewares = append(middlewares, querybus.NewMetricsMiddleware(collector))
	}
	queryBus := querybus.NewQueryBus(middlewares...)

	getGraphDataHandler := handlers.NewGetGraphDataHandler(provider, logger)
	if err := queryBus.Register(queries.GetGraphDataQuery{}, querybus.Typed(getGraphDataHandler.Handle)); err != nil {
		return nil, err
	}

	getNeighborsHandler := handlers.NewGetNeighborsHandler(provider, logger)
	if err := queryBus.Register(queries.GetNeighborsQuery{}, querybus.Typed(getNeighborsHandler.Handle)); err != nil {
		return nil, err
	}

	getNodeDetailHandler := handlers.NewGetNodeDetailHandler(provider, logger)
	if err := queryBus.Register(queries.GetNodeDetailQuery{}, querybus.Typed(getNodeDetailHandler.Handle)); err != nil {
		return nil, err
	}

	getGraphStatsHandler := handlers.NewGetGraphStatsHandler(provider, logger)
	if err := queryBus.Register(queries.GetGraphStatsQuery{}, querybus.Typed(getGraphStatsHandler.Handle)); err != nil {
		return nil, err
	}

	return queryBus, nil
}

// ProvideErrorHandler creates the HTTP error handler
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *pkgerrors.ErrorHandler {
	return pkgerrors.NewErrorHandler(logger, cfg.IsDevelopment())
}

// ProvideHTTPHandler builds the chi router
func ProvideHTTPHandler(router *rest.Router) http.Handler {
	return router.Setup()
}
