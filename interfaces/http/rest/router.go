package rest

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"kgraph/application/commands"
	querybus "kgraph/application/queries/bus"
	"kgraph/domain/core/aggregates"
	"kgraph/infrastructure/config"
	"kgraph/infrastructure/observability"
	"kgraph/interfaces/http/rest/handlers"
	"kgraph/interfaces/http/rest/middleware"
	pkgerrors "kgraph/pkg/errors"
)

// SnapshotSource reports the currently published store, if any
type SnapshotSource interface {
	Snapshot() *aggregates.Store
}

// Router creates and configures the HTTP router
type Router struct {
	queryBus   *querybus.QueryBus
	refresh    *commands.RefreshGraphHandler
	snapshots  SnapshotSource
	metrics    *observability.Collector
	errHandler *pkgerrors.ErrorHandler
	cfg        *config.Config
	logger     *zap.Logger
}

// NewRouter creates a new router instance. metrics may be nil when metrics
// are disabled.
func NewRouter(
	queryBus *querybus.QueryBus,
	refresh *commands.RefreshGraphHandler,
	snapshots SnapshotSource,
	metrics *observability.Collector,
	errHandler *pkgerrors.ErrorHandler,
	cfg *config.Config,
	logger *zap.Logger,
) *Router {
	return &Router{
		queryBus:   queryBus,
		refresh:    refresh,
		snapshots:  snapshots,
		metrics:    metrics,
		errHandler: errHandler,
		cfg:        cfg,
		logger:     logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(rt.errHandler.Middleware)
	router.Use(middleware.Logger(rt.logger))
	if rt.metrics != nil {
		router.Use(rt.metrics.HTTPMiddleware)
	}

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   rt.cfg.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.metrics != nil {
		router.Method(http.MethodGet, "/metrics", rt.metrics.Handler())
	}

	graphHandler := handlers.NewGraphHandler(rt.queryBus, rt.refresh, rt.errHandler, rt.logger)

	router.Route("/api/v1", func(r chi.Router) {
		if rt.cfg.AuthEnabled() {
			r.Use(middleware.Authenticate(middleware.AuthConfig{
				Secret: rt.cfg.JWTSecret,
				Issuer: rt.cfg.JWTIssuer,
			}, rt.errHandler, rt.logger))
		}

		r.Route("/graph-data", func(r chi.Router) {
			r.Get("/", graphHandler.GetGraphData)
			r.Post("/refresh", graphHandler.Refresh)
			r.Get("/stats", graphHandler.GetStats)
		})

		r.Get("/neighbors", graphHandler.GetNeighbors)

		r.Route("/nodes/{nodeID}", func(r chi.Router) {
			r.Get("/neighbors", graphHandler.GetNeighbors)
			r.Get("/detail", graphHandler.GetNodeDetail)
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		rt.errHandler.HandleStatus(w, r, http.StatusNotFound, "route not found")
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck reports ready once a store has been published
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	store := rt.snapshots.Snapshot()
	if store == nil {
		rt.errHandler.HandleStatus(w, req, http.StatusServiceUnavailable, "graph not loaded")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]any{
		"status":     "ready",
		"generation": store.Generation(),
		"nodes":      store.NodeCount(),
		"links":      store.LinkCount(),
	})
}
