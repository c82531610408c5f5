package handlers

import (
	"context"

	"go.uber.org/zap"

	"kgraph/application/ports"
	"kgraph/application/queries"
)

// GetGraphStatsHandler reports statistics for the current store
type GetGraphStatsHandler struct {
	provider ports.StoreProvider
	logger   *zap.Logger
}

// NewGetGraphStatsHandler creates a new stats handler
func NewGetGraphStatsHandler(provider ports.StoreProvider, logger *zap.Logger) *GetGraphStatsHandler {
	return &GetGraphStatsHandler{
		provider: provider,
		logger:   logger,
	}
}

// Handle executes the stats query
func (h *GetGraphStatsHandler) Handle(ctx context.Context, query queries.GetGraphStatsQuery) (*queries.GetGraphStatsResult, error) {
	store, err := h.provider.Current(ctx)
	if err != nil {
		return nil, err
	}

	result := &queries.GetGraphStatsResult{
		Generation: store.Generation(),
		BuiltAt:    store.BuiltAt(),
		Stats:      store.Stats(),
		Ingest:     store.Report(),
	}
	if query.IncludeClusters {
		result.Clusters = store.Clusters()
	}
	return result, nil
}
