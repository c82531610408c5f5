package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"kgraph/application/ports"
	"kgraph/application/queries"
	"kgraph/domain/services"
)

// GetGraphDataHandler handles graph data visualization queries
type GetGraphDataHandler struct {
	provider ports.StoreProvider
	logger   *zap.Logger
}

// NewGetGraphDataHandler creates a new graph data handler
func NewGetGraphDataHandler(provider ports.StoreProvider, logger *zap.Logger) *GetGraphDataHandler {
	return &GetGraphDataHandler{
		provider: provider,
		logger:   logger,
	}
}

// Handle executes the graph data query
func (h *GetGraphDataHandler) Handle(ctx context.Context, query queries.GetGraphDataQuery) (*queries.GetGraphDataResult, error) {
	criteria, err := query.Criteria()
	if err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	store, err := h.provider.Current(ctx)
	if err != nil {
		return nil, err
	}

	subgraph := services.Filter(store, criteria)

	h.logger.Debug("Graph data filtered",
		zap.String("generation", store.Generation()),
		zap.Int("activeTypes", len(criteria.ActiveTypes)),
		zap.String("search", criteria.SearchQuery),
		zap.Int("visibleNodes", len(subgraph.Nodes)),
		zap.Int("visibleLinks", len(subgraph.Links)),
	)

	return &queries.GetGraphDataResult{
		Generation: store.Generation(),
		Nodes:      subgraph.Nodes,
		Links:      subgraph.Links,
		TotalNodes: store.NodeCount(),
		TotalLinks: store.LinkCount(),
	}, nil
}
