package handlers

import (
	"context"
	"slices"

	"go.uber.org/zap"

	"kgraph/application/ports"
	"kgraph/application/queries"
	"kgraph/domain/core/entities"
	"kgraph/domain/services"
)

// GetNeighborsHandler resolves hover highlighting
type GetNeighborsHandler struct {
	provider ports.StoreProvider
	logger   *zap.Logger
}

// NewGetNeighborsHandler creates a new neighbors handler
func NewGetNeighborsHandler(provider ports.StoreProvider, logger *zap.Logger) *GetNeighborsHandler {
	return &GetNeighborsHandler{
		provider: provider,
		logger:   logger,
	}
}

// Handle executes the neighbors query
func (h *GetNeighborsHandler) Handle(ctx context.Context, query queries.GetNeighborsQuery) (*queries.GetNeighborsResult, error) {
	result := &queries.GetNeighborsResult{
		ConnectedNodeIDs: []string{},
		TouchingLinks:    []queries.LinkView{},
	}
	if query.NodeID == "" {
		return result, nil
	}

	store, err := h.provider.Current(ctx)
	if err != nil {
		return nil, err
	}

	hood := services.Neighbors(store, query.NodeID)
	result.Focused = hood.Focused
	result.FocalID = hood.FocalID

	for id := range hood.ConnectedNodeIDs {
		result.ConnectedNodeIDs = append(result.ConnectedNodeIDs, id)
	}
	slices.Sort(result.ConnectedNodeIDs)

	linkIDs := make([]entities.LinkID, 0, len(hood.TouchingLinkIDs))
	for id := range hood.TouchingLinkIDs {
		linkIDs = append(linkIDs, id)
	}
	slices.Sort(linkIDs)
	for _, id := range linkIDs {
		if link, ok := store.Link(id); ok {
			result.TouchingLinks = append(result.TouchingLinks, queries.LinkView{ID: id, GraphLink: link})
		}
	}

	h.logger.Debug("Neighborhood resolved",
		zap.String("nodeID", query.NodeID),
		zap.Int("connected", len(result.ConnectedNodeIDs)),
		zap.Int("links", len(result.TouchingLinks)),
	)

	return result, nil
}
