package handlers

import (
	"context"

	"go.uber.org/zap"

	"kgraph/application/ports"
	"kgraph/application/queries"
	"kgraph/domain/services"
)

// GetNodeDetailHandler resolves the detail panel for a selected node
type GetNodeDetailHandler struct {
	provider ports.StoreProvider
	logger   *zap.Logger
}

// NewGetNodeDetailHandler creates a new node detail handler
func NewGetNodeDetailHandler(provider ports.StoreProvider, logger *zap.Logger) *GetNodeDetailHandler {
	return &GetNodeDetailHandler{
		provider: provider,
		logger:   logger,
	}
}

// Handle executes the node detail query. Stale ids are routine, so a node
// absent from the current store yields empty connection lists.
func (h *GetNodeDetailHandler) Handle(ctx context.Context, query queries.GetNodeDetailQuery) (*queries.GetNodeDetailResult, error) {
	store, err := h.provider.Current(ctx)
	if err != nil {
		return nil, err
	}

	detail := services.Detail(store, query.NodeID)
	if detail.Node == nil {
		h.logger.Debug("Selected node not in store",
			zap.String("nodeID", query.NodeID),
			zap.String("generation", store.Generation()),
		)
		return &queries.GetNodeDetailResult{
			Incoming: []queries.ConnectionView{},
			Outgoing: []queries.ConnectionView{},
		}, nil
	}

	return &queries.GetNodeDetailResult{
		Node:             detail.Node,
		Incoming:         toConnectionViews(detail.Incoming, query.NodeID),
		Outgoing:         toConnectionViews(detail.Outgoing, query.NodeID),
		TotalConnections: detail.Total(),
	}, nil
}

func toConnectionViews(conns []services.Connection, selectedID string) []queries.ConnectionView {
	views := make([]queries.ConnectionView, 0, len(conns))
	for _, c := range conns {
		view := queries.ConnectionView{
			LinkID:           c.LinkID,
			NodeID:           c.OtherID(selectedID),
			NodeName:         c.DisplayName(selectedID),
			Relationship:     c.Label,
			RelationshipType: c.Link.DisplayType(),
		}
		if c.Node != nil {
			view.NodeType = c.Node.Type
		}
		views = append(views, view)
	}
	return views
}
