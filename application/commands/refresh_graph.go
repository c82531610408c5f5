package commands

import (
	"context"

	"go.uber.org/zap"

	"kgraph/application/ports"
	"kgraph/domain/core/aggregates"
)

// RefreshGraphCommand starts a new ingestion from the export source
type RefreshGraphCommand struct {
	Reason string `json:"reason,omitempty" validate:"max=128"`
}

// RefreshGraphResult summarises the store that was published
type RefreshGraphResult struct {
	Generation string                  `json:"generation"`
	NodeCount  int                     `json:"node_count"`
	LinkCount  int                     `json:"link_count"`
	Report     aggregates.IngestReport `json:"report"`
}

// RefreshGraphHandler handles the RefreshGraphCommand
type RefreshGraphHandler struct {
	refresher ports.Refresher
	logger    *zap.Logger
}

// NewRefreshGraphHandler creates a new handler instance
func NewRefreshGraphHandler(refresher ports.Refresher, logger *zap.Logger) *RefreshGraphHandler {
	return &RefreshGraphHandler{
		refresher: refresher,
		logger:    logger,
	}
}

// Handle executes the refresh command. A failed refresh leaves the
// previously published store in place.
func (h *RefreshGraphHandler) Handle(ctx context.Context, cmd RefreshGraphCommand) (*RefreshGraphResult, error) {
	h.logger.Info("Refreshing graph", zap.String("reason", cmd.Reason))

	store, err := h.refresher.Refresh(ctx)
	if err != nil {
		return nil, err
	}

	return &RefreshGraphResult{
		Generation: store.Generation(),
		NodeCount:  store.NodeCount(),
		LinkCount:  store.LinkCount(),
		Report:     store.Report(),
	}, nil
}
