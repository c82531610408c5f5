package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"kgraph/application/commands"
	"kgraph/application/queries"
	querybus "kgraph/application/queries/bus"
	pkgerrors "kgraph/pkg/errors"
)

// GraphHandler handles graph-related HTTP requests
type GraphHandler struct {
	queryBus   *querybus.QueryBus
	refresh    *commands.RefreshGraphHandler
	errHandler *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

// NewGraphHandler creates a new graph handler
func NewGraphHandler(
	queryBus *querybus.QueryBus,
	refresh *commands.RefreshGraphHandler,
	errHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *GraphHandler {
	return &GraphHandler{
		queryBus:   queryBus,
		refresh:    refresh,
		errHandler: errHandler,
		logger:     logger,
	}
}

// GetGraphData handles GET /graph-data?types=A,B&q=text
//
// Without a types parameter every node type is shown; an empty one shows none.
func (h *GraphHandler) GetGraphData(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	query := queries.GetGraphDataQuery{
		Types:  parseTypes(params),
		Search: params.Get("q"),
	}

	h.ask(w, r, query)
}

// GetNeighbors handles GET /nodes/{nodeID}/neighbors and GET /neighbors
func (h *GraphHandler) GetNeighbors(w http.ResponseWriter, r *http.Request) {
	h.ask(w, r, queries.GetNeighborsQuery{NodeID: chi.URLParam(r, "nodeID")})
}

// GetNodeDetail handles GET /nodes/{nodeID}/detail
func (h *GraphHandler) GetNodeDetail(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeID")
	if nodeID == "" {
		h.errHandler.Handle(w, r, pkgerrors.NewValidationError("node ID is required"))
		return
	}
	h.ask(w, r, queries.GetNodeDetailQuery{NodeID: nodeID})
}

// GetStats handles GET /graph-data/stats?clusters=true
func (h *GraphHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	includeClusters, _ := strconv.ParseBool(r.URL.Query().Get("clusters"))
	h.ask(w, r, queries.GetGraphStatsQuery{IncludeClusters: includeClusters})
}

// Refresh handles POST /graph-data/refresh
func (h *GraphHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	cmd := commands.RefreshGraphCommand{Reason: "api"}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
			h.errHandler.Handle(w, r, pkgerrors.NewValidationError("invalid request body").WithCause(err))
			return
		}
	}

	result, err := h.refresh.Handle(r.Context(), cmd)
	if err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

func (h *GraphHandler) ask(w http.ResponseWriter, r *http.Request, query querybus.Query) {
	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

// parseTypes distinguishes an absent types parameter (nil) from an empty
// one (non-nil, no elements)
func parseTypes(params map[string][]string) []string {
	values, ok := params["types"]
	if !ok {
		return nil
	}
	types := []string{}
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				types = append(types, part)
			}
		}
	}
	return types
}

func (h *GraphHandler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}
