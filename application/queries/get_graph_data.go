package queries

import (
	"kgraph/domain/core/entities"
	"kgraph/domain/services"
	pkgerrors "kgraph/pkg/errors"
)

// GetGraphDataQuery asks for the visible subgraph under a set of filters.
//
// A nil Types means every node type is active. A non-nil empty Types means
// none is, which yields an empty graph.
type GetGraphDataQuery struct {
	Types  []string `json:"types,omitempty" validate:"omitempty,dive,required"`
	Search string   `json:"search,omitempty" validate:"max=256"`
}

// Validate validates the query
func (q GetGraphDataQuery) Validate() error {
	if err := validateStruct(q); err != nil {
		return err
	}
	if _, err := q.ActiveTypes(); err != nil {
		return pkgerrors.NewValidationError(err.Error()).
			WithDetails(map[string]any{"field": "types"})
	}
	return nil
}

// ActiveTypes resolves the requested type names
func (q GetGraphDataQuery) ActiveTypes() (services.NodeTypeSet, error) {
	if q.Types == nil {
		return services.AllNodeTypesSet(), nil
	}
	return services.ParseNodeTypes(q.Types)
}

// Criteria converts the query into filter criteria
func (q GetGraphDataQuery) Criteria() (services.FilterCriteria, error) {
	types, err := q.ActiveTypes()
	if err != nil {
		return services.FilterCriteria{}, err
	}
	return services.FilterCriteria{ActiveTypes: types, SearchQuery: q.Search}, nil
}

// GetGraphDataResult is the visible subgraph plus the size of the whole store
type GetGraphDataResult struct {
	Generation string               `json:"generation"`
	Nodes      []entities.GraphNode `json:"nodes"`
	Links      []entities.GraphLink `json:"links"`
	TotalNodes int                  `json:"total_nodes"`
	TotalLinks int                  `json:"total_links"`
}
