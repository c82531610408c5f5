package queries

import (
	"kgraph/domain/core/entities"
)

// GetNeighborsQuery asks for the one-hop neighborhood of a node. An empty
// NodeID means nothing is focused.
type GetNeighborsQuery struct {
	NodeID string `json:"node_id,omitempty" validate:"max=512"`
}

// Validate validates the query
func (q GetNeighborsQuery) Validate() error {
	return validateStruct(q)
}

// LinkView is a link together with its id in the store
type LinkView struct {
	ID entities.LinkID `json:"id"`
	entities.GraphLink
}

// GetNeighborsResult describes which nodes and links stay highlighted.
// When Focused is false every node and link counts as connected.
type GetNeighborsResult struct {
	Focused          bool       `json:"focused"`
	FocalID          string     `json:"focal_id,omitempty"`
	ConnectedNodeIDs []string   `json:"connected_node_ids"`
	TouchingLinks    []LinkView `json:"touching_links"`
}
