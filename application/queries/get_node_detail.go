package queries

import (
	"kgraph/domain/core/entities"
)

// GetNodeDetailQuery asks for the connections of a selected node
type GetNodeDetailQuery struct {
	NodeID string `json:"node_id" validate:"required,max=512"`
}

// Validate validates the query
func (q GetNodeDetailQuery) Validate() error {
	return validateStruct(q)
}

// ConnectionView is one row of the detail panel
type ConnectionView struct {
	LinkID           entities.LinkID   `json:"link_id"`
	NodeID           string            `json:"node_id"`
	NodeName         string            `json:"node_name"`
	NodeType         entities.NodeType `json:"node_type,omitempty"`
	Relationship     string            `json:"relationship"`
	RelationshipType string            `json:"relationship_type"`
}

// GetNodeDetailResult is the selected node and its connections. Node is
// omitted when the id is not in the current store.
type GetNodeDetailResult struct {
	Node             *entities.GraphNode `json:"node,omitempty"`
	Incoming         []ConnectionView    `json:"incoming"`
	Outgoing         []ConnectionView    `json:"outgoing"`
	TotalConnections int                 `json:"total_connections"`
}
