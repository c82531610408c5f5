package services

import (
	"fmt"
	"strings"

	"kgraph/domain/core/aggregates"
	"kgraph/domain/core/entities"
)

// NodeTypeSet is a set of node types used to restrict visible nodes
type NodeTypeSet map[entities.NodeType]struct{}

// NewNodeTypeSet builds a set from the given types
func NewNodeTypeSet(types ...entities.NodeType) NodeTypeSet {
	set := make(NodeTypeSet, len(types))
	for _, t := range types {
		set[t] = struct{}{}
	}
	return set
}

// AllNodeTypesSet returns a set containing every known node type
func AllNodeTypesSet() NodeTypeSet {
	return NewNodeTypeSet(entities.AllNodeTypes()...)
}

// ParseNodeTypes converts type names into a set. Unknown names are an error.
func ParseNodeTypes(names []string) (NodeTypeSet, error) {
	set := make(NodeTypeSet, len(names))
	for _, name := range names {
		t := entities.NodeType(strings.TrimSpace(name))
		if !t.IsValid() {
			return nil, fmt.Errorf("unknown node type %q", name)
		}
		set[t] = struct{}{}
	}
	return set, nil
}

// Contains reports whether t is in the set
func (s NodeTypeSet) Contains(t entities.NodeType) bool {
	_, ok := s[t]
	return ok
}

// Without returns a copy of the set with t removed
func (s NodeTypeSet) Without(t entities.NodeType) NodeTypeSet {
	out := make(NodeTypeSet, len(s))
	for k := range s {
		if k != t {
			out[k] = struct{}{}
		}
	}
	return out
}

// FilterCriteria selects the visible part of a store
type FilterCriteria struct {
	ActiveTypes NodeTypeSet
	SearchQuery string
}

// Subgraph is the filtered view of a store handed to the presentation layer
type Subgraph struct {
	Nodes []entities.GraphNode `json:"nodes"`
	Links []entities.GraphLink `json:"links"`
}

// NodeIDs returns the ids of the visible nodes in order
func (g Subgraph) NodeIDs() []string {
	ids := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[i] = n.ID
	}
	return ids
}

// Filter derives the visible subgraph. A node is visible when its type is
// active and its name contains the search query, ignoring case; a link is
// visible when both endpoints are. An empty type set hides everything.
// The store is never modified and output keeps store insertion order.
func Filter(store *aggregates.Store, criteria FilterCriteria) Subgraph {
	result := Subgraph{
		Nodes: []entities.GraphNode{},
		Links: []entities.GraphLink{},
	}
	if store == nil || len(criteria.ActiveTypes) == 0 {
		return result
	}

	query := strings.ToLower(criteria.SearchQuery)
	visible := make(map[string]struct{})

	for _, node := range store.Nodes() {
		if !criteria.ActiveTypes.Contains(node.Type) {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(node.Name), query) {
			continue
		}
		visible[node.ID] = struct{}{}
		result.Nodes = append(result.Nodes, node)
	}

	for _, link := range store.Links() {
		_, sourceVisible := visible[link.Source]
		_, targetVisible := visible[link.Target]
		if sourceVisible && targetVisible {
			result.Links = append(result.Links, link)
		}
	}

	return result
}
