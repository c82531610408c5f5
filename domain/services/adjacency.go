package services

import (
	"kgraph/domain/core/aggregates"
	"kgraph/domain/core/entities"
)

// Neighborhood is the result of an adjacency query around a focal node.
//
// When Focused is false there is no focal node and every node and link is
// considered connected; the sets are empty in that state and must not be
// read as "nothing is connected". Use IsNodeConnected/IsLinkConnected.
type Neighborhood struct {
	Focused          bool
	FocalID          string
	ConnectedNodeIDs map[string]struct{}
	TouchingLinkIDs  map[entities.LinkID]struct{}
}

// NoFocus returns the neighborhood used when nothing is hovered
func NoFocus() Neighborhood {
	return Neighborhood{
		ConnectedNodeIDs: map[string]struct{}{},
		TouchingLinkIDs:  map[entities.LinkID]struct{}{},
	}
}

// Neighbors computes the focal node plus every node one link away in either
// direction, together with the links that touch the focal node. It reads
// only the store's adjacency index, so the cost is proportional to the
// focal node's degree. An empty focalID yields NoFocus; an id unknown to the
// store yields a focused neighborhood with empty sets.
func Neighbors(store *aggregates.Store, focalID string) Neighborhood {
	if focalID == "" {
		return NoFocus()
	}

	hood := Neighborhood{
		Focused:          true,
		FocalID:          focalID,
		ConnectedNodeIDs: map[string]struct{}{},
		TouchingLinkIDs:  map[entities.LinkID]struct{}{},
	}
	if store == nil || !store.HasNode(focalID) {
		return hood
	}

	hood.ConnectedNodeIDs[focalID] = struct{}{}
	for _, id := range store.LinksOf(focalID) {
		link, ok := store.Link(id)
		if !ok {
			continue
		}
		hood.TouchingLinkIDs[id] = struct{}{}
		hood.ConnectedNodeIDs[link.Source] = struct{}{}
		hood.ConnectedNodeIDs[link.Target] = struct{}{}
	}

	return hood
}

// IsNodeConnected reports whether a node should stay highlighted
func (h Neighborhood) IsNodeConnected(id string) bool {
	if !h.Focused {
		return true
	}
	_, ok := h.ConnectedNodeIDs[id]
	return ok
}

// IsLinkConnected reports whether a link should stay highlighted
func (h Neighborhood) IsLinkConnected(id entities.LinkID) bool {
	if !h.Focused {
		return true
	}
	_, ok := h.TouchingLinkIDs[id]
	return ok
}

// NeighborIDs returns the connected node ids excluding the focal node
func (h Neighborhood) NeighborIDs() []string {
	ids := make([]string, 0, len(h.ConnectedNodeIDs))
	for id := range h.ConnectedNodeIDs {
		if id != h.FocalID {
			ids = append(ids, id)
		}
	}
	return ids
}
