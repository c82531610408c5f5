package services

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"kgraph/domain/core/aggregates"
	"kgraph/domain/core/entities"
)

// Connection pairs a link with the node at its other end
type Connection struct {
	LinkID entities.LinkID
	Link   entities.GraphLink
	// Node is nil when the other endpoint cannot be resolved
	Node  *entities.GraphNode
	Label string
}

// OtherID returns the id of the endpoint that is not the selected node
func (c Connection) OtherID(selectedID string) string {
	if c.Link.Source == selectedID {
		return c.Link.Target
	}
	return c.Link.Source
}

// DisplayName returns the other node's name, falling back to its raw id
func (c Connection) DisplayName(selectedID string) string {
	if c.Node != nil && c.Node.Name != "" {
		return c.Node.Name
	}
	return c.OtherID(selectedID)
}

// NodeDetail describes a selected node and its connections
type NodeDetail struct {
	Node     *entities.GraphNode
	Incoming []Connection
	Outgoing []Connection
}

// Total returns the number of connections shown for the node
func (d NodeDetail) Total() int {
	return len(d.Incoming) + len(d.Outgoing)
}

// Detail resolves the incoming and outgoing connections of the selected
// node in link insertion order. An unknown id yields empty lists.
func Detail(store *aggregates.Store, selectedID string) NodeDetail {
	detail := NodeDetail{
		Incoming: []Connection{},
		Outgoing: []Connection{},
	}
	if store == nil {
		return detail
	}

	if node, ok := store.Node(selectedID); ok {
		detail.Node = &node
	}

	for _, id := range store.Incoming(selectedID) {
		if link, ok := store.Link(id); ok {
			detail.Incoming = append(detail.Incoming, newConnection(store, id, link, link.Source))
		}
	}
	for _, id := range store.Outgoing(selectedID) {
		if link, ok := store.Link(id); ok {
			detail.Outgoing = append(detail.Outgoing, newConnection(store, id, link, link.Target))
		}
	}

	return detail
}

func newConnection(store *aggregates.Store, id entities.LinkID, link entities.GraphLink, otherID string) Connection {
	conn := Connection{
		LinkID: id,
		Link:   link,
		Label:  FormatRelationshipType(link.DisplayType()),
	}
	if node, ok := store.Node(otherID); ok {
		conn.Node = &node
	}
	return conn
}

// FormatRelationshipType turns an upper snake case identifier into a
// label: CONTAINS_TASK becomes "Contains Task".
func FormatRelationshipType(s string) string {
	parts := strings.Split(s, "_")
	for i, part := range parts {
		parts[i] = titleWord(part)
	}
	return strings.Join(parts, " ")
}

func titleWord(word string) string {
	if word == "" {
		return word
	}
	r, size := utf8.DecodeRuneInString(word)
	return string(unicode.ToUpper(r)) + strings.ToLower(word[size:])
}
