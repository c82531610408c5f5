package aggregates

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"kgraph/domain/core/entities"
)

var (
	// ErrMissingNodeID is returned when a node without an id is added
	ErrMissingNodeID = errors.New("node id is required")
	// ErrDuplicateNodeID is returned when a node id is already present
	ErrDuplicateNodeID = errors.New("node id already exists in store")
	// ErrUnresolvedEndpoint is returned when a link references an unknown node
	ErrUnresolvedEndpoint = errors.New("link endpoint does not resolve to a known node")
	// ErrStoreSealed is returned when a builder is used after Build
	ErrStoreSealed = errors.New("store already built")
)

// Store is the normalized, queryable knowledge graph produced by one
// ingestion cycle. It is a directed multigraph kept in flat arenas: nodes
// and links are stored in insertion order and every index is built once,
// so a Store never changes after Build and is safe for concurrent readers.
//
// Metadata maps inside returned nodes are shared with the store and must
// be treated as read-only.
type Store struct {
	generation string
	builtAt    time.Time

	nodes     []entities.GraphNode
	links     []entities.GraphLink
	nodeIndex map[string]int

	// adjacency lists every link touching a node in either direction,
	// self-loops once. outgoing/incoming keep the directed view.
	adjacency map[string][]entities.LinkID
	outgoing  map[string][]entities.LinkID
	incoming  map[string][]entities.LinkID

	report IngestReport
}

// StoreBuilder accumulates nodes and links and seals them into a Store
type StoreBuilder struct {
	store *Store
	built bool
}

// NewStoreBuilder creates an empty builder
func NewStoreBuilder() *StoreBuilder {
	return &StoreBuilder{
		store: &Store{
			generation: uuid.New().String(),
			nodeIndex:  make(map[string]int),
			adjacency:  make(map[string][]entities.LinkID),
			outgoing:   make(map[string][]entities.LinkID),
			incoming:   make(map[string][]entities.LinkID),
		},
	}
}

// AddNode appends a node. The first node with a given id wins; later ones
// are rejected with ErrDuplicateNodeID and leave the store unchanged.
func (b *StoreBuilder) AddNode(node entities.GraphNode) error {
	if b.built {
		return ErrStoreSealed
	}
	if node.ID == "" {
		return ErrMissingNodeID
	}
	if _, exists := b.store.nodeIndex[node.ID]; exists {
		return ErrDuplicateNodeID
	}

	b.store.nodeIndex[node.ID] = len(b.store.nodes)
	b.store.nodes = append(b.store.nodes, node)
	return nil
}

// HasNode reports whether a node id has already been added
func (b *StoreBuilder) HasNode(id string) bool {
	_, ok := b.store.nodeIndex[id]
	return ok
}

// AddLink appends a link whose endpoints must already have been added.
// Parallel links are kept as distinct entries.
func (b *StoreBuilder) AddLink(link entities.GraphLink) (entities.LinkID, error) {
	if b.built {
		return -1, ErrStoreSealed
	}
	if !b.HasNode(link.Source) || !b.HasNode(link.Target) {
		return -1, ErrUnresolvedEndpoint
	}

	s := b.store
	id := entities.LinkID(len(s.links))
	s.links = append(s.links, link)

	s.outgoing[link.Source] = append(s.outgoing[link.Source], id)
	s.incoming[link.Target] = append(s.incoming[link.Target], id)
	s.adjacency[link.Source] = append(s.adjacency[link.Source], id)
	if !link.IsSelfLoop() {
		s.adjacency[link.Target] = append(s.adjacency[link.Target], id)
	}

	return id, nil
}

// WithReport attaches the ingestion report describing how the store was built
func (b *StoreBuilder) WithReport(report IngestReport) *StoreBuilder {
	b.store.report = report
	return b
}

// Build seals the builder and returns the immutable store
func (b *StoreBuilder) Build() *Store {
	b.built = true
	b.store.builtAt = time.Now()
	return b.store
}

// NewEmptyStore returns a store with no nodes and no links
func NewEmptyStore() *Store {
	return NewStoreBuilder().Build()
}

// Generation returns the unique id of the ingestion cycle that built the store
func (s *Store) Generation() string {
	return s.generation
}

// BuiltAt returns when the store was sealed
func (s *Store) BuiltAt() time.Time {
	return s.builtAt
}

// Report returns the ingestion report for this store
func (s *Store) Report() IngestReport {
	return s.report
}

// NodeCount returns the number of nodes
func (s *Store) NodeCount() int {
	return len(s.nodes)
}

// LinkCount returns the number of links
func (s *Store) LinkCount() int {
	return len(s.links)
}

// Nodes returns all nodes in insertion order
func (s *Store) Nodes() []entities.GraphNode {
	nodes := make([]entities.GraphNode, len(s.nodes))
	copy(nodes, s.nodes)
	return nodes
}

// Links returns all links in insertion order. A link's position in the
// returned slice equals its LinkID.
func (s *Store) Links() []entities.GraphLink {
	links := make([]entities.GraphLink, len(s.links))
	copy(links, s.links)
	return links
}

// Node looks up a node by id
func (s *Store) Node(id string) (entities.GraphNode, bool) {
	i, ok := s.nodeIndex[id]
	if !ok {
		return entities.GraphNode{}, false
	}
	return s.nodes[i], true
}

// HasNode checks if a node exists without returning it
func (s *Store) HasNode(id string) bool {
	_, ok := s.nodeIndex[id]
	return ok
}

// Link looks up a link by its arena id
func (s *Store) Link(id entities.LinkID) (entities.GraphLink, bool) {
	if id < 0 || int(id) >= len(s.links) {
		return entities.GraphLink{}, false
	}
	return s.links[id], true
}

// LinksOf returns the ids of every link touching the node, in insertion order
func (s *Store) LinksOf(id string) []entities.LinkID {
	return cloneIDs(s.adjacency[id])
}

// Outgoing returns the ids of links whose source is the node
func (s *Store) Outgoing(id string) []entities.LinkID {
	return cloneIDs(s.outgoing[id])
}

// Incoming returns the ids of links whose target is the node
func (s *Store) Incoming(id string) []entities.LinkID {
	return cloneIDs(s.incoming[id])
}

// Degree returns incoming plus outgoing link count. A self-loop counts twice.
func (s *Store) Degree(id string) int {
	return len(s.outgoing[id]) + len(s.incoming[id])
}

// Validate checks the store invariants. A store produced by the builder
// always passes; this exists to guard hand-assembled fixtures.
func (s *Store) Validate() error {
	if len(s.nodeIndex) != len(s.nodes) {
		return errors.New("node index size mismatch")
	}
	for i, n := range s.nodes {
		if s.nodeIndex[n.ID] != i {
			return errors.New("node index out of sync")
		}
	}
	for _, l := range s.links {
		if !s.HasNode(l.Source) {
			return errors.New("link references non-existent source node")
		}
		if !s.HasNode(l.Target) {
			return errors.New("link references non-existent target node")
		}
	}
	return nil
}

func cloneIDs(ids []entities.LinkID) []entities.LinkID {
	if len(ids) == 0 {
		return nil
	}
	out := make([]entities.LinkID, len(ids))
	copy(out, ids)
	return out
}
