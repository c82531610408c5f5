package aggregates

import "kgraph/domain/core/entities"

// Stats contains graph statistics for one store
type Stats struct {
	NodeCount      int                       `json:"node_count"`
	LinkCount      int                       `json:"link_count"`
	ClusterCount   int                       `json:"cluster_count"`
	Density        float64                   `json:"density"`
	NodeTypeCounts map[entities.NodeType]int `json:"node_type_counts"`
	LinkTypeCounts map[entities.LinkType]int `json:"link_type_counts"`
}

// Stats computes counts, density and connected components
func (s *Store) Stats() Stats {
	stats := Stats{
		NodeCount:      len(s.nodes),
		LinkCount:      len(s.links),
		NodeTypeCounts: make(map[entities.NodeType]int),
		LinkTypeCounts: make(map[entities.LinkType]int),
	}

	for _, n := range s.nodes {
		stats.NodeTypeCounts[n.Type]++
	}
	for _, l := range s.links {
		stats.LinkTypeCounts[l.Type]++
	}

	if n := len(s.nodes); n > 1 {
		maxPossibleLinks := n * (n - 1) / 2
		stats.Density = float64(len(s.links)) / float64(maxPossibleLinks)
	}

	stats.ClusterCount = len(s.Clusters())
	return stats
}

// Clusters groups node ids into connected components, ignoring link
// direction. Components are ordered by their earliest node and members
// keep insertion order.
func (s *Store) Clusters() [][]string {
	uf := newUnionFind(len(s.nodes))
	for _, l := range s.links {
		uf.union(s.nodeIndex[l.Source], s.nodeIndex[l.Target])
	}

	slot := make(map[int]int)
	var clusters [][]string
	for i, n := range s.nodes {
		root := uf.find(i)
		pos, ok := slot[root]
		if !ok {
			pos = len(clusters)
			slot[root] = pos
			clusters = append(clusters, nil)
		}
		clusters[pos] = append(clusters[pos], n.ID)
	}
	return clusters
}

// unionFind implements union-find over arena indices with path
// compression and union by rank
type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{
		parent: make([]int, n),
		rank:   make([]int, n),
	}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(i int) int {
	for uf.parent[i] != i {
		uf.parent[i] = uf.parent[uf.parent[i]]
		i = uf.parent[i]
	}
	return i
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	switch {
	case uf.rank[ra] < uf.rank[rb]:
		uf.parent[ra] = rb
	case uf.rank[ra] > uf.rank[rb]:
		uf.parent[rb] = ra
	default:
		uf.parent[rb] = ra
		uf.rank[ra]++
	}
}
