package aggregates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kgraph/domain/core/entities"
)

func buildStore(t *testing.T, nodes []entities.GraphNode, links []entities.GraphLink) *Store {
	t.Helper()
	b := NewStoreBuilder()
	for _, n := range nodes {
		require.NoError(t, b.AddNode(n))
	}
	for _, l := range links {
		_, err := b.AddLink(l)
		require.NoError(t, err)
	}
	return b.Build()
}

func TestStore_Stats(t *testing.T) {
	tests := []struct {
		name         string
		nodes        []entities.GraphNode
		links        []entities.GraphLink
		wantClusters int
		wantDensity  float64
	}{
		{
			name: "empty store",
		},
		{
			name:         "single node has zero density",
			nodes:        []entities.GraphNode{node("a", entities.NodeTypeConcept)},
			wantClusters: 1,
		},
		{
			name: "path of three",
			nodes: []entities.GraphNode{
				node("a", entities.NodeTypeJournalEntry),
				node("b", entities.NodeTypeEntity),
				node("c", entities.NodeTypeEntity),
			},
			links:        []entities.GraphLink{link("a", "b"), link("b", "c")},
			wantClusters: 1,
			wantDensity:  2.0 / 3.0,
		},
		{
			name: "two components",
			nodes: []entities.GraphNode{
				node("a", entities.NodeTypeJournalEntry),
				node("b", entities.NodeTypeEntity),
				node("c", entities.NodeTypeTask),
				node("d", entities.NodeTypeTask),
			},
			links:        []entities.GraphLink{link("a", "b"), link("d", "c")},
			wantClusters: 2,
			wantDensity:  2.0 / 6.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := buildStore(t, tt.nodes, tt.links)
			stats := store.Stats()

			assert.Equal(t, len(tt.nodes), stats.NodeCount)
			assert.Equal(t, len(tt.links), stats.LinkCount)
			assert.Equal(t, tt.wantClusters, stats.ClusterCount)
			assert.InDelta(t, tt.wantDensity, stats.Density, 1e-9)
		})
	}
}

func TestStore_StatsTypeCounts(t *testing.T) {
	store := buildStore(t,
		[]entities.GraphNode{
			node("a", entities.NodeTypeJournalEntry),
			node("b", entities.NodeTypeTask),
			node("c", entities.NodeTypeTask),
		},
		[]entities.GraphLink{
			{Source: "a", Target: "b", Type: entities.LinkTypeContainsTask},
			{Source: "a", Target: "c", Type: entities.LinkTypeContainsTask},
		},
	)

	stats := store.Stats()
	assert.Equal(t, 1, stats.NodeTypeCounts[entities.NodeTypeJournalEntry])
	assert.Equal(t, 2, stats.NodeTypeCounts[entities.NodeTypeTask])
	assert.Equal(t, 2, stats.LinkTypeCounts[entities.LinkTypeContainsTask])
}

func TestStore_Clusters(t *testing.T) {
	store := buildStore(t,
		[]entities.GraphNode{
			node("a", entities.NodeTypeConcept),
			node("b", entities.NodeTypeConcept),
			node("c", entities.NodeTypeConcept),
			node("d", entities.NodeTypeConcept),
			node("e", entities.NodeTypeConcept),
		},
		[]entities.GraphLink{link("d", "b"), link("c", "e"), link("e", "e")},
	)

	assert.Equal(t, [][]string{{"a"}, {"b", "d"}, {"c", "e"}}, store.Clusters())
}
