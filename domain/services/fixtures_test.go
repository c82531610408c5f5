package services

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"kgraph/domain/core/aggregates"
	"kgraph/domain/core/entities"
)

// journalStore is a small journal: one entry mentioning two entities and
// containing a task, plus an unconnected tag
func journalStore(t *testing.T) *aggregates.Store {
	t.Helper()
	return mustStore(t,
		[]entities.GraphNode{
			{ID: "j1", Name: "Morning pages", Type: entities.NodeTypeJournalEntry, Weight: 12},
			{ID: "e1", Name: "OpenAI", Type: entities.NodeTypeEntity, Weight: 8},
			{ID: "e2", Name: "Anthropic", Type: entities.NodeTypeEntity, Weight: 8},
			{ID: "t1", Name: "Write report", Type: entities.NodeTypeTask, Weight: 7, Status: entities.TaskStatusOpen},
			{ID: "g1", Name: "ideas", Type: entities.NodeTypeTag, Weight: 5},
		},
		[]entities.GraphLink{
			{Source: "j1", Target: "e1", Type: entities.LinkTypeMentionsEntity, RelationshipType: "HAS_ENTITY"},
			{Source: "j1", Target: "e2", Type: entities.LinkTypeMentionsEntity, RelationshipType: "HAS_ENTITY"},
			{Source: "j1", Target: "t1", Type: entities.LinkTypeContainsTask, RelationshipType: "CONTAINS_TASK"},
			{Source: "e1", Target: "e2", Type: entities.LinkTypeRelatedTo, RelationshipType: "COMPETES_WITH"},
		},
	)
}

func mustStore(t *testing.T, nodes []entities.GraphNode, links []entities.GraphLink) *aggregates.Store {
	t.Helper()
	b := aggregates.NewStoreBuilder()
	for _, n := range nodes {
		require.NoError(t, b.AddNode(n))
	}
	for _, l := range links {
		_, err := b.AddLink(l)
		require.NoError(t, err)
	}
	return b.Build()
}

var randomNames = []string{"alpha", "Beta", "gamma ray", "Delta", "epsilon", "ZETA", "eta", "theta wave"}

// randomStore builds a reproducible multigraph with parallel links and
// self-loops
func randomStore(t *testing.T, seed uint64, nodeCount, linkCount int) *aggregates.Store {
	t.Helper()
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	types := entities.AllNodeTypes()
	linkTypes := entities.AllLinkTypes()

	nodes := make([]entities.GraphNode, nodeCount)
	for i := range nodes {
		nodes[i] = entities.GraphNode{
			ID:   fmt.Sprintf("n%d", i),
			Name: fmt.Sprintf("%s %d", randomNames[r.IntN(len(randomNames))], i),
			Type: types[r.IntN(len(types))],
		}
	}

	links := make([]entities.GraphLink, 0, linkCount)
	if nodeCount > 0 {
		for range linkCount {
			links = append(links, entities.GraphLink{
				Source: nodes[r.IntN(nodeCount)].ID,
				Target: nodes[r.IntN(nodeCount)].ID,
				Type:   linkTypes[r.IntN(len(linkTypes))],
			})
		}
	}
	return mustStore(t, nodes, links)
}
