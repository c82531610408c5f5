package ingest

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kgraph/domain/core/aggregates"
	"kgraph/domain/core/entities"
	"kgraph/domain/services"
	pkgerrors "kgraph/pkg/errors"
)

func newTestTransformer() *Transformer {
	return NewTransformer(zap.NewNop())
}

func TestTransformer_SingleEntity(t *testing.T) {
	store, err := newTestTransformer().Ingest([]byte(
		`{"nodes":[{"id":"e1","type":"Entity","metadata":{"name":"OpenAI"}}],"edges":[]}`,
	))
	require.NoError(t, err)

	require.Equal(t, 1, store.NodeCount())
	node, ok := store.Node("e1")
	require.True(t, ok)
	assert.Equal(t, "e1", node.ID)
	assert.Equal(t, "OpenAI", node.Name)
	assert.Equal(t, entities.NodeTypeEntity, node.Type)
	assert.Equal(t, float64(8), node.Weight)
	assert.Equal(t, 0, store.LinkCount())
}

func TestTransformer_DropsDanglingEdge(t *testing.T) {
	store, err := newTestTransformer().Ingest([]byte(`{
		"nodes":[{"id":"e1","type":"Entity","metadata":{"name":"OpenAI"}}],
		"edges":[{"source":"e1","target":"missing","type":"RELATED_TO"}]
	}`))
	require.NoError(t, err)

	assert.Equal(t, 0, store.LinkCount())
	report := store.Report()
	require.Len(t, report.DroppedLinks, 1)
	assert.Equal(t, aggregates.DropReasonUnresolvedEndpoint, report.DroppedLinks[0].Reason)
	assert.Equal(t, "missing", report.DroppedLinks[0].Target)
	assert.Equal(t, 1, report.UnresolvedLinkCount())
	assert.NoError(t, store.Validate())
}

func TestTransformer_FilterAfterIngest(t *testing.T) {
	store, err := newTestTransformer().Ingest([]byte(
		`{"nodes":[{"id":"e1","type":"Entity","metadata":{"name":"OpenAI"}}],"edges":[]}`,
	))
	require.NoError(t, err)

	types := services.NewNodeTypeSet(entities.NodeTypeEntity)

	visible := services.Filter(store, services.FilterCriteria{ActiveTypes: types, SearchQuery: "open"})
	assert.Equal(t, []string{"e1"}, visible.NodeIDs())

	visible = services.Filter(store, services.FilterCriteria{ActiveTypes: types, SearchQuery: "xyz"})
	assert.Empty(t, visible.Nodes)
}

func TestTransformer_EdgesMayPrecedeNodes(t *testing.T) {
	store, err := newTestTransformer().Ingest([]byte(`{
		"edges":[{"source":"j1","target":"t1","type":"HAS_TODO"}],
		"nodes":[
			{"id":"j1","type":"JournalEntry","metadata":{"title":"Log"}},
			{"id":"t1","type":"Todo","metadata":{"task":"Call","priority":"must_do"}}
		]
	}`))
	require.NoError(t, err)

	require.Equal(t, 1, store.LinkCount())
	link, ok := store.Link(0)
	require.True(t, ok)
	assert.Equal(t, entities.LinkTypeContainsTask, link.Type)
	assert.Equal(t, "HAS_TODO", link.RelationshipType)
	assert.Equal(t, 1, store.Degree("j1"))
	assert.Equal(t, 1, store.Degree("t1"))
}

func TestTransformer_DuplicateNodeKeepsFirst(t *testing.T) {
	store, err := newTestTransformer().Ingest([]byte(`{
		"nodes":[
			{"id":"e1","type":"Entity","metadata":{"name":"First"}},
			{"id":"e1","type":"Entity","metadata":{"name":"Second"}}
		],
		"edges":[]
	}`))
	require.NoError(t, err)

	assert.Equal(t, 1, store.NodeCount())
	node, _ := store.Node("e1")
	assert.Equal(t, "First", node.Name)
	assert.Equal(t, []string{"e1"}, store.Report().DuplicateNodeIDs())
}

func TestTransformer_SkipsBadElements(t *testing.T) {
	store, err := newTestTransformer().Ingest([]byte(`{
		"nodes":[
			{"id":"a","type":"Entity"},
			"not a node",
			{"type":"Entity"},
			{"id":"b","type":"Entity"}
		],
		"edges":[
			{"source":"a","target":"b","type":"RELATED_TO"},
			42
		]
	}`))
	require.NoError(t, err)

	report := store.Report()
	assert.Equal(t, 4, report.RawNodes)
	assert.Equal(t, 2, report.RawEdges)
	assert.Equal(t, 2, report.AcceptedNodes)
	assert.Equal(t, 1, report.AcceptedLinks)
	require.Len(t, report.SkippedNodes, 2)
	assert.Equal(t, aggregates.DropReasonUndecodable, report.SkippedNodes[0].Reason)
	assert.Equal(t, 1, report.SkippedNodes[0].Index)
	assert.Equal(t, aggregates.DropReasonMissingID, report.SkippedNodes[1].Reason)
	require.Len(t, report.DroppedLinks, 1)
	assert.Equal(t, aggregates.DropReasonUndecodable, report.DroppedLinks[0].Reason)
	assert.False(t, report.Clean())
}

func TestTransformer_MalformedExport(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>`},
		{"array", `[]`},
		{"null", `null`},
		{"missing nodes", `{"edges":[]}`},
		{"missing edges", `{"nodes":[]}`},
		{"null nodes", `{"nodes":null,"edges":[]}`},
		{"nodes not array", `{"nodes":{},"edges":[]}`},
		{"edges not array", `{"nodes":[],"edges":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := newTestTransformer().Ingest([]byte(tt.body))
			require.Error(t, err)
			assert.Nil(t, store)
			assert.True(t, pkgerrors.IsMalformedExport(err))

			appErr := pkgerrors.GetAppError(err)
			require.NotNil(t, appErr)
			assert.Equal(t, pkgerrors.CodeMalformedExport, appErr.Code)
		})
	}
}

func TestTransformer_EmptyExport(t *testing.T) {
	store, err := newTestTransformer().Ingest([]byte(`{"nodes":[],"edges":[]}`))
	require.NoError(t, err)
	assert.Equal(t, 0, store.NodeCount())
	assert.True(t, store.Report().Clean())
}

func TestTransformer_TransformNilExport(t *testing.T) {
	store := newTestTransformer().Transform(nil)
	require.NotNil(t, store)
	assert.Equal(t, 0, store.NodeCount())
}

func TestNewRawExport(t *testing.T) {
	export, err := NewRawExport(
		[]RawNode{{ID: "a", Type: "Entity"}, {ID: "b", Type: "Todo"}},
		[]RawEdge{{Source: "a", Target: "b", Type: "HAS_TODO"}},
	)
	require.NoError(t, err)

	store := newTestTransformer().Transform(export)
	assert.Equal(t, 2, store.NodeCount())
	assert.Equal(t, 1, store.LinkCount())
}

func TestTransformer_KeepsElementsWithMalformedOptionalFields(t *testing.T) {
	store, err := newTestTransformer().Ingest([]byte(`{
		"nodes":[
			{"id":"c1","type":"Concept","label":7},
			{"id":"e1","type":"Entity","metadata":["x"]},
			{"id":"t1","type":"Todo","label":{"a":1},"metadata":"urgent"}
		],
		"edges":[
			{"source":"e1","target":"t1","type":"HAS_TODO","properties":"weak"},
			{"source":"c1","target":"e1","type":"RELATED_TO","properties":null}
		]
	}`))
	require.NoError(t, err)

	require.Equal(t, 3, store.NodeCount())
	require.Equal(t, 2, store.LinkCount())

	tests := []struct {
		id       string
		wantName string
	}{
		{"c1", "Concept"},
		{"e1", "Unknown Entity"},
		{"t1", "Task"},
	}
	for _, tt := range tests {
		node, ok := store.Node(tt.id)
		require.True(t, ok, tt.id)
		assert.Equal(t, tt.wantName, node.Name, tt.id)
		assert.Nil(t, node.Metadata, tt.id)
	}

	link, ok := store.Link(0)
	require.True(t, ok)
	assert.Equal(t, "HAS_TODO", link.RelationshipType)

	report := store.Report()
	assert.True(t, report.Clean())
	assert.Equal(t, []aggregates.IgnoredField{
		{Element: "node", Index: 0, ID: "c1", Field: "label"},
		{Element: "node", Index: 1, ID: "e1", Field: "metadata"},
		{Element: "node", Index: 2, ID: "t1", Field: "label"},
		{Element: "node", Index: 2, ID: "t1", Field: "metadata"},
		{Element: "edge", Index: 0, ID: "e1->t1", Field: "properties"},
	}, report.IgnoredFields)
}

var exportTypes = []string{"JournalEntry", "Entity", "Todo", "Event", "Person", ""}

// randomExport builds a reproducible export with duplicate ids, dangling
// endpoints and parallel edges. It returns the ids that should survive.
func randomExport(t *testing.T, seed uint64, nodeCount, edgeCount int) (*RawExport, map[string]bool) {
	t.Helper()
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	ids := make(map[string]bool)
	nodes := make([]RawNode, 0, nodeCount)
	for range nodeCount {
		// ids are drawn from a range smaller than nodeCount so some repeat
		id := fmt.Sprintf("n%d", r.IntN(nodeCount*3/4+1))
		if r.IntN(10) == 0 {
			id = ""
		}
		if id != "" {
			ids[id] = true
		}
		nodes = append(nodes, RawNode{ID: id, Type: exportTypes[r.IntN(len(exportTypes))]})
	}

	edges := make([]RawEdge, 0, edgeCount)
	for range edgeCount {
		// endpoints overshoot the id range so some dangle
		source := fmt.Sprintf("n%d", r.IntN(nodeCount+2))
		target := fmt.Sprintf("n%d", r.IntN(nodeCount+2))
		edges = append(edges, RawEdge{Source: source, Target: target, Type: "RELATED_TO"})
		if r.IntN(4) == 0 {
			edges = append(edges, RawEdge{Source: source, Target: target, Type: "HAS_ENTITY"})
		}
	}

	export, err := NewRawExport(nodes, edges)
	require.NoError(t, err)
	return export, ids
}

func TestTransformer_RandomExportsKeepEndpointsResolved(t *testing.T) {
	for seed := uint64(1); seed <= 50; seed++ {
		export, ids := randomExport(t, seed, 20, 40)
		store := newTestTransformer().Transform(export)

		require.NoError(t, store.Validate(), "seed %d", seed)
		assert.Equal(t, len(ids), store.NodeCount(), "seed %d", seed)

		wantLinks := 0
		for _, data := range export.Edges {
			var raw RawEdge
			require.NoError(t, raw.UnmarshalJSON(data))
			if ids[raw.Source] && ids[raw.Target] {
				wantLinks++
			}
		}
		assert.Equal(t, wantLinks, store.LinkCount(), "seed %d", seed)

		for _, link := range store.Links() {
			assert.True(t, store.HasNode(link.Source), "seed %d source %s", seed, link.Source)
			assert.True(t, store.HasNode(link.Target), "seed %d target %s", seed, link.Target)
		}

		report := store.Report()
		assert.Equal(t, report.RawNodes, report.AcceptedNodes+len(report.SkippedNodes), "seed %d", seed)
		assert.Equal(t, report.RawEdges, report.AcceptedLinks+len(report.DroppedLinks), "seed %d", seed)
		assert.Equal(t, len(report.DroppedLinks), report.UnresolvedLinkCount(), "seed %d", seed)
	}
}
