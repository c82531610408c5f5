package aggregates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kgraph/domain/core/entities"
)

func node(id string, nt entities.NodeType) entities.GraphNode {
	return entities.GraphNode{ID: id, Name: id, Type: nt}
}

func link(source, target string) entities.GraphLink {
	return entities.GraphLink{Source: source, Target: target, Type: entities.LinkTypeRelatedTo}
}

func TestStoreBuilder_AddNode(t *testing.T) {
	tests := []struct {
		name    string
		nodes   []entities.GraphNode
		wantErr error
		wantLen int
	}{
		{
			name:    "unique nodes",
			nodes:   []entities.GraphNode{node("a", entities.NodeTypeEntity), node("b", entities.NodeTypeTask)},
			wantLen: 2,
		},
		{
			name:    "missing id",
			nodes:   []entities.GraphNode{{Name: "nameless"}},
			wantErr: ErrMissingNodeID,
			wantLen: 0,
		},
		{
			name:    "duplicate id keeps first",
			nodes:   []entities.GraphNode{node("a", entities.NodeTypeEntity), node("a", entities.NodeTypeTask)},
			wantErr: ErrDuplicateNodeID,
			wantLen: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewStoreBuilder()
			var lastErr error
			for _, n := range tt.nodes {
				if err := b.AddNode(n); err != nil {
					lastErr = err
				}
			}

			if tt.wantErr != nil {
				assert.ErrorIs(t, lastErr, tt.wantErr)
			} else {
				assert.NoError(t, lastErr)
			}

			store := b.Build()
			assert.Equal(t, tt.wantLen, store.NodeCount())
			require.NoError(t, store.Validate())
		})
	}
}

func TestStoreBuilder_DuplicateKeepsFirstOccurrence(t *testing.T) {
	b := NewStoreBuilder()
	require.NoError(t, b.AddNode(node("a", entities.NodeTypeEntity)))
	require.ErrorIs(t, b.AddNode(node("a", entities.NodeTypeTask)), ErrDuplicateNodeID)

	got, ok := b.Build().Node("a")
	require.True(t, ok)
	assert.Equal(t, entities.NodeTypeEntity, got.Type)
}

func TestStoreBuilder_AddLink(t *testing.T) {
	b := NewStoreBuilder()
	require.NoError(t, b.AddNode(node("a", entities.NodeTypeJournalEntry)))
	require.NoError(t, b.AddNode(node("b", entities.NodeTypeEntity)))

	id, err := b.AddLink(link("a", "b"))
	require.NoError(t, err)
	assert.Equal(t, entities.LinkID(0), id)

	_, err = b.AddLink(link("a", "missing"))
	assert.ErrorIs(t, err, ErrUnresolvedEndpoint)
	_, err = b.AddLink(link("missing", "b"))
	assert.ErrorIs(t, err, ErrUnresolvedEndpoint)

	// parallel link is kept
	id, err = b.AddLink(link("a", "b"))
	require.NoError(t, err)
	assert.Equal(t, entities.LinkID(1), id)

	store := b.Build()
	assert.Equal(t, 2, store.LinkCount())
	assert.Equal(t, []entities.LinkID{0, 1}, store.Outgoing("a"))
	assert.Equal(t, []entities.LinkID{0, 1}, store.Incoming("b"))
	assert.Empty(t, store.Incoming("a"))
	assert.Equal(t, []entities.LinkID{0, 1}, store.LinksOf("a"))
	assert.Equal(t, []entities.LinkID{0, 1}, store.LinksOf("b"))
	require.NoError(t, store.Validate())
}

func TestStoreBuilder_SelfLoop(t *testing.T) {
	b := NewStoreBuilder()
	require.NoError(t, b.AddNode(node("a", entities.NodeTypeConcept)))
	_, err := b.AddLink(link("a", "a"))
	require.NoError(t, err)

	store := b.Build()
	assert.Equal(t, []entities.LinkID{0}, store.LinksOf("a"))
	assert.Equal(t, []entities.LinkID{0}, store.Outgoing("a"))
	assert.Equal(t, []entities.LinkID{0}, store.Incoming("a"))
	assert.Equal(t, 2, store.Degree("a"))
}

func TestStoreBuilder_Sealed(t *testing.T) {
	b := NewStoreBuilder()
	require.NoError(t, b.AddNode(node("a", entities.NodeTypeConcept)))
	store := b.Build()

	assert.ErrorIs(t, b.AddNode(node("b", entities.NodeTypeConcept)), ErrStoreSealed)
	_, err := b.AddLink(link("a", "a"))
	assert.ErrorIs(t, err, ErrStoreSealed)
	assert.Equal(t, 1, store.NodeCount())
	assert.Equal(t, 0, store.LinkCount())
}

func TestStore_AccessorsReturnCopies(t *testing.T) {
	b := NewStoreBuilder()
	require.NoError(t, b.AddNode(node("a", entities.NodeTypeConcept)))
	require.NoError(t, b.AddNode(node("b", entities.NodeTypeConcept)))
	_, err := b.AddLink(link("a", "b"))
	require.NoError(t, err)
	store := b.Build()

	nodes := store.Nodes()
	nodes[0].Name = "mutated"
	links := store.Links()
	links[0].Source = "mutated"
	ids := store.LinksOf("a")
	ids[0] = 99

	got, _ := store.Node("a")
	assert.Equal(t, "a", got.Name)
	l, _ := store.Link(0)
	assert.Equal(t, "a", l.Source)
	assert.Equal(t, []entities.LinkID{0}, store.LinksOf("a"))
}

func TestStore_Lookups(t *testing.T) {
	store := NewEmptyStore()

	_, ok := store.Node("nope")
	assert.False(t, ok)
	_, ok = store.Link(0)
	assert.False(t, ok)
	_, ok = store.Link(-1)
	assert.False(t, ok)
	assert.Nil(t, store.LinksOf("nope"))
	assert.Equal(t, 0, store.Degree("nope"))
	assert.NotEmpty(t, store.Generation())
	assert.False(t, store.BuiltAt().IsZero())
}

func TestStore_GenerationsDiffer(t *testing.T) {
	assert.NotEqual(t, NewEmptyStore().Generation(), NewEmptyStore().Generation())
}

func TestStore_Validate_DetectsCorruption(t *testing.T) {
	store := NewEmptyStore()
	store.links = append(store.links, link("ghost", "ghost"))

	assert.Error(t, store.Validate())
}

func TestIngestReport(t *testing.T) {
	report := IngestReport{
		SkippedNodes: []SkippedNode{
			{Index: 1, ID: "a", Reason: DropReasonDuplicateID},
			{Index: 2, Reason: DropReasonMissingID},
		},
		DroppedLinks: []DroppedLink{
			{Index: 0, Source: "a", Target: "x", Reason: DropReasonUnresolvedEndpoint},
			{Index: 1, Reason: DropReasonUndecodable},
		},
	}

	assert.Equal(t, []string{"a"}, report.DuplicateNodeIDs())
	assert.Equal(t, 1, report.UnresolvedLinkCount())
	assert.False(t, report.Clean())
	assert.True(t, IngestReport{}.Clean())
}
