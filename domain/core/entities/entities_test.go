package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNodeType_IsValid(t *testing.T) {
	for _, nt := range AllNodeTypes() {
		assert.True(t, nt.IsValid(), nt.String())
	}
	assert.False(t, NodeType("Todo").IsValid())
	assert.False(t, NodeType("").IsValid())
	assert.Len(t, AllNodeTypes(), 9)
}

func TestLinkType_IsValid(t *testing.T) {
	for _, lt := range AllLinkTypes() {
		assert.True(t, lt.IsValid(), lt.String())
	}
	assert.False(t, LinkType("HAS_TODO").IsValid())
}

func TestTaskStatus_IsValid(t *testing.T) {
	assert.True(t, TaskStatusOpen.IsValid())
	assert.True(t, TaskStatusInProgress.IsValid())
	assert.True(t, TaskStatusCompleted.IsValid())
	assert.False(t, TaskStatus("DONE").IsValid())
}

func TestGraphNode_Clone(t *testing.T) {
	node := GraphNode{ID: "n1", Metadata: map[string]any{"k": "v"}}

	clone := node.Clone()
	clone.Metadata["k"] = "changed"

	assert.Equal(t, "v", node.Metadata["k"])
	assert.False(t, node.HasStatus())
}

func TestGraphLink_DisplayType(t *testing.T) {
	tests := []struct {
		name string
		link GraphLink
		want string
	}{
		{
			name: "relationship type wins",
			link: GraphLink{Type: LinkTypeRelatedTo, RelationshipType: "INSPIRED_BY"},
			want: "INSPIRED_BY",
		},
		{
			name: "falls back to link type",
			link: GraphLink{Type: LinkTypeContainsTask},
			want: "CONTAINS_TASK",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.link.DisplayType())
		})
	}
}

func TestGraphLink_Touches(t *testing.T) {
	link := GraphLink{Source: "a", Target: "b"}
	assert.True(t, link.Touches("a"))
	assert.True(t, link.Touches("b"))
	assert.False(t, link.Touches("c"))
	assert.False(t, link.IsSelfLoop())
	assert.True(t, GraphLink{Source: "a", Target: "a"}.IsSelfLoop())
}
