package entities

import "maps"

// NodeType is the closed set of node categories the graph core understands
type NodeType string

const (
	NodeTypeJournalEntry NodeType = "JournalEntry"
	NodeTypeJournalChunk NodeType = "JournalChunk"
	NodeTypeConcept      NodeType = "Concept"
	NodeTypeEntity       NodeType = "Entity"
	NodeTypeProject      NodeType = "Project"
	NodeTypeTask         NodeType = "Task"
	NodeTypePerson       NodeType = "Person"
	NodeTypeTag          NodeType = "Tag"
	NodeTypeEvent        NodeType = "Event"
)

// AllNodeTypes returns every node type in declaration order
func AllNodeTypes() []NodeType {
	return []NodeType{
		NodeTypeJournalEntry,
		NodeTypeJournalChunk,
		NodeTypeConcept,
		NodeTypeEntity,
		NodeTypeProject,
		NodeTypeTask,
		NodeTypePerson,
		NodeTypeTag,
		NodeTypeEvent,
	}
}

// IsValid checks if the node type is one of the known types
func (t NodeType) IsValid() bool {
	switch t {
	case NodeTypeJournalEntry, NodeTypeJournalChunk, NodeTypeConcept,
		NodeTypeEntity, NodeTypeProject, NodeTypeTask,
		NodeTypePerson, NodeTypeTag, NodeTypeEvent:
		return true
	default:
		return false
	}
}

// String returns the string representation of the node type
func (t NodeType) String() string {
	return string(t)
}

// TaskStatus is the progress state of a Task node
type TaskStatus string

const (
	TaskStatusOpen       TaskStatus = "OPEN"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
)

// IsValid checks if the status is one of the known statuses
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusOpen, TaskStatusInProgress, TaskStatusCompleted:
		return true
	default:
		return false
	}
}

// GraphNode is a normalized node of the knowledge graph.
// The JSON shape is the contract consumed by the presentation layer.
type GraphNode struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Type     NodeType       `json:"type"`
	Weight   float64        `json:"val"`
	Status   TaskStatus     `json:"status,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// HasStatus reports whether the node carries a task status
func (n GraphNode) HasStatus() bool {
	return n.Status != ""
}

// Clone returns a copy whose metadata map is detached from the receiver's
func (n GraphNode) Clone() GraphNode {
	n.Metadata = maps.Clone(n.Metadata)
	return n
}
