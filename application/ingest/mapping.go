package ingest

import (
	"kgraph/domain/core/entities"
)

// Backend node types with dedicated handling
const (
	BackendTypeJournalEntry = "JournalEntry"
	BackendTypeEntity       = "Entity"
	BackendTypeTodo         = "Todo"
	BackendTypeEvent        = "Event"
)

// Backend edge types with dedicated handling
const (
	BackendEdgeHasEntity = "HAS_ENTITY"
	BackendEdgeHasTodo   = "HAS_TODO"
	BackendEdgeHasEvent  = "HAS_EVENT"
	BackendEdgeRelatedTo = "RELATED_TO"
)

// Node weights used for relative sizing
const (
	WeightJournalEntry = 12
	WeightEntity       = 8
	WeightTask         = 7
	WeightEvent        = 9
	WeightDefault      = 5
)

const (
	snippetLength = 50
	snippetSuffix = "..."
	priorityMust  = "must_do"
)

// MapNodeType maps a backend node type to a graph node type. The mapping is
// total: unknown backend types become Concept.
func MapNodeType(backendType string) entities.NodeType {
	switch backendType {
	case BackendTypeJournalEntry:
		return entities.NodeTypeJournalEntry
	case BackendTypeEntity:
		return entities.NodeTypeEntity
	case BackendTypeTodo:
		return entities.NodeTypeTask
	case BackendTypeEvent:
		return entities.NodeTypeEvent
	default:
		return entities.NodeTypeConcept
	}
}

// MapLinkType maps a backend edge type to a link type. Unknown edge types
// become RELATED_TO.
func MapLinkType(backendType string) entities.LinkType {
	switch backendType {
	case BackendEdgeHasEntity:
		return entities.LinkTypeMentionsEntity
	case BackendEdgeHasTodo:
		return entities.LinkTypeContainsTask
	case BackendEdgeHasEvent:
		// events hang off journal entries the same way entities do
		return entities.LinkTypeMentionsEntity
	case BackendEdgeRelatedTo:
		return entities.LinkTypeRelatedTo
	default:
		return entities.LinkTypeRelatedTo
	}
}

// TransformNode derives the normalized node for a raw backend node
func TransformNode(raw RawNode) entities.GraphNode {
	node := entities.GraphNode{
		ID:       raw.ID,
		Type:     MapNodeType(raw.Type),
		Metadata: raw.Metadata,
	}

	switch raw.Type {
	case BackendTypeJournalEntry:
		node.Name = journalEntryName(raw.Metadata)
		node.Weight = WeightJournalEntry
	case BackendTypeEntity:
		node.Name = metaStringOr(raw.Metadata, "name", "Unknown Entity")
		node.Weight = WeightEntity
	case BackendTypeTodo:
		node.Name = metaStringOr(raw.Metadata, "task", "Task")
		node.Weight = WeightTask
		node.Status = taskStatus(raw.Metadata)
	case BackendTypeEvent:
		node.Name = metaStringOr(raw.Metadata, "title", "Event")
		node.Weight = WeightEvent
	default:
		node.Name = raw.Label
		if node.Name == "" {
			node.Name = raw.Type
		}
		node.Weight = WeightDefault
	}

	return node
}

// TransformEdge derives the normalized link for a raw backend edge
func TransformEdge(raw RawEdge) entities.GraphLink {
	link := entities.GraphLink{
		Source:           raw.Source,
		Target:           raw.Target,
		Type:             MapLinkType(raw.Type),
		RelationshipType: raw.Type,
	}
	if label, ok := metaString(raw.Properties, "type"); ok {
		link.RelationshipType = label
	}
	return link
}

func journalEntryName(meta map[string]any) string {
	if title, ok := metaString(meta, "title"); ok {
		return title
	}
	if content, ok := metaString(meta, "content"); ok {
		runes := []rune(content)
		if len(runes) > snippetLength {
			runes = runes[:snippetLength]
		}
		return string(runes) + snippetSuffix
	}
	return "Journal Entry"
}

func taskStatus(meta map[string]any) entities.TaskStatus {
	if priority, _ := metaString(meta, "priority"); priority == priorityMust {
		return entities.TaskStatusOpen
	}
	return entities.TaskStatusInProgress
}

// metaString returns a metadata value only when it is a non-empty string
func metaString(meta map[string]any, key string) (string, bool) {
	v, ok := meta[key].(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func metaStringOr(meta map[string]any, key, fallback string) string {
	if v, ok := metaString(meta, key); ok {
		return v
	}
	return fallback
}
