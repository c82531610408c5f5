package entities

// LinkType is the closed set of relationship categories between nodes
type LinkType string

const (
	LinkTypeHasChunk       LinkType = "HAS_CHUNK"
	LinkTypeMentionsEntity LinkType = "MENTIONS_ENTITY"
	LinkTypeContainsTask   LinkType = "CONTAINS_TASK"
	LinkTypePartOfProject  LinkType = "PART_OF_PROJECT"
	LinkTypeRelatedTo      LinkType = "RELATED_TO"
)

// AllLinkTypes returns every link type in declaration order
func AllLinkTypes() []LinkType {
	return []LinkType{
		LinkTypeHasChunk,
		LinkTypeMentionsEntity,
		LinkTypeContainsTask,
		LinkTypePartOfProject,
		LinkTypeRelatedTo,
	}
}

// IsValid checks if the link type is one of the known types
func (t LinkType) IsValid() bool {
	switch t {
	case LinkTypeHasChunk, LinkTypeMentionsEntity, LinkTypeContainsTask,
		LinkTypePartOfProject, LinkTypeRelatedTo:
		return true
	default:
		return false
	}
}

// String returns the string representation of the link type
func (t LinkType) String() string {
	return string(t)
}

// LinkID identifies a link within a single store. It is the link's
// position in the store's link arena and is meaningless across stores.
type LinkID int

// GraphLink is a directed, typed connection from Source to Target
type GraphLink struct {
	Source           string   `json:"source"`
	Target           string   `json:"target"`
	Type             LinkType `json:"type"`
	RelationshipType string   `json:"relationshipType,omitempty"`
}

// IsSelfLoop reports whether the link starts and ends at the same node
func (l GraphLink) IsSelfLoop() bool {
	return l.Source == l.Target
}

// Touches reports whether the link has nodeID as either endpoint
func (l GraphLink) Touches(nodeID string) bool {
	return l.Source == nodeID || l.Target == nodeID
}

// DisplayType returns the label used when presenting the link: the
// free-text relationship type when present, the link kind otherwise.
func (l GraphLink) DisplayType() string {
	if l.RelationshipType != "" {
		return l.RelationshipType
	}
	return string(l.Type)
}
