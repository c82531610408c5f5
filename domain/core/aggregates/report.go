package aggregates

// DropReason explains why an ingested element did not make it into the store
type DropReason string

const (
	DropReasonUnresolvedEndpoint DropReason = "unresolved_endpoint"
	DropReasonDuplicateID        DropReason = "duplicate_id"
	DropReasonMissingID          DropReason = "missing_id"
	DropReasonUndecodable        DropReason = "undecodable"
)

// SkippedNode records a raw node that was not added to the store
type SkippedNode struct {
	Index  int        `json:"index"`
	ID     string     `json:"id,omitempty"`
	Reason DropReason `json:"reason"`
}

// DroppedLink records a raw edge that was not added to the store
type DroppedLink struct {
	Index  int        `json:"index"`
	Source string     `json:"source,omitempty"`
	Target string     `json:"target,omitempty"`
	Type   string     `json:"type,omitempty"`
	Reason DropReason `json:"reason"`
}

// IgnoredField records an optional field that had the wrong shape. The
// element itself was kept and the field treated as absent.
type IgnoredField struct {
	Element string `json:"element"`
	Index   int    `json:"index"`
	ID      string `json:"id,omitempty"`
	Field   string `json:"field"`
}

// IngestReport summarises one ingestion cycle
type IngestReport struct {
	RawNodes      int            `json:"raw_nodes"`
	RawEdges      int            `json:"raw_edges"`
	AcceptedNodes int            `json:"accepted_nodes"`
	AcceptedLinks int            `json:"accepted_links"`
	SkippedNodes  []SkippedNode  `json:"skipped_nodes,omitempty"`
	DroppedLinks  []DroppedLink  `json:"dropped_links,omitempty"`
	IgnoredFields []IgnoredField `json:"ignored_fields,omitempty"`
}

// DuplicateNodeIDs returns the ids skipped because an earlier node claimed them
func (r IngestReport) DuplicateNodeIDs() []string {
	var ids []string
	for _, s := range r.SkippedNodes {
		if s.Reason == DropReasonDuplicateID {
			ids = append(ids, s.ID)
		}
	}
	return ids
}

// UnresolvedLinkCount returns how many edges were dropped for dangling endpoints
func (r IngestReport) UnresolvedLinkCount() int {
	n := 0
	for _, d := range r.DroppedLinks {
		if d.Reason == DropReasonUnresolvedEndpoint {
			n++
		}
	}
	return n
}

// Clean reports whether every raw element was accepted. Ignored optional
// fields do not count against it.
func (r IngestReport) Clean() bool {
	return len(r.SkippedNodes) == 0 && len(r.DroppedLinks) == 0
}
