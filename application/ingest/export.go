package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"

	pkgerrors "kgraph/pkg/errors"
)

// RawNode is a node as served by the backend graph export. A label or
// metadata of the wrong shape decodes as absent and is listed in Ignored.
type RawNode struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Label    string         `json:"label,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`

	Ignored []string `json:"-"`
}

// UnmarshalJSON decodes id and type strictly and the optional fields leniently
func (n *RawNode) UnmarshalJSON(data []byte) error {
	var aux struct {
		ID       string          `json:"id"`
		Type     string          `json:"type"`
		Label    json.RawMessage `json:"label"`
		Metadata json.RawMessage `json:"metadata"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*n = RawNode{ID: aux.ID, Type: aux.Type}
	var ok bool
	if n.Label, ok = decodeOptional[string](aux.Label); !ok {
		n.Ignored = append(n.Ignored, "label")
	}
	if n.Metadata, ok = decodeOptional[map[string]any](aux.Metadata); !ok {
		n.Ignored = append(n.Ignored, "metadata")
	}
	return nil
}

// RawEdge is an edge as served by the backend graph export. Properties of
// the wrong shape decode as absent and are listed in Ignored.
type RawEdge struct {
	Source     string         `json:"source"`
	Target     string         `json:"target"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties,omitempty"`

	Ignored []string `json:"-"`
}

// UnmarshalJSON decodes the endpoints and type strictly and properties leniently
func (e *RawEdge) UnmarshalJSON(data []byte) error {
	var aux struct {
		Source     string          `json:"source"`
		Target     string          `json:"target"`
		Type       string          `json:"type"`
		Properties json.RawMessage `json:"properties"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*e = RawEdge{Source: aux.Source, Target: aux.Target, Type: aux.Type}
	var ok bool
	if e.Properties, ok = decodeOptional[map[string]any](aux.Properties); !ok {
		e.Ignored = append(e.Ignored, "properties")
	}
	return nil
}

// decodeOptional decodes an optional member. Absent and null are fine; a
// value of another shape yields the zero value and false.
func decodeOptional[T any](raw json.RawMessage) (T, bool) {
	var v T
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return v, true
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		var zero T
		return zero, false
	}
	return v, true
}

// RawExport is the top-level backend export. Elements stay undecoded until
// transformation so that one bad element cannot fail the whole batch.
type RawExport struct {
	Nodes []json.RawMessage `json:"nodes"`
	Edges []json.RawMessage `json:"edges"`
}

// NewRawExport builds an export from already-typed nodes and edges
func NewRawExport(nodes []RawNode, edges []RawEdge) (*RawExport, error) {
	export := &RawExport{
		Nodes: make([]json.RawMessage, 0, len(nodes)),
		Edges: make([]json.RawMessage, 0, len(edges)),
	}
	for _, n := range nodes {
		data, err := json.Marshal(n)
		if err != nil {
			return nil, fmt.Errorf("failed to encode node %q: %w", n.ID, err)
		}
		export.Nodes = append(export.Nodes, data)
	}
	for _, e := range edges {
		data, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("failed to encode edge %s->%s: %w", e.Source, e.Target, err)
		}
		export.Edges = append(export.Edges, data)
	}
	return export, nil
}

// Decode parses an export body. Only the top-level shape is checked here:
// the body must be a JSON object whose "nodes" and "edges" members are
// arrays. Anything else is a MalformedExport error.
func Decode(data []byte) (*RawExport, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, pkgerrors.NewMalformedExportError("export is not a JSON object").WithCause(err)
	}
	if top == nil {
		return nil, pkgerrors.NewMalformedExportError("export is not a JSON object")
	}

	nodes, err := decodeArray(top, "nodes")
	if err != nil {
		return nil, err
	}
	edges, err := decodeArray(top, "edges")
	if err != nil {
		return nil, err
	}

	return &RawExport{Nodes: nodes, Edges: edges}, nil
}

func decodeArray(top map[string]json.RawMessage, key string) ([]json.RawMessage, error) {
	raw, ok := top[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, pkgerrors.NewMalformedExportError(fmt.Sprintf("export is missing %q", key)).
			WithDetails(map[string]any{"field": key})
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, pkgerrors.NewMalformedExportError(fmt.Sprintf("export field %q is not an array", key)).
			WithDetails(map[string]any{"field": key}).
			WithCause(err)
	}
	if items == nil {
		items = []json.RawMessage{}
	}
	return items, nil
}
