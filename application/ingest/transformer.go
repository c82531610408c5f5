package ingest

import (
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"kgraph/domain/core/aggregates"
	pkgerrors "kgraph/pkg/errors"
)

// Transformer turns a backend export into a Store. Individual bad nodes
// and edges are reported and skipped, never fatal.
type Transformer struct {
	logger *zap.Logger
}

// NewTransformer creates a new transformer
func NewTransformer(logger *zap.Logger) *Transformer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Transformer{logger: logger}
}

// Ingest decodes an export body and builds a store from it. The only error
// it returns is a MalformedExport for a body with an invalid top level.
func (t *Transformer) Ingest(data []byte) (*aggregates.Store, error) {
	export, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return t.Transform(export), nil
}

// Transform builds a store from an already-decoded export. All nodes are
// added before any edge so edge endpoints may appear anywhere in the node
// list. Duplicate node ids keep the first occurrence.
func (t *Transformer) Transform(export *RawExport) *aggregates.Store {
	builder := aggregates.NewStoreBuilder()
	if export == nil {
		return builder.Build()
	}

	report := aggregates.IngestReport{
		RawNodes: len(export.Nodes),
		RawEdges: len(export.Edges),
	}

	for i, data := range export.Nodes {
		var raw RawNode
		if err := json.Unmarshal(data, &raw); err != nil {
			t.logger.Warn("Skipping undecodable node",
				zap.Int("index", i),
				zap.Error(err),
			)
			report.SkippedNodes = append(report.SkippedNodes, aggregates.SkippedNode{
				Index:  i,
				Reason: aggregates.DropReasonUndecodable,
			})
			continue
		}

		err := builder.AddNode(TransformNode(raw))
		switch {
		case err == nil:
			report.AcceptedNodes++
			t.noteIgnored(&report, "node", i, raw.ID, raw.Ignored)
		case errors.Is(err, aggregates.ErrDuplicateNodeID):
			t.logger.Warn("Skipping duplicate node id",
				zap.String("code", pkgerrors.CodeDuplicateNodeID),
				zap.String("nodeID", raw.ID),
				zap.Int("index", i),
			)
			report.SkippedNodes = append(report.SkippedNodes, aggregates.SkippedNode{
				Index:  i,
				ID:     raw.ID,
				Reason: aggregates.DropReasonDuplicateID,
			})
		default:
			t.logger.Warn("Skipping node without id",
				zap.Int("index", i),
				zap.String("type", raw.Type),
			)
			report.SkippedNodes = append(report.SkippedNodes, aggregates.SkippedNode{
				Index:  i,
				Reason: aggregates.DropReasonMissingID,
			})
		}
	}

	for i, data := range export.Edges {
		var raw RawEdge
		if err := json.Unmarshal(data, &raw); err != nil {
			t.logger.Warn("Dropping undecodable edge",
				zap.Int("index", i),
				zap.Error(err),
			)
			report.DroppedLinks = append(report.DroppedLinks, aggregates.DroppedLink{
				Index:  i,
				Reason: aggregates.DropReasonUndecodable,
			})
			continue
		}

		if _, err := builder.AddLink(TransformEdge(raw)); err != nil {
			t.logger.Debug("Dropping edge with unresolved endpoint",
				zap.String("code", pkgerrors.CodeUnresolvedEdgeEndpoint),
				zap.String("source", raw.Source),
				zap.String("target", raw.Target),
				zap.String("type", raw.Type),
			)
			report.DroppedLinks = append(report.DroppedLinks, aggregates.DroppedLink{
				Index:  i,
				Source: raw.Source,
				Target: raw.Target,
				Type:   raw.Type,
				Reason: aggregates.DropReasonUnresolvedEndpoint,
			})
			continue
		}
		report.AcceptedLinks++
		t.noteIgnored(&report, "edge", i, raw.Source+"->"+raw.Target, raw.Ignored)
	}

	store := builder.WithReport(report).Build()

	t.logger.Info("Graph store built",
		zap.String("generation", store.Generation()),
		zap.Int("nodes", report.AcceptedNodes),
		zap.Int("links", report.AcceptedLinks),
		zap.Int("skippedNodes", len(report.SkippedNodes)),
		zap.Int("droppedLinks", len(report.DroppedLinks)),
		zap.Int("ignoredFields", len(report.IgnoredFields)),
	)

	return store
}

func (t *Transformer) noteIgnored(report *aggregates.IngestReport, element string, index int, id string, fields []string) {
	for _, field := range fields {
		t.logger.Warn("Ignoring malformed optional field",
			zap.String("element", element),
			zap.String("id", id),
			zap.String("field", field),
			zap.Int("index", index),
		)
		report.IgnoredFields = append(report.IgnoredFields, aggregates.IgnoredField{
			Element: element,
			Index:   index,
			ID:      id,
			Field:   field,
		})
	}
}
