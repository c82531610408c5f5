package queries

import (
	"time"

	"kgraph/domain/core/aggregates"
)

// GetGraphStatsQuery asks for statistics about the current store
type GetGraphStatsQuery struct {
	IncludeClusters bool `json:"include_clusters,omitempty"`
}

// Validate validates the query
func (q GetGraphStatsQuery) Validate() error {
	return nil
}

// GetGraphStatsResult describes the current store and how it was ingested
type GetGraphStatsResult struct {
	Generation string                  `json:"generation"`
	BuiltAt    time.Time               `json:"built_at"`
	Stats      aggregates.Stats        `json:"stats"`
	Ingest     aggregates.IngestReport `json:"ingest"`
	Clusters   [][]string              `json:"clusters,omitempty"`
}
