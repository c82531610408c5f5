package ports

import (
	"context"
	"time"

	"kgraph/domain/core/aggregates"
)

// ExportSource fetches the raw backend graph export
type ExportSource interface {
	// FetchExport returns the export body. Implementations must honour ctx
	// cancellation so a superseded ingestion stops early.
	FetchExport(ctx context.Context) ([]byte, error)
	// Name identifies the source in logs and metrics
	Name() string
}

// StoreProvider gives query handlers access to the current graph store
type StoreProvider interface {
	// Current returns the latest fully built store, loading one if none exists yet
	Current(ctx context.Context) (*aggregates.Store, error)
}

// Refresher starts a new ingestion cycle
type Refresher interface {
	Refresh(ctx context.Context) (*aggregates.Store, error)
}

// Ingestion outcomes reported to IngestMetrics
const (
	IngestResultSuccess    = "success"
	IngestResultFailure    = "failure"
	IngestResultSuperseded = "superseded"
)

// IngestMetrics records ingestion cycles
type IngestMetrics interface {
	ObserveIngest(result string, duration time.Duration, report aggregates.IngestReport)
}

// NopIngestMetrics discards all observations
type NopIngestMetrics struct{}

// ObserveIngest implements IngestMetrics
func (NopIngestMetrics) ObserveIngest(string, time.Duration, aggregates.IngestReport) {}
