package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"kgraph/application/ingest"
	"kgraph/application/ports"
	"kgraph/domain/core/aggregates"
	pkgerrors "kgraph/pkg/errors"
)

const tracerName = "kgraph/application/services"

// GraphSession owns the graph store for one viewing session.
//
// Readers always see a fully built store: the current store is swapped
// atomically and only after a successful ingestion. A failed ingestion keeps
// the previous store. Starting a new ingestion cancels the one in flight
// and its result, if it still arrives, is discarded.
type GraphSession struct {
	source      ports.ExportSource
	transformer *ingest.Transformer
	metrics     ports.IngestMetrics
	tracer      trace.Tracer
	logger      *zap.Logger

	current atomic.Pointer[aggregates.Store]
	initial singleflight.Group

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	latest     *cycle
}

// cycle is one ingestion attempt. done is closed once err is final.
type cycle struct {
	done chan struct{}
	err  error
}

func (c *cycle) finish(err error) {
	c.err = err
	close(c.done)
}

// NewGraphSession creates a session that ingests from source
func NewGraphSession(
	source ports.ExportSource,
	transformer *ingest.Transformer,
	metrics ports.IngestMetrics,
	logger *zap.Logger,
) *GraphSession {
	if metrics == nil {
		metrics = ports.NopIngestMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GraphSession{
		source:      source,
		transformer: transformer,
		metrics:     metrics,
		tracer:      otel.Tracer(tracerName),
		logger:      logger,
	}
}

// Snapshot returns the current store without triggering a load. It is nil
// until the first successful ingestion.
func (s *GraphSession) Snapshot() *aggregates.Store {
	return s.current.Load()
}

// Generation returns the number of ingestion cycles started so far
func (s *GraphSession) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Current returns the latest store. The first call with no store loads one;
// concurrent first calls share a single ingestion that outlives any single
// caller. If a refresh supersedes that load, Current waits for the newest
// cycle instead of failing.
func (s *GraphSession) Current(ctx context.Context) (*aggregates.Store, error) {
	if store := s.current.Load(); store != nil {
		return store, nil
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := s.initial.DoChan("initial", func() (any, error) {
		if store := s.current.Load(); store != nil {
			return store, nil
		}
		return s.Refresh(loadCtx)
	})

	var err error
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err == nil {
			return res.Val.(*aggregates.Store), nil
		}
		err = res.Err
	}

	for pkgerrors.IsSuperseded(err) {
		if store := s.current.Load(); store != nil {
			return store, nil
		}
		err = s.awaitLatest(ctx)
	}
	if err != nil {
		return nil, err
	}
	if store := s.current.Load(); store != nil {
		return store, nil
	}
	return nil, pkgerrors.NewUnavailableError("graph store")
}

// awaitLatest blocks until the most recently started cycle settles
func (s *GraphSession) awaitLatest(ctx context.Context) error {
	s.mu.Lock()
	c := s.latest
	s.mu.Unlock()
	if c == nil {
		return pkgerrors.NewUnavailableError("graph store")
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return c.err
	}
}

// Refresh runs one ingestion cycle and publishes the new store if no newer
// cycle was started meanwhile.
func (s *GraphSession) Refresh(ctx context.Context) (*aggregates.Store, error) {
	ctx, span := s.tracer.Start(ctx, "GraphSession.Refresh",
		trace.WithAttributes(attribute.String("source", s.source.Name())),
	)
	defer span.End()

	gen, fetchCtx, cancel, c := s.begin(ctx)
	defer cancel()
	span.SetAttributes(attribute.Int64("generation", int64(gen)))

	start := time.Now()
	store, err := s.ingest(fetchCtx)
	duration := time.Since(start)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		s.logger.Info("Discarding superseded ingestion",
			zap.Uint64("generation", gen),
			zap.Uint64("latest", s.generation),
		)
		s.metrics.ObserveIngest(ports.IngestResultSuperseded, duration, aggregates.IngestReport{})
		span.SetAttributes(attribute.Bool("superseded", true))
		superseded := pkgerrors.NewSupersededError(gen)
		c.finish(superseded)
		return nil, superseded
	}
	s.cancel = nil

	if err != nil {
		s.logger.Error("Graph ingestion failed, keeping previous store",
			zap.Uint64("generation", gen),
			zap.String("source", s.source.Name()),
			zap.Bool("hasPrevious", s.current.Load() != nil),
			zap.Error(err),
		)
		s.metrics.ObserveIngest(ports.IngestResultFailure, duration, aggregates.IngestReport{})
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.finish(err)
		return nil, err
	}

	s.current.Store(store)
	c.finish(nil)
	s.metrics.ObserveIngest(ports.IngestResultSuccess, duration, store.Report())
	span.SetAttributes(
		attribute.Int("nodes", store.NodeCount()),
		attribute.Int("links", store.LinkCount()),
	)

	s.logger.Info("Graph store published",
		zap.Uint64("generation", gen),
		zap.String("storeGeneration", store.Generation()),
		zap.Duration("duration", duration),
	)
	return store, nil
}

// begin registers a new ingestion cycle and cancels the one in flight
func (s *GraphSession) begin(ctx context.Context) (uint64, context.Context, context.CancelFunc, *cycle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	s.generation++
	fetchCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.latest = &cycle{done: make(chan struct{})}
	return s.generation, fetchCtx, cancel, s.latest
}

func (s *GraphSession) ingest(ctx context.Context) (*aggregates.Store, error) {
	ctx, span := s.tracer.Start(ctx, "GraphSession.ingest")
	defer span.End()

	data, err := s.source.FetchExport(ctx)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	store, err := s.transformer.Ingest(data)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("bytes", len(data)))
	return store, nil
}
