package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"kgraph/application/queries/bus"
	"kgraph/domain/core/aggregates"
)

// Collector holds all Prometheus metrics for the application
type Collector struct {
	// Registry for this collector instance
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Ingestion metrics
	Ingestions      *prometheus.CounterVec
	IngestDuration  *prometheus.HistogramVec
	SkippedNodes    *prometheus.CounterVec
	DroppedLinks    *prometheus.CounterVec
	StoreNodes      prometheus.Gauge
	StoreLinks      prometheus.Gauge
	LastPublishedAt prometheus.Gauge

	// Query metrics
	Queries       *prometheus.CounterVec
	QueryDuration *prometheus.HistogramVec
}

// NewCollector creates a new metrics collector with the given namespace.
// Each collector owns its registry so tests can create as many as they need.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		Ingestions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ingestions_total",
				Help:      "Total number of ingestion cycles by result",
			},
			[]string{"result"},
		),
		IngestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ingestion_duration_seconds",
				Help:      "Fetch plus transform duration in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"result"},
		),
		SkippedNodes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ingest_skipped_nodes_total",
				Help:      "Raw nodes skipped during ingestion",
			},
			[]string{"reason"},
		),
		DroppedLinks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ingest_dropped_links_total",
				Help:      "Raw edges dropped during ingestion",
			},
			[]string{"reason"},
		),
		StoreNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_nodes",
			Help:      "Nodes in the published store",
		}),
		StoreLinks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_links",
			Help:      "Links in the published store",
		}),
		LastPublishedAt: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_last_published_timestamp_seconds",
			Help:      "Unix time the current store was published",
		}),
		Queries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "queries_total",
				Help:      "Total number of queries by outcome",
			},
			[]string{"query", "outcome"},
		),
		QueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "query_duration_seconds",
				Help:      "Query handler duration in seconds",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"query"},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.Ingestions,
		c.IngestDuration,
		c.SkippedNodes,
		c.DroppedLinks,
		c.StoreNodes,
		c.StoreLinks,
		c.LastPublishedAt,
		c.Queries,
		c.QueryDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

// GetRegistry returns the Prometheus registry for this collector
func (c *Collector) GetRegistry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// ObserveIngest implements ports.IngestMetrics
func (c *Collector) ObserveIngest(result string, duration time.Duration, report aggregates.IngestReport) {
	c.Ingestions.WithLabelValues(result).Inc()
	c.IngestDuration.WithLabelValues(result).Observe(duration.Seconds())

	if result != "success" {
		return
	}
	for _, n := range report.SkippedNodes {
		c.SkippedNodes.WithLabelValues(string(n.Reason)).Inc()
	}
	for _, l := range report.DroppedLinks {
		c.DroppedLinks.WithLabelValues(string(l.Reason)).Inc()
	}
	c.StoreNodes.Set(float64(report.AcceptedNodes))
	c.StoreLinks.Set(float64(report.AcceptedLinks))
	c.LastPublishedAt.SetToCurrentTime()
}

// StartTimer implements bus.Metrics
func (c *Collector) StartTimer(metric, label string) bus.Timer {
	return &timer{
		start:    time.Now(),
		observer: c.QueryDuration.WithLabelValues(label),
	}
}

// Increment implements bus.Metrics. query_count is implied by the
// success and error counters and is not recorded separately.
func (c *Collector) Increment(metric, label string) {
	switch metric {
	case "query_success":
		c.Queries.WithLabelValues(label, "success").Inc()
	case "query_errors":
		c.Queries.WithLabelValues(label, "error").Inc()
	}
}

type timer struct {
	start    time.Time
	observer prometheus.Observer
}

func (t *timer) Stop() {
	t.observer.Observe(time.Since(t.start).Seconds())
}

// HTTPMiddleware records request counts and latency per chi route pattern
func (c *Collector) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		c.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		c.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
