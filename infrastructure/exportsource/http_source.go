package exportsource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	pkgerrors "kgraph/pkg/errors"
)

const (
	tracerName = "kgraph/infrastructure/exportsource"
	sourceHTTP = "http"

	defaultMaxBodyBytes = 64 << 20
)

// BreakerConfig holds configuration for the circuit breaker guarding the backend
type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig returns a default configuration for the circuit breaker
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      1,
		Interval:         30 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      3,
	}
}

// HTTPConfig configures the backend export source
type HTTPConfig struct {
	BaseURL      string
	Path         string
	Timeout      time.Duration
	MaxBodyBytes int64
	Breaker      BreakerConfig
}

// HTTPSource fetches the graph export from the backend service
type HTTPSource struct {
	endpoint     string
	client       *http.Client
	maxBodyBytes int64
	breaker      *gobreaker.CircuitBreaker
	tracer       trace.Tracer
	logger       *zap.Logger
}

// NewHTTPSource creates a new backend export source
func NewHTTPSource(cfg HTTPConfig, client *http.Client, logger *zap.Logger) (*HTTPSource, error) {
	endpoint, err := url.JoinPath(cfg.BaseURL, cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("invalid export endpoint: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}

	s := &HTTPSource{
		endpoint:     endpoint,
		client:       client,
		maxBodyBytes: maxBody,
		tracer:       otel.Tracer(tracerName),
		logger:       logger,
	}
	s.breaker = newBreaker("graph-export", cfg.Breaker, logger)
	return s, nil
}

func newBreaker(name string, cfg BreakerConfig, logger *zap.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			// a cancelled fetch says nothing about backend health
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
}

// Name implements ports.ExportSource
func (s *HTTPSource) Name() string {
	return sourceHTTP
}

// Endpoint returns the full export URL
func (s *HTTPSource) Endpoint() string {
	return s.endpoint
}

// BreakerState returns the current circuit breaker state
func (s *HTTPSource) BreakerState() gobreaker.State {
	return s.breaker.State()
}

// FetchExport implements ports.ExportSource
func (s *HTTPSource) FetchExport(ctx context.Context) ([]byte, error) {
	ctx, span := s.tracer.Start(ctx, "HTTPSource.FetchExport",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("http.url", s.endpoint)),
	)
	defer span.End()

	result, err := s.breaker.Execute(func() (any, error) {
		return s.fetch(ctx)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, s.classify(err)
	}

	body := result.([]byte)
	span.SetAttributes(attribute.Int("http.response_size", len(body)))
	return body, nil
}

func (s *HTTPSource) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBodyBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > s.maxBodyBytes {
		return nil, fmt.Errorf("export exceeds %d bytes", s.maxBodyBytes)
	}

	s.logger.Debug("Export fetched",
		zap.String("url", s.endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &statusError{status: resp.StatusCode, body: snippet(body)}
	}
	return body, nil
}

func (s *HTTPSource) classify(err error) error {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return pkgerrors.NewUnavailableError("graph export").
			WithCode(pkgerrors.CodeCircuitOpen).
			WithCause(err)
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return pkgerrors.NewTimeoutError("graph export fetch").WithCause(err)
	}

	appErr := pkgerrors.NewExternalError("graph export", err).WithCode(pkgerrors.CodeTransport)
	var se *statusError
	if errors.As(err, &se) {
		appErr = appErr.WithDetails(map[string]any{"status": se.status, "body": se.body})
	}
	return appErr
}

type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("backend responded with status %d", e.status)
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
