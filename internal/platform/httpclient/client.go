// Package httpclient is the resilient GET transport behind the area directory
// adapter. Every call passes, in order, through a circuit breaker, an
// optional rate limiter, a client span, header injection and a retry loop
// with exponential backoff.
//
//	client := httpclient.New(&cfg.Directory, directory.ServiceName, metrics, logger)
//	resp, err := client.Get(ctx, "/api/v1/areas?type=msoa")
//
// The stage dispatcher tags the context with the run ID, which is forwarded
// as X-Run-ID so directory logs line up with the run ledger:
//
//	ctx = httpclient.WithRunID(ctx, runID)
//
// A configured API key is sent as X-API-Key and redacted in debug logs.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/jsamuelsen11/ramp-pipeline/internal/platform/config"
	"github.com/jsamuelsen11/ramp-pipeline/internal/platform/logging"
	"github.com/jsamuelsen11/ramp-pipeline/internal/platform/telemetry"
)

// Header names set on outbound requests.
const (
	HeaderRunID  = "X-Run-ID"
	HeaderAPIKey = "X-API-Key"
)

// ErrCircuitOpen is returned without contacting the server while the
// breaker is open or its half-open request budget is spent.
var ErrCircuitOpen = errors.New("circuit breaker open")

type runIDKey struct{}

// WithRunID returns a context whose outbound requests carry id as X-Run-ID.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunIDFromContext returns the run ID stored by WithRunID.
func RunIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(runIDKey{}).(string)
	return id, ok && id != ""
}

// Client issues GET requests against one base URL.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	peer    string
	breaker *gobreaker.CircuitBreaker[*http.Response]
	limiter *rate.Limiter // nil when rate limiting is off
	policy  retryPolicy
	metrics *telemetry.Metrics
	logger  *slog.Logger
}

// New builds a Client from cfg. peer names the downstream service in spans,
// metrics and health reports. metrics may be nil.
func New(cfg *config.ClientConfig, peer string, metrics *telemetry.Metrics, logger *slog.Logger) *Client {
	maxFailures := cfg.CircuitBreaker.MaxFailures
	breaker := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        peer,
		MaxRequests: clampUint32(cfg.CircuitBreaker.HalfOpenLimit),
		Timeout:     cfg.CircuitBreaker.Timeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return int(c.ConsecutiveFailures) >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("peer_service", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})

	c := &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		peer:    peer,
		breaker: breaker,
		policy:  newRetryPolicy(cfg.Retry),
		metrics: metrics,
		logger:  logger,
	}
	if rl := cfg.RateLimit; rl.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(rl.RequestsPerSecond), rl.BurstSize)
	}
	return c
}

// Get fetches path, which is relative to the base URL and may carry a query
// string.
//
// A non-retryable response is returned with a nil error whatever its status.
// When retries run out on a retryable status, the last response is returned
// together with the error and the caller must close its body. Breaker
// rejections wrap ErrCircuitOpen and return no response.
func (c *Client) Get(ctx context.Context, path string) (*http.Response, error) {
	start := time.Now()

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		spanCtx, span := c.startSpan(ctx, path)
		defer span.End()

		req, err := c.newRequest(spanCtx, path)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		resp, err := c.getWithRetry(spanCtx, req)
		endSpan(span, resp, err)
		return resp, err
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = fmt.Errorf("%s: %w (%w)", c.peer, ErrCircuitOpen, err)
	}

	c.record(ctx, start, resp, err)
	return resp, err
}

// Name returns the downstream service name. With HealthCheck it satisfies
// ports.HealthChecker.
func (c *Client) Name() string {
	return c.peer
}

// HealthCheck maps the breaker state to a preflight result without a
// network call: closed is healthy, half-open is degraded, open is failing.
func (c *Client) HealthCheck(_ context.Context) error {
	switch state := c.breaker.State(); state {
	case gobreaker.StateClosed:
		return nil
	case gobreaker.StateHalfOpen:
		return fmt.Errorf("%s: degraded (circuit breaker half-open)", c.peer)
	case gobreaker.StateOpen:
		return fmt.Errorf("%s: failing (circuit breaker open)", c.peer)
	default:
		return fmt.Errorf("%s: circuit breaker in unknown state %v", c.peer, state)
	}
}

func (c *Client) newRequest(ctx context.Context, path string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("building GET %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if id, ok := RunIDFromContext(ctx); ok {
		req.Header.Set(HeaderRunID, id)
	}
	if c.apiKey != "" {
		req.Header.Set(HeaderAPIKey, c.apiKey)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	c.logger.DebugContext(ctx, "outbound request",
		slog.String("peer_service", c.peer),
		slog.String("url", req.URL.String()),
		slog.Any("headers", logging.RedactHeaders(req.Header)),
	)
	return req, nil
}

func (c *Client) startSpan(ctx context.Context, path string) (context.Context, trace.Span) {
	return otel.Tracer("httpclient").Start(ctx, "GET "+c.peer,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", http.MethodGet),
			attribute.String("url.path", path),
			attribute.String("peer.service", c.peer),
		),
	)
}

func endSpan(span trace.Span, resp *http.Response, err error) {
	if resp != nil {
		span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// record counts every call, breaker rejections included.
func (c *Client) record(ctx context.Context, start time.Time, resp *http.Response, err error) {
	if c.metrics == nil {
		return
	}

	status, result := 0, "error"
	if resp != nil {
		status = resp.StatusCode
		if status < http.StatusBadRequest && err == nil {
			result = "success"
		}
	}
	if errors.Is(err, ErrCircuitOpen) {
		result = "circuit_open"
	}

	attrs := metric.WithAttributes(
		telemetry.AttrHTTPMethod.String(http.MethodGet),
		telemetry.AttrHTTPStatus.Int(status),
		telemetry.AttrPeerService.String(c.peer),
		telemetry.AttrResult.String(result),
	)
	c.metrics.ClientRequestDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	c.metrics.ClientRequestTotal.Add(ctx, 1, attrs)
}

func clampUint32(v int) uint32 {
	switch {
	case v <= 0:
		return 0
	case v > math.MaxUint32:
		return math.MaxUint32
	default:
		return uint32(v)
	}
}
