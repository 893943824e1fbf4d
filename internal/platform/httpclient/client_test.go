package httpclient_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/jsamuelsen11/ramp-pipeline/internal/platform/config"
	"github.com/jsamuelsen11/ramp-pipeline/internal/platform/httpclient"
	"github.com/jsamuelsen11/ramp-pipeline/internal/platform/telemetry"
)

const areasPath = "/api/v1/areas?type=msoa"

func testConfig(baseURL string) *config.ClientConfig {
	return &config.ClientConfig{
		BaseURL: baseURL,
		Timeout: 5 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     3,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     100 * time.Millisecond,
			Multiplier:      2.0,
		},
		CircuitBreaker: config.CircuitBreakerConfig{
			MaxFailures:   3,
			Timeout:       1 * time.Second,
			HalfOpenLimit: 1,
		},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// statusSequence answers with codes in order, then 200 with an empty area
// page once the sequence is used up.
func statusSequence(t *testing.T, codes ...int) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := int(calls.Add(1))
		if n <= len(codes) {
			w.WriteHeader(codes[n-1])
			_, _ = io.WriteString(w, http.StatusText(codes[n-1]))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"areas":[]}`)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func get(ctx context.Context, t *testing.T, c *httpclient.Client) (*http.Response, error) {
	t.Helper()

	resp, err := c.Get(ctx, areasPath)
	if resp != nil {
		t.Cleanup(func() { _ = resp.Body.Close() })
	}
	return resp, err
}

// trip opens the breaker of a client configured with MaxFailures 1.
func trip(t *testing.T, c *httpclient.Client) {
	t.Helper()

	if _, err := get(context.Background(), t, c); err == nil {
		t.Fatal("tripping request succeeded, want failure")
	}
}

func TestGet_AreasPage(t *testing.T) {
	t.Parallel()

	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		_, _ = io.WriteString(w, `{"areas":["E02000001"]}`)
	}))
	t.Cleanup(srv.Close)

	client := httpclient.New(testConfig(srv.URL+"/"), "area-directory", nil, testLogger())

	resp, err := get(context.Background(), t, client)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != `{"areas":["E02000001"]}` {
		t.Errorf("body = %q", body)
	}

	if got.Method != http.MethodGet {
		t.Errorf("method = %s, want GET", got.Method)
	}
	if got.URL.Path != "/api/v1/areas" || got.URL.Query().Get("type") != "msoa" {
		t.Errorf("url = %s, want /api/v1/areas?type=msoa", got.URL)
	}
	if a := got.Header.Get("Accept"); a != "application/json" {
		t.Errorf("Accept = %q, want application/json", a)
	}
	if v := got.Header.Get(httpclient.HeaderRunID); v != "" {
		t.Errorf("X-Run-ID = %q, want empty without a run", v)
	}
	if v := got.Header.Get(httpclient.HeaderAPIKey); v != "" {
		t.Errorf("X-API-Key = %q, want empty without a key", v)
	}
}

func TestGet_ForwardsRunIDAndAPIKey(t *testing.T) {
	t.Parallel()

	var runID, apiKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		runID = r.Header.Get(httpclient.HeaderRunID)
		apiKey = r.Header.Get(httpclient.HeaderAPIKey)
		_, _ = io.WriteString(w, `{"areas":[]}`)
	}))
	t.Cleanup(srv.Close)

	cfg := testConfig(srv.URL)
	cfg.APIKey = "k-test"
	client := httpclient.New(cfg, "area-directory", nil, testLogger())

	if _, err := get(httpclient.WithRunID(context.Background(), "run-123"), t, client); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if runID != "run-123" {
		t.Errorf("X-Run-ID = %q, want %q", runID, "run-123")
	}
	if apiKey != "k-test" {
		t.Errorf("X-API-Key = %q, want %q", apiKey, "k-test")
	}
}

func TestGet_Retries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		codes     []int
		wantCalls int32
		wantErr   bool
		want      int
	}{
		{"5xx until success", []int{500, 502}, 3, false, http.StatusOK},
		{"429 until success", []int{429}, 2, false, http.StatusOK},
		{"exhausted keeps last response", []int{503, 503, 503}, 3, true, http.StatusServiceUnavailable},
		{"unknown area not retried", []int{404}, 1, false, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv, calls := statusSequence(t, tt.codes...)
			client := httpclient.New(testConfig(srv.URL), "area-directory", nil, testLogger())

			resp, err := get(context.Background(), t, client)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Get() error = %v, wantErr %v", err, tt.wantErr)
			}
			if resp == nil {
				t.Fatal("Get() response = nil")
			}
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
			if got := calls.Load(); got != tt.wantCalls {
				t.Errorf("server calls = %d, want %d", got, tt.wantCalls)
			}
		})
	}
}

func TestGet_ExhaustedBodyReadable(t *testing.T) {
	t.Parallel()

	srv, _ := statusSequence(t, 503, 503, 503)
	client := httpclient.New(testConfig(srv.URL), "area-directory", nil, testLogger())

	resp, err := get(context.Background(), t, client)
	if err == nil || !strings.Contains(err.Error(), "HTTP 503 from area-directory") {
		t.Fatalf("Get() error = %v, want HTTP 503 from area-directory", err)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "Service Unavailable" {
		t.Errorf("body = %q, want %q", body, "Service Unavailable")
	}
}

func TestGet_HonoursRetryAfter(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = io.WriteString(w, `{"areas":[]}`)
	}))
	t.Cleanup(srv.Close)

	cfg := testConfig(srv.URL)
	cfg.Retry.MaxAttempts = 2
	cfg.Retry.MaxInterval = 300 * time.Millisecond
	client := httpclient.New(cfg, "area-directory", nil, testLogger())

	start := time.Now()
	if _, err := get(context.Background(), t, client); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	elapsed := time.Since(start)

	// The one second hint is honoured up to max_interval.
	if elapsed < 300*time.Millisecond {
		t.Errorf("elapsed = %v, want at least the capped hint of 300ms", elapsed)
	}
	if elapsed >= time.Second {
		t.Errorf("elapsed = %v, want hint capped below 1s", elapsed)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("server calls = %d, want 2", got)
	}
}

func TestGet_SingleAttemptByDefault(t *testing.T) {
	t.Parallel()

	srv, calls := statusSequence(t, 503)

	cfg := testConfig(srv.URL)
	cfg.Retry = config.RetryConfig{}
	client := httpclient.New(cfg, "area-directory", nil, testLogger())

	if _, err := get(context.Background(), t, client); err == nil {
		t.Fatal("Get() error = nil, want error for 503")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server calls = %d, want 1", got)
	}
}

func TestGet_CircuitOpen(t *testing.T) {
	t.Parallel()

	srv, calls := statusSequence(t, 500, 500, 500)

	cfg := testConfig(srv.URL)
	cfg.CircuitBreaker.MaxFailures = 1
	cfg.Retry.MaxAttempts = 1
	client := httpclient.New(cfg, "area-directory", nil, testLogger())

	trip(t, client)
	before := calls.Load()

	resp, err := get(context.Background(), t, client)
	if resp != nil {
		t.Errorf("Get() response = %v, want nil while open", resp.Status)
	}
	if !errors.Is(err, httpclient.ErrCircuitOpen) {
		t.Fatalf("Get() error = %v, want ErrCircuitOpen", err)
	}
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("Get() error = %v, want it to keep gobreaker.ErrOpenState", err)
	}
	if calls.Load() != before {
		t.Error("server was hit while the breaker was open")
	}
}

func TestGet_CircuitRecovers(t *testing.T) {
	t.Parallel()

	srv, _ := statusSequence(t, 500)

	cfg := testConfig(srv.URL)
	cfg.CircuitBreaker.MaxFailures = 1
	cfg.CircuitBreaker.Timeout = 100 * time.Millisecond
	cfg.Retry.MaxAttempts = 1
	client := httpclient.New(cfg, "area-directory", nil, testLogger())

	trip(t, client)
	if _, err := get(context.Background(), t, client); !errors.Is(err, httpclient.ErrCircuitOpen) {
		t.Fatalf("Get() error = %v, want ErrCircuitOpen", err)
	}

	time.Sleep(150 * time.Millisecond)

	resp, err := get(context.Background(), t, client)
	if err != nil {
		t.Fatalf("Get() error = %v, want recovery after the open timeout", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() = %v, want nil once closed", err)
	}
}

func TestGet_CanceledContext(t *testing.T) {
	t.Parallel()

	srv, calls := statusSequence(t)
	client := httpclient.New(testConfig(srv.URL), "area-directory", nil, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := get(ctx, t, client)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Get() error = %v, want context.Canceled", err)
	}
	if got := calls.Load(); got != 0 {
		t.Errorf("server calls = %d, want 0", got)
	}
}

func TestGet_RateLimited(t *testing.T) {
	t.Parallel()

	srv, calls := statusSequence(t)

	cfg := testConfig(srv.URL)
	cfg.RateLimit = config.RateLimitConfig{RequestsPerSecond: 20, BurstSize: 1}
	client := httpclient.New(cfg, "area-directory", nil, testLogger())

	start := time.Now()
	for range 3 {
		if _, err := get(context.Background(), t, client); err != nil {
			t.Fatalf("Get() error = %v", err)
		}
	}

	// Two waits of 50ms after the burst token is spent.
	if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
		t.Errorf("elapsed = %v, want at least 90ms at 20 req/s", elapsed)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server calls = %d, want 3", got)
	}
}

func TestGet_RecordsMetrics(t *testing.T) {
	t.Parallel()

	srv, _ := statusSequence(t, 404, 500)

	reader := sdkmetric.NewManualReader()
	metrics, err := telemetry.NewMetrics(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}

	cfg := testConfig(srv.URL)
	cfg.CircuitBreaker.MaxFailures = 1
	cfg.Retry.MaxAttempts = 1
	client := httpclient.New(cfg, "area-directory", metrics, testLogger())

	// 404 is a clean answer, 500 trips the breaker, the third is rejected.
	for range 3 {
		_, _ = get(context.Background(), t, client)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	results := map[string]int64{}
	var durations uint64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				if m.Name != "http.client.request.total" {
					continue
				}
				for _, dp := range data.DataPoints {
					v, _ := dp.Attributes.Value(telemetry.AttrResult)
					results[v.AsString()] += dp.Value
				}
			case metricdata.Histogram[float64]:
				if m.Name != "http.client.request.duration" {
					continue
				}
				for _, dp := range data.DataPoints {
					durations += dp.Count
				}
			}
		}
	}

	want := map[string]int64{"error": 2, "circuit_open": 1}
	for k, n := range want {
		if results[k] != n {
			t.Errorf("requests with result %q = %d, want %d (all: %v)", k, results[k], n, results)
		}
	}
	if durations != 3 {
		t.Errorf("duration samples = %d, want 3", durations)
	}
}

func TestClient_Name(t *testing.T) {
	t.Parallel()

	client := httpclient.New(testConfig("http://localhost"), "area-directory", nil, testLogger())

	if got := client.Name(); got != "area-directory" {
		t.Errorf("Name() = %q, want %q", got, "area-directory")
	}
}

func TestClient_HealthCheck(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		wait    time.Duration
		trip    bool
		wantErr string
	}{
		{name: "closed"},
		{name: "open", trip: true, wantErr: "failing"},
		{name: "half-open", trip: true, wait: 150 * time.Millisecond, wantErr: "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv, _ := statusSequence(t, 500)

			cfg := testConfig(srv.URL)
			cfg.CircuitBreaker.MaxFailures = 1
			cfg.CircuitBreaker.Timeout = 100 * time.Millisecond
			cfg.Retry.MaxAttempts = 1
			client := httpclient.New(cfg, "area-directory", nil, testLogger())

			if tt.trip {
				trip(t, client)
			}
			time.Sleep(tt.wait)

			err := client.HealthCheck(context.Background())
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("HealthCheck() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("HealthCheck() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}
