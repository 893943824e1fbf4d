// Package health provides a thread-safe registry of preflight checks. The
// doctor command runs every registered check and reports which prerequisites
// of the pipeline are missing.
package health

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jsamuelsen11/ramp-pipeline/internal/ports"
)

// Compile-time interface check.
var _ ports.HealthRegistry = (*Registry)(nil)

const defaultMaxConcurrent = 4

// Result is the outcome of one check.
type Result struct {
	Name     string
	Err      error
	Duration time.Duration
}

// Registry is a thread-safe implementation of [ports.HealthRegistry].
// Components that implement [ports.HealthChecker] are registered at startup
// and checked concurrently on demand.
type Registry struct {
	mu            sync.RWMutex
	checkers      []ports.HealthChecker
	timeout       time.Duration
	maxConcurrent int
}

// Option customizes a Registry.
type Option func(*Registry)

// WithTimeout bounds each individual check.
func WithTimeout(d time.Duration) Option {
	return func(r *Registry) {
		r.timeout = d
	}
}

// WithMaxConcurrent limits how many checks run at once.
func WithMaxConcurrent(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.maxConcurrent = n
		}
	}
}

// New creates an empty health check registry.
func New(opts ...Option) *Registry {
	r := &Registry{maxConcurrent: defaultMaxConcurrent}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a health checker to the registry. Safe for concurrent use.
func (r *Registry) Register(checker ports.HealthChecker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkers = append(r.checkers, checker)
}

// CheckAll executes all registered health checks and returns results keyed by
// checker name. Nil values indicate healthy components. When two checkers
// share a name the one registered last wins.
func (r *Registry) CheckAll(ctx context.Context) map[string]error {
	report := r.Report(ctx)
	results := make(map[string]error, len(report))
	for _, res := range report {
		results[res.Name] = res.Err
	}
	return results
}

// Report executes all registered checks and returns one Result per checker in
// registration order. The checker slice is copied under a read lock so checks
// run without holding the lock.
func (r *Registry) Report(ctx context.Context) []Result {
	r.mu.RLock()
	checkers := make([]ports.HealthChecker, len(r.checkers))
	copy(checkers, r.checkers)
	r.mu.RUnlock()

	results := make([]Result, len(checkers))

	var g errgroup.Group
	g.SetLimit(r.maxConcurrent)
	for i, c := range checkers {
		g.Go(func() error {
			results[i] = r.run(ctx, c)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (r *Registry) run(ctx context.Context, c ports.HealthChecker) Result {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	err := c.HealthCheck(ctx)
	return Result{Name: c.Name(), Err: err, Duration: time.Since(start)}
}

// Healthy reports whether every result passed.
func Healthy(results []Result) bool {
	for _, res := range results {
		if res.Err != nil {
			return false
		}
	}
	return true
}
