package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	"github.com/jsamuelsen11/ramp-pipeline/internal/platform/config"
)

// jitterFraction bounds the random spread applied to each delay (±25%).
const jitterFraction = 0.25

type retryPolicy struct {
	attempts   int
	initial    time.Duration
	max        time.Duration
	multiplier float64
}

func newRetryPolicy(cfg config.RetryConfig) retryPolicy {
	p := retryPolicy{
		attempts:   max(cfg.MaxAttempts, 1),
		initial:    cfg.InitialInterval,
		max:        cfg.MaxInterval,
		multiplier: cfg.Multiplier,
	}
	if p.multiplier < 1 {
		p.multiplier = 1
	}
	if p.max < p.initial {
		p.max = p.initial
	}
	return p
}

// delay is the wait before retry n (1 for the first retry). A server hint
// overrides the computed delay when longer, bounded by max.
func (p retryPolicy) delay(n int, hint time.Duration) time.Duration {
	d := float64(p.initial) * math.Pow(p.multiplier, float64(n-1))
	d = min(d, float64(p.max))
	d += d * jitterFraction * (2*rand.Float64() - 1)
	wait := time.Duration(max(d, 0))
	if hint > wait {
		wait = min(hint, p.max)
	}
	return wait
}

// getWithRetry sends req until it gets a non-retryable answer or runs out of
// attempts. Each attempt sends a clone so no state leaks between tries. On
// exhaustion after a retryable status the final response is returned along
// with the error.
func (c *Client) getWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	var (
		lastErr error
		hint    time.Duration
	)
	for attempt := range c.policy.attempts {
		if attempt > 0 {
			wait := c.policy.delay(attempt, hint)
			c.logger.WarnContext(ctx, "retrying directory request",
				slog.String("peer_service", c.peer),
				slog.String("url", req.URL.String()),
				slog.Int("attempt", attempt+1),
				slog.Int("max_attempts", c.policy.attempts),
				slog.Duration("backoff", wait),
				slog.Any("error", lastErr),
			)
			if err := sleep(ctx, wait); err != nil {
				return nil, err
			}
		}
		hint = 0

		resp, err := c.http.Do(req.Clone(ctx))
		if err != nil {
			if !isRetryable(err) {
				return nil, err
			}
			lastErr = err
			continue
		}
		if !isRetryableStatus(resp.StatusCode) {
			return resp, nil
		}

		lastErr = fmt.Errorf("HTTP %d from %s", resp.StatusCode, c.peer)
		if attempt == c.policy.attempts-1 {
			return resp, lastErr
		}
		hint = parseRetryAfter(resp.Header.Get("Retry-After"), time.Now())
		discard(resp)
	}
	return nil, lastErr
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// discard drains and closes the body so the connection can be reused.
func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

// parseRetryAfter reads a Retry-After value in seconds or as an HTTP date.
// Unparseable or past values yield zero.
func parseRetryAfter(v string, now time.Time) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(max(secs, 0)) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil && at.After(now) {
		return at.Sub(now)
	}
	return 0
}

// isRetryable reports whether a transport error may succeed on a later
// attempt. Cancellation and deadlines belong to the caller and end the loop.
func isRetryable(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// isRetryableStatus reports whether the directory asked to be tried again:
// 429 or any 5xx.
func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
