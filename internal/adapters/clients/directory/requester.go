package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/jsamuelsen11/ramp-pipeline/internal/domain"
	"github.com/jsamuelsen11/ramp-pipeline/internal/platform/httpclient"
)

// maxResponseSize bounds a single page body.
const maxResponseSize = 32 << 20

// requester owns the response lifecycle for directory calls: body cleanup,
// status checks, error translation and JSON decoding.
type requester struct {
	client *httpclient.Client
	logger *slog.Logger
}

// getJSON fetches path and decodes a 200 response into out. Every failure
// wraps domain.ErrSourceUnavailable.
func (r *requester) getJSON(ctx context.Context, path string, out any) error {
	resp, err := r.client.Get(ctx, path)
	switch {
	case errors.Is(err, httpclient.ErrCircuitOpen):
		return fmt.Errorf("area directory: %w: %w", domain.ErrSourceUnavailable, err)
	case err != nil && resp != nil:
		// Retries ran out on a retryable status.
		defer r.closeBody(ctx, resp)
		return TranslateHTTPError(resp)
	case err != nil:
		r.logger.ErrorContext(ctx, "request failed",
			slog.String("operation", "directory.getJSON"),
			slog.String("path", path),
			slog.Any("error", err),
		)
		return unavailable("GET %s: %v", path, err)
	}
	defer r.closeBody(ctx, resp)

	if resp.StatusCode != http.StatusOK {
		r.logger.ErrorContext(ctx, "unexpected status",
			slog.String("operation", "directory.getJSON"),
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
		)
		return TranslateHTTPError(resp)
	}

	dec := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize))
	if err := dec.Decode(out); err != nil {
		return unavailable("decoding response from GET %s: %v", path, err)
	}
	return nil
}

func (r *requester) closeBody(ctx context.Context, resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		r.logger.WarnContext(ctx, "failed to close response body",
			slog.Any("error", err),
		)
	}
}
