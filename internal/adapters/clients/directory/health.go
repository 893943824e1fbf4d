package directory

import (
	"context"
	"fmt"

	"github.com/jsamuelsen11/ramp-pipeline/internal/domain"
)

// Name returns the identifier used when this component is registered with a
// [ports.HealthRegistry].
func (c *Client) Name() string {
	return ServiceName
}

// HealthCheck fails fast when the circuit breaker is not closed, and
// otherwise fetches the first page of the listing to prove the directory
// answers with valid data.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := c.http.HealthCheck(ctx); err != nil {
		return fmt.Errorf("area directory: %w: %w", domain.ErrSourceUnavailable, err)
	}
	var page areaPageDTO
	return c.req.getJSON(ctx, pagePath(""), &page)
}
