package input

import (
	"context"
	"fmt"
	"os"

	"github.com/jsamuelsen11/ramp-pipeline/internal/domain"
	"github.com/jsamuelsen11/ramp-pipeline/internal/ports"
)

// Compile-time interface check.
var _ ports.HealthChecker = (*TableCheck)(nil)

// TableCheck reports whether a region's input table can be opened and parsed.
type TableCheck struct {
	resolver *Resolver
	region   domain.Region
}

// NewTableChecks returns one check per region that reads a bundled table.
func NewTableChecks(resolver *Resolver) []*TableCheck {
	var checks []*TableCheck
	for _, region := range domain.Regions() {
		if _, ok := region.Table(); ok {
			checks = append(checks, &TableCheck{resolver: resolver, region: region})
		}
	}
	return checks
}

// Name implements ports.HealthChecker.
func (c *TableCheck) Name() string {
	return "input:" + c.region.String()
}

// HealthCheck implements ports.HealthChecker.
func (c *TableCheck) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, _ := c.resolver.TablePath(c.region)
	if _, err := os.Stat(path); err != nil {
		if _, gzErr := os.Stat(path + ".gz"); gzErr != nil {
			return fmt.Errorf("%w: %s", domain.ErrSourceUnavailable, path)
		}
	}
	_, err := c.resolver.fromTable(path)
	return err
}
