package ports

import (
	"context"

	"github.com/jsamuelsen11/ramp-pipeline/internal/domain"
)

// AreaDirectory enumerates every area code known to the national directory.
// Implemented by the directory HTTP adapter; called by the input resolver for
// the national region.
type AreaDirectory interface {
	// AllAreaCodes returns every code, deduplicated, in the order the
	// directory returned them.
	// Returns domain.ErrSourceUnavailable if the directory cannot be reached
	// or returns invalid data.
	AllAreaCodes(ctx context.Context) ([]domain.AreaCode, error)
}

// RunLedger persists a record of every stage invocation.
type RunLedger interface {
	// Record appends a completed run.
	Record(ctx context.Context, run domain.Run) error

	// List returns runs newest first.
	List(ctx context.Context, filter domain.RunFilter) ([]domain.Run, error)
}
