package ports

import (
	"context"
	"math/rand/v2"

	"github.com/jsamuelsen11/ramp-pipeline/internal/artifact"
	"github.com/jsamuelsen11/ramp-pipeline/internal/domain"
)

// InputResolver turns a region into its initial conditions.
type InputResolver interface {
	// Resolve returns domain.ErrSourceUnavailable when the region's source
	// cannot be read and domain.ErrMalformedInputRow for unparseable rows.
	Resolve(ctx context.Context, region domain.Region) (*domain.InitialConditions, error)
}

// Synthesizer builds a population from initial conditions. The caller owns
// the random generator; implementations must draw only from r.
type Synthesizer interface {
	Synthesize(ctx context.Context, ic *domain.InitialConditions, r *rand.Rand) (*domain.Population, error)
}

// CacheWriter writes the model-ready cache files for a population into dir.
type CacheWriter interface {
	WritePythonCache(ctx context.Context, pop *domain.Population, dir string, r *rand.Rand) error
}

// SnapshotWriter writes a point-in-time snapshot of a population to path.
type SnapshotWriter interface {
	WriteSnapshot(ctx context.Context, pop *domain.Population, path string, r *rand.Rand) error
}

// ModelRunner drives a simulation over a population. Any output it produces
// goes under outDir, which the runner creates if it writes anything.
type ModelRunner interface {
	Run(ctx context.Context, pop *domain.Population, outDir string, r *rand.Rand) error
}

// ArtifactStore persists intermediate products between invocations.
// Implemented by artifact.Store.
type ArtifactStore interface {
	Path(key artifact.Key) string
	Write(ctx context.Context, key artifact.Key, v any) error
	Read(ctx context.Context, key artifact.Key, v any) error
	Exists(key artifact.Key) bool
	PrepareDir(key artifact.Key) (string, error)
	PrepareFile(key artifact.Key) (string, error)
}
