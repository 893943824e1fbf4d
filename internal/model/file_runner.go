package model

import (
	"context"
	"log/slog"
	"math/rand/v2"

	"github.com/jsamuelsen11/ramp-pipeline/internal/domain"
	"github.com/jsamuelsen11/ramp-pipeline/internal/platform/logging"
	"github.com/jsamuelsen11/ramp-pipeline/internal/ports"
)

// Compile-time interface check.
var _ ports.ModelRunner = (*FileRunner)(nil)

// FileRunner loads its parameters from a file at the start of every run.
type FileRunner struct {
	path string
}

// NewFileRunner returns a runner reading parameters from path.
func NewFileRunner(path string) *FileRunner {
	return &FileRunner{path: path}
}

// Run loads the parameters file and runs the baseline model with it.
func (f *FileRunner) Run(ctx context.Context, pop *domain.Population, outDir string, r *rand.Rand) error {
	params, err := LoadParameters(f.path)
	if err != nil {
		return err
	}
	logging.FromContext(ctx).InfoContext(ctx, "model parameters loaded",
		slog.String("path", f.path),
		slog.Int("iterations", params.Microsim.Iterations),
		slog.Bool("output", params.Microsim.Output),
	)
	return NewRunner(params).Run(ctx, pop, outDir, r)
}
