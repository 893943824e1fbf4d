package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/sbinet/npyio/npz"

	"github.com/jsamuelsen11/ramp-pipeline/internal/artifact"
	"github.com/jsamuelsen11/ramp-pipeline/internal/domain"
	"github.com/jsamuelsen11/ramp-pipeline/internal/platform/logging"
	"github.com/jsamuelsen11/ramp-pipeline/internal/ports"
)

// Snapshot array names, in the order they appear in the archive.
var SnapshotArrays = []string{
	"people_ages",
	"people_sexes",
	"people_households",
	"people_areas",
	"people_infected",
	"people_prngs",
	"area_codes",
	"area_initial_cases",
}

// Compile-time interface check.
var _ ports.SnapshotWriter = (*SnapshotWriter)(nil)

// SnapshotWriter implements ports.SnapshotWriter.
type SnapshotWriter struct{}

// NewSnapshotWriter returns a SnapshotWriter.
func NewSnapshotWriter() *SnapshotWriter {
	return &SnapshotWriter{}
}

// WriteSnapshot encodes pop as an npz archive at path. people_prngs holds one
// draw from r per person, taken in person order.
func (w *SnapshotWriter) WriteSnapshot(ctx context.Context, pop *domain.Population, path string, r *rand.Rand) error {
	prngs := make([]uint32, len(pop.People))
	for i := range prngs {
		prngs[i] = r.Uint32()
	}

	data, err := encodeSnapshot(pop, prngs)
	if err != nil {
		return &domain.ArtifactError{Kind: domain.ErrWriteFailure, Path: path, Err: err}
	}
	if err := artifact.WriteFile(ctx, path, data); err != nil {
		return &domain.ArtifactError{Kind: domain.ErrWriteFailure, Path: path, Err: err}
	}

	logging.FromContext(ctx).InfoContext(ctx, "snapshot written",
		slog.String("path", path),
		slog.Int("people", len(pop.People)),
		slog.Int("bytes", len(data)),
	)
	return nil
}

func encodeSnapshot(pop *domain.Population, prngs []uint32) ([]byte, error) {
	n := len(pop.People)
	ages := make([]uint16, n)
	sexes := make([]uint8, n)
	households := make([]uint32, n)
	areas := make([]uint32, n)
	infected := make([]uint8, n)
	for i, p := range pop.People {
		ages[i] = p.Age
		sexes[i] = uint8(p.Sex)
		households[i] = p.Household
		areas[i] = p.Area
		if p.Infected {
			infected[i] = 1
		}
	}

	codes := make([]string, len(pop.Areas))
	cases := make([]uint32, len(pop.Areas))
	for i, a := range pop.Areas {
		if a.InitialCases < 0 {
			return nil, fmt.Errorf("area %s has %d initial cases", a.Code, a.InitialCases)
		}
		codes[i] = a.Code.String()
		cases[i] = uint32(a.InitialCases)
	}

	arrays := map[string]any{
		"people_ages":        ages,
		"people_sexes":       sexes,
		"people_households":  households,
		"people_areas":       areas,
		"people_infected":    infected,
		"people_prngs":       prngs,
		"area_codes":         codes,
		"area_initial_cases": cases,
	}

	var buf bytes.Buffer
	zw := npz.NewWriter(&buf)
	for _, name := range SnapshotArrays {
		if err := zw.Write(name+".npy", arrays[name]); err != nil {
			_ = zw.Close()
			return nil, fmt.Errorf("encode %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
