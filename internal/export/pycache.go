package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"path/filepath"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/jsamuelsen11/ramp-pipeline/internal/artifact"
	"github.com/jsamuelsen11/ramp-pipeline/internal/domain"
	"github.com/jsamuelsen11/ramp-pipeline/internal/platform/logging"
	"github.com/jsamuelsen11/ramp-pipeline/internal/ports"
)

// Python cache file names.
const (
	PeopleFile     = "people.csv"
	HouseholdsFile = "households.csv"
	AreasFile      = "areas.csv"
	ManifestFile   = "manifest.json"
)

// Compile-time interface check.
var _ ports.CacheWriter = (*CacheWriter)(nil)

// Manifest summarises a python cache directory.
type Manifest struct {
	Region       string `json:"region"`
	Areas        int    `json:"areas"`
	Households   int    `json:"households"`
	People       int    `json:"people"`
	Infected     int    `json:"infected"`
	PRNGSeedBase uint64 `json:"prng_seed_base"`
}

// CacheWriter implements ports.CacheWriter.
type CacheWriter struct{}

// NewCacheWriter returns a CacheWriter.
func NewCacheWriter() *CacheWriter {
	return &CacheWriter{}
}

// WritePythonCache writes the cache files into dir, which must exist. The
// files are encoded and written concurrently.
func (w *CacheWriter) WritePythonCache(ctx context.Context, pop *domain.Population, dir string, r *rand.Rand) error {
	manifest := Manifest{
		Region:       pop.Region.Name(),
		Areas:        len(pop.Areas),
		Households:   len(pop.Households),
		People:       len(pop.People),
		Infected:     pop.InfectedCount(),
		PRNGSeedBase: r.Uint64(),
	}

	files := map[string]func() ([]byte, error){
		PeopleFile:     func() ([]byte, error) { return peopleCSV(pop) },
		HouseholdsFile: func() ([]byte, error) { return householdsCSV(pop) },
		AreasFile:      func() ([]byte, error) { return areasCSV(pop) },
		ManifestFile:   func() ([]byte, error) { return manifestJSON(manifest) },
	}

	g, ctx := errgroup.WithContext(ctx)
	for name, encode := range files {
		g.Go(func() error {
			data, err := encode()
			if err != nil {
				return fmt.Errorf("encode %s: %w", name, err)
			}
			path := filepath.Join(dir, name)
			if err := artifact.WriteFile(ctx, path, data); err != nil {
				return &domain.ArtifactError{Kind: domain.ErrWriteFailure, Path: path, Err: err}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	logging.FromContext(ctx).InfoContext(ctx, "python cache written",
		slog.String("dir", dir),
		slog.Int("people", manifest.People),
		slog.Uint64("prng_seed_base", manifest.PRNGSeedBase),
	)
	return nil
}

func peopleCSV(pop *domain.Population) ([]byte, error) {
	return encodeCSV([]string{"id", "household", "area", "age", "sex", "infected"}, len(pop.People), func(i int) []string {
		p := pop.People[i]
		return []string{
			strconv.FormatUint(uint64(p.ID), 10),
			strconv.FormatUint(uint64(p.Household), 10),
			pop.Areas[p.Area].Code.String(),
			strconv.FormatUint(uint64(p.Age), 10),
			p.Sex.String(),
			strconv.FormatBool(p.Infected),
		}
	})
}

func householdsCSV(pop *domain.Population) ([]byte, error) {
	return encodeCSV([]string{"id", "area"}, len(pop.Households), func(i int) []string {
		h := pop.Households[i]
		return []string{
			strconv.FormatUint(uint64(h.ID), 10),
			pop.Areas[h.Area].Code.String(),
		}
	})
}

func areasCSV(pop *domain.Population) ([]byte, error) {
	return encodeCSV([]string{"index", "MSOA11CD", "cases"}, len(pop.Areas), func(i int) []string {
		a := pop.Areas[i]
		return []string{
			strconv.Itoa(i),
			a.Code.String(),
			strconv.Itoa(a.InitialCases),
		}
	})
}

func encodeCSV(header []string, n int, row func(i int) []string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for i := range n {
		if err := w.Write(row(i)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func manifestJSON(m Manifest) ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
