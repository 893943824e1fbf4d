// Package input resolves a region into the initial conditions the population
// synthesizer starts from. Bundled regions read a CSV table; the national
// region enumerates every area from the remote area directory.
package input

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jsamuelsen11/ramp-pipeline/internal/domain"
	"github.com/jsamuelsen11/ramp-pipeline/internal/platform/logging"
	"github.com/jsamuelsen11/ramp-pipeline/internal/ports"
)

// Compile-time interface check.
var _ ports.InputResolver = (*Resolver)(nil)

// Resolver implements ports.InputResolver.
type Resolver struct {
	dir       string
	policy    domain.DuplicatePolicy
	directory ports.AreaDirectory
}

// NewResolver reads bundled tables from dir (normally "model_parameters").
// directory may be nil, in which case the national region is unavailable.
func NewResolver(dir string, policy domain.DuplicatePolicy, directory ports.AreaDirectory) *Resolver {
	return &Resolver{
		dir:       dir,
		policy:    policy,
		directory: directory,
	}
}

// TablePath returns where the table for region is read from, or ok=false for
// regions without a table.
func (r *Resolver) TablePath(region domain.Region) (path string, ok bool) {
	name, ok := region.Table()
	if !ok {
		return "", false
	}
	return filepath.Join(r.dir, name), true
}

// Resolve returns the initial conditions for region. Failures are not retried.
func (r *Resolver) Resolve(ctx context.Context, region domain.Region) (*domain.InitialConditions, error) {
	logger := logging.FromContext(ctx)
	start := time.Now()

	var (
		ic     *domain.InitialConditions
		source string
		err    error
	)
	switch region {
	case domain.RegionWestYorkshireSmall, domain.RegionWestYorkshireLarge, domain.RegionDevon, domain.RegionTwoCounties:
		source, _ = r.TablePath(region)
		ic, err = r.fromTable(source)
	case domain.RegionNational:
		source = "area-directory"
		ic, err = r.fromDirectory(ctx)
	default:
		panic(fmt.Sprintf("input: unhandled region %q", string(region)))
	}
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "input resolved",
		slog.String("region", region.String()),
		slog.String("source", source),
		slog.Int("areas", ic.Len()),
		slog.Int("total_cases", ic.TotalCases()),
		slog.Duration("elapsed", time.Since(start)),
	)
	return ic, nil
}

func (r *Resolver) fromTable(path string) (*domain.InitialConditions, error) {
	rc, err := openTable(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", domain.ErrSourceUnavailable, path, err)
	}
	defer rc.Close()

	ic := domain.NewInitialConditions(r.policy)
	if err := ParseTable(rc, filepath.Base(path), ic); err != nil {
		return nil, err
	}
	return ic, nil
}

func (r *Resolver) fromDirectory(ctx context.Context) (*domain.InitialConditions, error) {
	if r.directory == nil {
		return nil, fmt.Errorf("%w: no area directory configured", domain.ErrSourceUnavailable)
	}

	codes, err := r.directory.AllAreaCodes(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrSourceUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: enumerate area codes: %w", domain.ErrSourceUnavailable, err)
	}

	ic := domain.NewInitialConditions(r.policy)
	for _, code := range codes {
		if _, seen := ic.Cases(code); seen {
			continue
		}
		if err := ic.Insert(code, domain.DefaultCases); err != nil {
			return nil, fmt.Errorf("%w: area directory returned %s: %w", domain.ErrSourceUnavailable, code, err)
		}
	}
	return ic, nil
}

// openTable opens path, falling back to a gzip-compressed path+".gz".
func openTable(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	gz, gzErr := os.Open(path + ".gz")
	if gzErr != nil {
		// Report the uncompressed path; it is the one users expect.
		return nil, err
	}
	zr, err := gzip.NewReader(gz)
	if err != nil {
		gz.Close()
		return nil, err
	}
	return &gzipTable{Reader: zr, file: gz}, nil
}

type gzipTable struct {
	*gzip.Reader
	file *os.File
}

func (g *gzipTable) Close() error {
	return errors.Join(g.Reader.Close(), g.file.Close())
}
