package app_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/jsamuelsen11/ramp-pipeline/internal/app"
	"github.com/jsamuelsen11/ramp-pipeline/internal/artifact"
	"github.com/jsamuelsen11/ramp-pipeline/internal/domain"
	"github.com/jsamuelsen11/ramp-pipeline/internal/export"
	"github.com/jsamuelsen11/ramp-pipeline/internal/input"
	"github.com/jsamuelsen11/ramp-pipeline/internal/model"
	"github.com/jsamuelsen11/ramp-pipeline/internal/platform/logging"
	"github.com/jsamuelsen11/ramp-pipeline/internal/platform/telemetry"
	"github.com/jsamuelsen11/ramp-pipeline/internal/population"
	"github.com/jsamuelsen11/ramp-pipeline/internal/rng"
	"github.com/jsamuelsen11/ramp-pipeline/mocks"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConditions(t *testing.T) *domain.InitialConditions {
	t.Helper()

	ic := domain.NewInitialConditions(domain.DuplicateError)
	require.NoError(t, ic.Insert(domain.MustAreaCode("E02000001"), 5))
	require.NoError(t, ic.Insert(domain.MustAreaCode("E02000002"), 5))
	return ic
}

func testPopulation(region domain.Region) *domain.Population {
	return &domain.Population{
		Region:     region,
		Areas:      []domain.Area{{Code: domain.MustAreaCode("E02000001"), InitialCases: 1}},
		Households: []domain.Household{{ID: 0, Area: 0}},
		People:     []domain.Person{{ID: 0, Household: 0, Area: 0, Age: 50, Infected: true}},
	}
}

type fixture struct {
	store    *artifact.Store
	resolver *mocks.MockInputResolver
	synth    *mocks.MockSynthesizer
	cache    *mocks.MockCacheWriter
	snapshot *mocks.MockSnapshotWriter
	model    *mocks.MockModelRunner
	ledger   *mocks.MockRunLedger
	pipeline *app.Pipeline
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:    artifact.NewStore(filepath.Join(t.TempDir(), "processed_data")),
		resolver: mocks.NewMockInputResolver(t),
		synth:    mocks.NewMockSynthesizer(t),
		cache:    mocks.NewMockCacheWriter(t),
		snapshot: mocks.NewMockSnapshotWriter(t),
		model:    mocks.NewMockModelRunner(t),
		ledger:   mocks.NewMockRunLedger(t),
	}
	ids := 0
	f.pipeline = app.NewPipeline(app.Stages{
		Resolver:  f.resolver,
		Synth:     f.synth,
		Cache:     f.cache,
		Snapshot:  f.snapshot,
		Model:     f.model,
		Artifacts: f.store,
	}, discardLogger(),
		app.WithLedger(f.ledger),
		app.WithMetrics(telemetry.NewNoopMetrics()),
		app.WithRunIDs(func() string {
			ids++
			return "run-" + strconv.Itoa(ids)
		}),
	)
	return f
}

func TestDispatch_InitWritesPopulation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	ic := testConditions(t)

	f.resolver.EXPECT().Resolve(mock.Anything, domain.RegionDevon).Return(ic, nil)
	f.synth.EXPECT().Synthesize(mock.Anything, ic, mock.AnythingOfType("*rand.Rand")).
		Return(testPopulation(""), nil)
	f.ledger.EXPECT().Record(mock.Anything, mock.MatchedBy(func(r domain.Run) bool {
		return r.ID == "run-1" && r.Status == domain.RunSucceeded && r.Seed == 42 && r.Deterministic &&
			r.Action == domain.ActionInit && r.Region == domain.RegionDevon
	})).Return(nil)

	src := rng.FromSeed(42)
	require.NoError(t, f.pipeline.Dispatch(ctx, domain.ActionInit, domain.RegionDevon, src))

	if !src.Taken() {
		t.Error("init did not take the rng")
	}

	var got domain.Population
	require.NoError(t, f.store.Read(ctx, artifact.PopulationKey(domain.RegionDevon), &got))
	if got.Region != domain.RegionDevon {
		t.Errorf("stored Region = %q, want region set by the dispatcher", got.Region)
	}
}

func TestDispatch_InitResolveFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	resolveErr := &domain.MalformedRowError{Line: 3, Column: "cases", Reason: "not a number"}

	f.resolver.EXPECT().Resolve(mock.Anything, domain.RegionDevon).Return(nil, resolveErr)
	f.ledger.EXPECT().Record(mock.Anything, mock.MatchedBy(func(r domain.Run) bool {
		return r.Status == domain.RunFailed && r.Error != ""
	})).Return(nil)

	src := rng.FromSeed(1)
	err := f.pipeline.Dispatch(context.Background(), domain.ActionInit, domain.RegionDevon, src)
	if !errors.Is(err, domain.ErrMalformedInputRow) {
		t.Fatalf("Dispatch() error = %v, want ErrMalformedInputRow", err)
	}
	if src.Taken() {
		t.Error("rng taken although resolution failed")
	}
	if f.store.Exists(artifact.PopulationKey(domain.RegionDevon)) {
		t.Error("population written after a failed resolve")
	}
}

func TestDispatch_DownstreamWithoutPopulation(t *testing.T) {
	t.Parallel()

	for _, action := range []domain.Action{domain.ActionPythonCache, domain.ActionSnapshot, domain.ActionRunModel} {
		t.Run(action.String(), func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			f.ledger.EXPECT().Record(mock.Anything, mock.Anything).Return(nil)

			src := rng.FromSeed(7)
			err := f.pipeline.Dispatch(context.Background(), action, domain.RegionWestYorkshireSmall, src)
			if !errors.Is(err, domain.ErrArtifactMissing) {
				t.Fatalf("Dispatch(%s) error = %v, want ErrArtifactMissing", action, err)
			}
			if src.Taken() {
				t.Error("rng taken although the prerequisite was missing")
			}

			entries, err := os.ReadDir(f.store.Root())
			if err == nil && len(entries) > 0 {
				t.Errorf("store root has %d entries, want nothing written", len(entries))
			}
		})
	}
}

func TestDispatch_DownstreamStages(t *testing.T) {
	t.Parallel()

	region := domain.RegionTwoCounties
	ctx := context.Background()

	tests := []struct {
		action domain.Action
		expect func(f *fixture)
		check  func(t *testing.T, f *fixture)
	}{
		{
			action: domain.ActionPythonCache,
			expect: func(f *fixture) {
				dir := f.store.Path(artifact.Key{Region: region, Kind: artifact.KindPythonCache})
				f.cache.EXPECT().WritePythonCache(mock.Anything, mock.Anything, dir, mock.Anything).Return(nil)
			},
			check: func(t *testing.T, f *fixture) {
				if !f.store.Exists(artifact.Key{Region: region, Kind: artifact.KindPythonCache}) {
					t.Error("python cache directory was not prepared")
				}
			},
		},
		{
			action: domain.ActionSnapshot,
			expect: func(f *fixture) {
				path := f.store.Path(artifact.Key{Region: region, Kind: artifact.KindSnapshot})
				f.snapshot.EXPECT().WriteSnapshot(mock.Anything, mock.Anything, path, mock.Anything).Return(nil)
			},
		},
		{
			action: domain.ActionRunModel,
			expect: func(f *fixture) {
				outDir := f.store.Path(artifact.Key{Region: region, Kind: artifact.KindModelOutput})
				f.model.EXPECT().Run(mock.Anything, mock.MatchedBy(func(p *domain.Population) bool {
					return p.Region == region && len(p.People) == 1
				}), outDir, mock.Anything).Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.action.String(), func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			require.NoError(t, f.store.Write(ctx, artifact.PopulationKey(region), testPopulation(region)))
			tt.expect(f)
			f.ledger.EXPECT().Record(mock.Anything, mock.MatchedBy(func(r domain.Run) bool {
				return r.Status == domain.RunSucceeded && r.Action == tt.action
			})).Return(nil)

			src := rng.FromSeed(3)
			require.NoError(t, f.pipeline.Dispatch(ctx, tt.action, region, src))
			if !src.Taken() {
				t.Error("stage did not take the rng")
			}
			if tt.check != nil {
				tt.check(t, f)
			}
		})
	}
}

func TestDispatch_PopulationForOtherRegion(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	// A population artifact copied in from another region.
	require.NoError(t, f.store.Write(ctx, artifact.PopulationKey(domain.RegionDevon), testPopulation(domain.RegionNational)))
	f.ledger.EXPECT().Record(mock.Anything, mock.Anything).Return(nil)

	err := f.pipeline.Dispatch(ctx, domain.ActionSnapshot, domain.RegionDevon, rng.FromSeed(1))
	if !errors.Is(err, domain.ErrArtifactCorrupt) {
		t.Fatalf("Dispatch() error = %v, want ErrArtifactCorrupt", err)
	}
}

func TestDispatch_PopulationOutOfRange(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	pop := testPopulation(domain.RegionDevon)
	pop.Areas[0].InitialCases = -3
	require.NoError(t, f.store.Write(ctx, artifact.PopulationKey(domain.RegionDevon), pop))
	f.ledger.EXPECT().Record(mock.Anything, mock.Anything).Return(nil)

	src := rng.FromSeed(1)
	err := f.pipeline.Dispatch(ctx, domain.ActionSnapshot, domain.RegionDevon, src)
	if !errors.Is(err, domain.ErrArtifactCorrupt) {
		t.Fatalf("Dispatch() error = %v, want ErrArtifactCorrupt", err)
	}
	if src.Taken() {
		t.Error("rng taken for an unusable population")
	}
}

func TestDispatch_RNGAlreadyTaken(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Write(ctx, artifact.PopulationKey(domain.RegionDevon), testPopulation(domain.RegionDevon)))
	f.ledger.EXPECT().Record(mock.Anything, mock.Anything).Return(nil)

	src := rng.FromSeed(1)
	_, err := src.Take()
	require.NoError(t, err)

	err = f.pipeline.Dispatch(ctx, domain.ActionSnapshot, domain.RegionDevon, src)
	if !errors.Is(err, domain.ErrRNGConsumed) {
		t.Fatalf("Dispatch() error = %v, want ErrRNGConsumed", err)
	}
}

func TestDispatch_LedgerFailureDoesNotFailStage(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ic := testConditions(t)
	f.resolver.EXPECT().Resolve(mock.Anything, domain.RegionDevon).Return(ic, nil)
	f.synth.EXPECT().Synthesize(mock.Anything, ic, mock.Anything).Return(testPopulation(""), nil)
	f.ledger.EXPECT().Record(mock.Anything, mock.Anything).Return(errors.New("database is locked"))

	if err := f.pipeline.Dispatch(context.Background(), domain.ActionInit, domain.RegionDevon, rng.FromSeed(1)); err != nil {
		t.Fatalf("Dispatch() error = %v, want ledger failure to be ignored", err)
	}
}

func TestDispatch_RejectsInvalidInput(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	if err := f.pipeline.Dispatch(ctx, domain.Action("train"), domain.RegionDevon, rng.FromSeed(1)); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("unknown action error = %v, want ErrValidation", err)
	}
	if err := f.pipeline.Dispatch(ctx, domain.ActionInit, domain.Region("atlantis"), rng.FromSeed(1)); !errors.Is(err, domain.ErrInvalidRegion) {
		t.Errorf("unknown region error = %v, want ErrInvalidRegion", err)
	}
	if err := f.pipeline.Dispatch(ctx, domain.ActionInit, domain.RegionDevon, nil); err == nil {
		t.Error("nil source error = nil, want error")
	}
}

func TestDispatch_LogsRunAttributes(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	store := artifact.NewStore(filepath.Join(t.TempDir(), "processed_data"))
	p := app.NewPipeline(app.Stages{Artifacts: store}, logging.New("info", "json", &buf),
		app.WithRunIDs(func() string { return "run-abc" }),
		app.WithClock(func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }),
	)

	_ = p.Dispatch(context.Background(), domain.ActionSnapshot, domain.RegionDevon, rng.FromSeed(1))

	out := buf.String()
	for _, want := range []string{`"run_id":"run-abc"`, `"region":"devon"`, `"action":"snapshot"`, `"msg":"stage failed"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s: %s", want, out)
		}
	}
}

// realPipeline wires the baseline collaborators around a table directory.
func realPipeline(t *testing.T, tables, root string) *app.Pipeline {
	t.Helper()

	params := model.DefaultParameters()
	params.Microsim.Iterations = 5
	return app.NewPipeline(app.Stages{
		Resolver:  input.NewResolver(tables, domain.DuplicateError, nil),
		Synth:     population.New(population.WithHouseholdsPerArea(3, 6)),
		Cache:     export.NewCacheWriter(),
		Snapshot:  export.NewSnapshotWriter(),
		Model:     model.NewRunner(params),
		Artifacts: artifact.NewStore(root),
	}, discardLogger())
}

func writeTables(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	table := "MSOA11CD,cases\nE02000001,5\nE02000002,\nE02000003,2\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Input_Test_3.csv"), []byte(table), 0o644))
	return dir
}

func TestPipeline_SeededInitIsByteIdentical(t *testing.T) {
	t.Parallel()

	tables := writeTables(t)
	region := domain.RegionWestYorkshireSmall
	ctx := context.Background()

	for _, seed := range []uint64{0, 1, 42, 1 << 63} {
		rootA, rootB := t.TempDir(), t.TempDir()
		require.NoError(t, realPipeline(t, tables, rootA).Dispatch(ctx, domain.ActionInit, region, rng.FromSeed(seed)))
		require.NoError(t, realPipeline(t, tables, rootB).Dispatch(ctx, domain.ActionInit, region, rng.FromSeed(seed)))

		a, err := os.ReadFile(artifact.Path(rootA, artifact.PopulationKey(region)))
		require.NoError(t, err)
		b, err := os.ReadFile(artifact.Path(rootB, artifact.PopulationKey(region)))
		require.NoError(t, err)
		if !bytes.Equal(a, b) {
			t.Errorf("seed %d: population artifacts differ", seed)
		}
	}
}

func TestPipeline_EndToEnd(t *testing.T) {
	t.Parallel()

	tables := writeTables(t)
	root := t.TempDir()
	region := domain.RegionWestYorkshireSmall
	ctx := context.Background()
	p := realPipeline(t, tables, root)

	err := p.Dispatch(ctx, domain.ActionPythonCache, region, rng.FromSeed(9))
	require.ErrorIs(t, err, domain.ErrArtifactMissing)
	if _, statErr := os.Stat(filepath.Join(root, "python_cache_WestYorkshireSmall")); !os.IsNotExist(statErr) {
		t.Fatal("python cache directory created before init")
	}

	require.NoError(t, p.Dispatch(ctx, domain.ActionInit, region, rng.FromSeed(9)))
	require.NoError(t, p.Dispatch(ctx, domain.ActionPythonCache, region, rng.FromSeed(9)))
	require.NoError(t, p.Dispatch(ctx, domain.ActionSnapshot, region, rng.FromSeed(9)))
	require.NoError(t, p.Dispatch(ctx, domain.ActionRunModel, region, rng.FromSeed(9)))

	for _, rel := range []string{
		"WestYorkshireSmall.bin",
		filepath.Join("python_cache_WestYorkshireSmall", export.PeopleFile),
		filepath.Join("python_cache_WestYorkshireSmall", export.ManifestFile),
		"snapshot_WestYorkshireSmall.npz",
		filepath.Join("model_output_WestYorkshireSmall", model.DailyFile),
	} {
		if _, err := os.Stat(filepath.Join(root, rel)); err != nil {
			t.Errorf("missing %s: %v", rel, err)
		}
	}

	var pop domain.Population
	require.NoError(t, artifact.NewStore(root).Read(ctx, artifact.PopulationKey(region), &pop))
	cases := map[string]int{}
	for _, a := range pop.Areas {
		cases[a.Code.String()] = a.InitialCases
	}
	want := map[string]int{"E02000001": 5, "E02000002": domain.DefaultCases, "E02000003": 2}
	for code, n := range want {
		if cases[code] != n {
			t.Errorf("area %s cases = %d, want %d", code, cases[code], n)
		}
	}
}

func TestDispatch_RecordsStageMetrics(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	metrics, err := telemetry.NewMetrics(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	require.NoError(t, err)

	ctx := context.Background()
	ic := testConditions(t)
	resolver := mocks.NewMockInputResolver(t)
	resolver.EXPECT().Resolve(mock.Anything, domain.RegionTwoCounties).Return(ic, nil)
	synth := mocks.NewMockSynthesizer(t)
	synth.EXPECT().Synthesize(mock.Anything, ic, mock.Anything).Return(testPopulation(""), nil)

	pipeline := app.NewPipeline(app.Stages{
		Resolver:  resolver,
		Synth:     synth,
		Artifacts: artifact.NewStore(t.TempDir(), artifact.WithMetrics(metrics)),
	}, discardLogger(), app.WithMetrics(metrics))

	require.NoError(t, pipeline.Dispatch(ctx, domain.ActionInit, domain.RegionTwoCounties, rng.FromSeed(3)))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	seen := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			seen[m.Name] = true
			if m.Name != "ramp.artifact.bytes" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "ramp.artifact.bytes data = %T", m.Data)
			require.Len(t, sum.DataPoints, 1)
			if sum.DataPoints[0].Value <= 0 {
				t.Errorf("artifact bytes = %d, want the stored population size", sum.DataPoints[0].Value)
			}
		}
	}
	for _, name := range []string{"ramp.stage.duration", "ramp.stage.total", "ramp.artifact.bytes"} {
		if !seen[name] {
			t.Errorf("metric %s was not recorded", name)
		}
	}
}
