// Package app provides the stage dispatcher that runs one pipeline action per
// invocation by coordinating the input resolver, the artifact store and the
// stage collaborators through port interfaces.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen11/ramp-pipeline/internal/artifact"
	"github.com/jsamuelsen11/ramp-pipeline/internal/domain"
	"github.com/jsamuelsen11/ramp-pipeline/internal/platform/httpclient"
	"github.com/jsamuelsen11/ramp-pipeline/internal/platform/logging"
	"github.com/jsamuelsen11/ramp-pipeline/internal/platform/telemetry"
	"github.com/jsamuelsen11/ramp-pipeline/internal/ports"
	"github.com/jsamuelsen11/ramp-pipeline/internal/rng"
)

const tracerName = "github.com/jsamuelsen11/ramp-pipeline/internal/app"

// Stages groups the collaborators each action delegates to.
type Stages struct {
	Resolver  ports.InputResolver
	Synth     ports.Synthesizer
	Cache     ports.CacheWriter
	Snapshot  ports.SnapshotWriter
	Model     ports.ModelRunner
	Artifacts ports.ArtifactStore
}

// Pipeline dispatches a single action for a single region.
type Pipeline struct {
	stages  Stages
	ledger  ports.RunLedger
	metrics *telemetry.Metrics
	tracer  trace.Tracer
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithLedger records every dispatched run in l.
func WithLedger(l ports.RunLedger) Option {
	return func(p *Pipeline) {
		p.ledger = l
	}
}

// WithMetrics records stage duration and outcome on m.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// WithClock overrides time.Now for run timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// WithRunIDs overrides the run ID generator.
func WithRunIDs(gen func() string) Option {
	return func(p *Pipeline) {
		p.newID = gen
	}
}

// NewPipeline creates a Pipeline. Spans go to the global tracer provider.
func NewPipeline(stages Stages, logger *slog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		stages: stages,
		tracer: otel.Tracer(tracerName),
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Dispatch runs action for region. The stage takes the generator from src
// exactly once. A missing or corrupt population artifact stops downstream
// stages before anything is written.
func (p *Pipeline) Dispatch(ctx context.Context, action domain.Action, region domain.Region, src *rng.Source) error {
	if !action.IsValid() {
		return fmt.Errorf("%w: unknown action %q", domain.ErrValidation, action)
	}
	if !region.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidRegion, region)
	}
	if src == nil {
		return errors.New("pipeline: nil rng source")
	}

	runID := p.newID()
	ctx = logging.WithLogger(ctx, p.logger)
	ctx = logging.WithAttrs(ctx,
		slog.String("run_id", runID),
		slog.String("region", region.String()),
		slog.String("action", action.String()),
	)
	ctx = httpclient.WithRunID(ctx, runID)
	logger := logging.FromContext(ctx)

	ctx, span := p.tracer.Start(ctx, "pipeline."+action.String(),
		trace.WithAttributes(
			telemetry.AttrRegion.String(region.String()),
			telemetry.AttrAction.String(action.String()),
		),
	)
	defer span.End()

	started := p.now()
	logger.InfoContext(ctx, "stage started",
		slog.Uint64("seed", src.Seed()),
		slog.Bool("deterministic", src.Deterministic()),
	)

	err := p.dispatch(ctx, action, region, src)

	finished := p.now()
	p.recordMetrics(ctx, action, region, finished.Sub(started), err)

	run := domain.Run{
		ID:            runID,
		Region:        region,
		Action:        action,
		Seed:          src.Seed(),
		Deterministic: src.Deterministic(),
		Status:        domain.RunSucceeded,
		StartedAt:     started,
		FinishedAt:    finished,
	}
	if err != nil {
		run.Status = domain.RunFailed
		run.Error = err.Error()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.ErrorContext(ctx, "stage failed",
			slog.String("operation", "Dispatch"),
			slog.Duration("duration", run.Duration()),
			slog.Any("error", err),
		)
	} else {
		logger.InfoContext(ctx, "stage finished", slog.Duration("duration", run.Duration()))
	}
	p.recordRun(ctx, run)

	return err
}

func (p *Pipeline) dispatch(ctx context.Context, action domain.Action, region domain.Region, src *rng.Source) error {
	switch action {
	case domain.ActionInit:
		return p.runInit(ctx, region, src)
	case domain.ActionPythonCache:
		return p.runPythonCache(ctx, region, src)
	case domain.ActionSnapshot:
		return p.runSnapshot(ctx, region, src)
	case domain.ActionRunModel:
		return p.runModel(ctx, region, src)
	default:
		panic(fmt.Sprintf("app: unhandled action %q", string(action)))
	}
}

func (p *Pipeline) runInit(ctx context.Context, region domain.Region, src *rng.Source) error {
	ic, err := p.stages.Resolver.Resolve(ctx, region)
	if err != nil {
		return err
	}

	r, err := src.Take()
	if err != nil {
		return err
	}
	pop, err := p.stages.Synth.Synthesize(ctx, ic, r)
	if err != nil {
		return fmt.Errorf("synthesize population: %w", err)
	}
	pop.Region = region
	if err := pop.Validate(); err != nil {
		return fmt.Errorf("synthesized population: %w", err)
	}

	key := artifact.PopulationKey(region)
	if err := p.stages.Artifacts.Write(ctx, key, pop); err != nil {
		return err
	}
	logging.FromContext(ctx).InfoContext(ctx, "population stored",
		slog.String("path", p.stages.Artifacts.Path(key)),
		slog.Int("areas", len(pop.Areas)),
		slog.Int("people", len(pop.People)),
	)
	return nil
}

func (p *Pipeline) runPythonCache(ctx context.Context, region domain.Region, src *rng.Source) error {
	pop, r, err := p.prepare(ctx, region, src)
	if err != nil {
		return err
	}
	dir, err := p.stages.Artifacts.PrepareDir(artifact.Key{Region: region, Kind: artifact.KindPythonCache})
	if err != nil {
		return err
	}
	return p.stages.Cache.WritePythonCache(ctx, pop, dir, r)
}

func (p *Pipeline) runSnapshot(ctx context.Context, region domain.Region, src *rng.Source) error {
	pop, r, err := p.prepare(ctx, region, src)
	if err != nil {
		return err
	}
	key := artifact.Key{Region: region, Kind: artifact.KindSnapshot}
	path, err := p.stages.Artifacts.PrepareFile(key)
	if err != nil {
		return err
	}
	if err := p.stages.Snapshot.WriteSnapshot(ctx, pop, path, r); err != nil {
		return err
	}
	p.recordArtifactBytes(ctx, key)
	return nil
}

func (p *Pipeline) runModel(ctx context.Context, region domain.Region, src *rng.Source) error {
	pop, r, err := p.prepare(ctx, region, src)
	if err != nil {
		return err
	}
	outDir := p.stages.Artifacts.Path(artifact.Key{Region: region, Kind: artifact.KindModelOutput})
	return p.stages.Model.Run(ctx, pop, outDir, r)
}

// prepare loads the population for a downstream stage and then takes the
// generator. Nothing is taken or written when the artifact is unusable.
func (p *Pipeline) prepare(ctx context.Context, region domain.Region, src *rng.Source) (*domain.Population, *rand.Rand, error) {
	key := artifact.PopulationKey(region)

	var pop domain.Population
	if err := p.stages.Artifacts.Read(ctx, key, &pop); err != nil {
		return nil, nil, err
	}
	if pop.Region != region {
		return nil, nil, &domain.ArtifactError{
			Kind: domain.ErrArtifactCorrupt,
			Path: p.stages.Artifacts.Path(key),
			Err:  fmt.Errorf("population is for region %q", pop.Region),
		}
	}
	if err := pop.Validate(); err != nil {
		return nil, nil, &domain.ArtifactError{Kind: domain.ErrArtifactCorrupt, Path: p.stages.Artifacts.Path(key), Err: err}
	}

	r, err := src.Take()
	if err != nil {
		return nil, nil, err
	}
	return &pop, r, nil
}

func (p *Pipeline) recordMetrics(ctx context.Context, action domain.Action, region domain.Region, d time.Duration, err error) {
	if p.metrics == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	attrs := metric.WithAttributes(
		telemetry.AttrAction.String(action.String()),
		telemetry.AttrRegion.String(region.String()),
		telemetry.AttrResult.String(result),
	)
	p.metrics.StageDuration.Record(ctx, d.Seconds(), attrs)
	p.metrics.StageTotal.Add(ctx, 1, attrs)
}

// recordArtifactBytes counts files written by a collaborator rather than by
// the store, which records its own writes.
func (p *Pipeline) recordArtifactBytes(ctx context.Context, key artifact.Key) {
	if p.metrics == nil {
		return
	}
	info, err := os.Stat(p.stages.Artifacts.Path(key))
	if err != nil {
		return
	}
	p.metrics.ArtifactBytes.Add(ctx, info.Size(), metric.WithAttributes(
		telemetry.AttrArtifactKind.String(key.Kind.String()),
		telemetry.AttrRegion.String(key.Region.String()),
	))
}

// recordRun appends run to the ledger. Ledger failures are logged and never
// change the outcome of the stage.
func (p *Pipeline) recordRun(ctx context.Context, run domain.Run) {
	if p.ledger == nil {
		return
	}
	if err := p.ledger.Record(context.WithoutCancel(ctx), run); err != nil {
		logging.FromContext(ctx).WarnContext(ctx, "failed to record run",
			slog.String("operation", "recordRun"),
			slog.Any("error", err),
		)
	}
}
