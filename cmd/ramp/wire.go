package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/samber/do/v2"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/jsamuelsen11/ramp-pipeline/internal/adapters/clients/directory"
	"github.com/jsamuelsen11/ramp-pipeline/internal/adapters/ledger"
	"github.com/jsamuelsen11/ramp-pipeline/internal/app"
	"github.com/jsamuelsen11/ramp-pipeline/internal/artifact"
	"github.com/jsamuelsen11/ramp-pipeline/internal/domain"
	"github.com/jsamuelsen11/ramp-pipeline/internal/export"
	"github.com/jsamuelsen11/ramp-pipeline/internal/input"
	"github.com/jsamuelsen11/ramp-pipeline/internal/model"
	"github.com/jsamuelsen11/ramp-pipeline/internal/platform/config"
	"github.com/jsamuelsen11/ramp-pipeline/internal/platform/health"
	"github.com/jsamuelsen11/ramp-pipeline/internal/platform/httpclient"
	"github.com/jsamuelsen11/ramp-pipeline/internal/platform/logging"
	"github.com/jsamuelsen11/ramp-pipeline/internal/platform/telemetry"
	"github.com/jsamuelsen11/ramp-pipeline/internal/population"
	"github.com/jsamuelsen11/ramp-pipeline/internal/ports"
)

const (
	otelShutdownTimeout = 5 * time.Second
	healthCheckTimeout  = 10 * time.Second
)

// environment holds everything one invocation needs. Providers are lazy, so a
// command only opens the resources it uses.
type environment struct {
	ctx      context.Context
	cfg      *config.Config
	logger   *slog.Logger
	injector *do.RootScope
	otel     *otelProviders
	closers  []func() error
}

func bootstrap(ctx context.Context, flags *globalFlags, stderr io.Writer) (*environment, error) {
	cfg, err := config.Load(config.ResolveProfile(flags.profile), config.WithConfigDir(flags.configDir))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if flags.parametersFile != "" {
		cfg.Model.ParametersFile = flags.parametersFile
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format, stderr)

	otel, err := initTelemetry(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing telemetry: %w", err)
	}

	injector := do.New()
	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, logger)
	do.ProvideValue(injector, otel.metrics)

	env := &environment{
		ctx:      ctx,
		cfg:      cfg,
		logger:   logger,
		injector: injector,
		otel:     otel,
	}
	env.registerDependencies()
	return env, nil
}

// close releases opened resources in reverse order and flushes telemetry.
func (e *environment) close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			e.logger.Error("close error", slog.Any("error", err))
		}
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(e.ctx), otelShutdownTimeout)
	defer cancel()
	if err := e.otel.Shutdown(ctx); err != nil {
		e.logger.Error("telemetry shutdown error", slog.Any("error", err))
	}
}

// otelProviders bundles OpenTelemetry provider lifecycle. Providers are nil
// when telemetry is disabled; metrics are then no-op instruments.
type otelProviders struct {
	tracer  *sdktrace.TracerProvider
	meter   *sdkmetric.MeterProvider
	metrics *telemetry.Metrics
}

// Shutdown flushes both providers. Nil-safe.
func (o *otelProviders) Shutdown(ctx context.Context) error {
	var errs []error
	if o.tracer != nil {
		if err := o.tracer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
	}
	if o.meter != nil {
		if err := o.meter.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}

func initTelemetry(ctx context.Context, cfg *config.Config) (*otelProviders, error) {
	if !cfg.Telemetry.Enabled {
		return &otelProviders{metrics: telemetry.NewNoopMetrics()}, nil
	}

	tp, err := telemetry.InitTracer(ctx,
		cfg.Telemetry.ServiceName,
		cfg.Telemetry.Exporter,
		cfg.Telemetry.Endpoint,
	)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	mp, err := telemetry.InitMeter(ctx,
		cfg.Telemetry.ServiceName,
		cfg.Telemetry.Exporter,
		cfg.Telemetry.Endpoint,
	)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, fmt.Errorf("init meter: %w", err)
	}

	metrics, err := telemetry.NewMetrics(mp)
	if err != nil {
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
		return nil, fmt.Errorf("creating metrics: %w", err)
	}

	return &otelProviders{
		tracer:  tp,
		meter:   mp,
		metrics: metrics,
	}, nil
}

func (e *environment) registerDependencies() {
	cfg, logger := e.cfg, e.logger

	do.Provide(e.injector, func(i do.Injector) (*httpclient.Client, error) {
		metrics := do.MustInvoke[*telemetry.Metrics](i)
		return httpclient.New(&cfg.Directory, directory.ServiceName, metrics, logger), nil
	})

	do.Provide(e.injector, func(i do.Injector) (*directory.Client, error) {
		client := do.MustInvoke[*httpclient.Client](i)
		return directory.NewClient(client, logger), nil
	})

	do.Provide(e.injector, func(i do.Injector) (*input.Resolver, error) {
		dir := do.MustInvoke[*directory.Client](i)
		return input.NewResolver(cfg.Paths.ModelParameters, domain.DuplicatePolicy(cfg.Input.DuplicatePolicy), dir), nil
	})

	do.Provide(e.injector, func(i do.Injector) (*artifact.Store, error) {
		metrics := do.MustInvoke[*telemetry.Metrics](i)
		return artifact.NewStore(cfg.Paths.ProcessedData,
			artifact.WithMetrics(metrics),
			artifact.WithLogger(logger),
		), nil
	})

	do.Provide(e.injector, func(_ do.Injector) (*ledger.Store, error) {
		if !cfg.Ledger.Enabled {
			return nil, errors.New("ledger is disabled")
		}
		store, err := ledger.Open(e.ctx, cfg.Ledger.Path)
		if err != nil {
			return nil, err
		}
		e.closers = append(e.closers, store.Close)
		return store, nil
	})

	do.Provide(e.injector, func(i do.Injector) (*app.Pipeline, error) {
		stages := app.Stages{
			Resolver:  do.MustInvoke[*input.Resolver](i),
			Synth:     population.New(),
			Cache:     export.NewCacheWriter(),
			Snapshot:  export.NewSnapshotWriter(),
			Model:     model.NewFileRunner(cfg.Model.ParametersFile),
			Artifacts: do.MustInvoke[*artifact.Store](i),
		}
		opts := []app.Option{app.WithMetrics(do.MustInvoke[*telemetry.Metrics](i))}

		if cfg.Ledger.Enabled {
			l, err := do.Invoke[*ledger.Store](i)
			if err != nil {
				logger.Warn("run ledger unavailable; continuing without it",
					slog.String("path", cfg.Ledger.Path),
					slog.Any("error", err),
				)
			} else {
				opts = append(opts, app.WithLedger(l))
			}
		}
		return app.NewPipeline(stages, logger, opts...), nil
	})

	do.Provide(e.injector, func(i do.Injector) (*health.Registry, error) {
		registry := health.New(health.WithTimeout(healthCheckTimeout))
		registry.Register(do.MustInvoke[*directory.Client](i))
		for _, c := range input.NewTableChecks(do.MustInvoke[*input.Resolver](i)) {
			registry.Register(c)
		}
		if cfg.Ledger.Enabled {
			l, err := do.Invoke[*ledger.Store](i)
			if err != nil {
				registry.Register(failedCheck{name: ledger.Name, err: err})
			} else {
				registry.Register(l)
			}
		}
		return registry, nil
	})
}

// failedCheck reports a component that could not even be constructed.
type failedCheck struct {
	name string
	err  error
}

var _ ports.HealthChecker = failedCheck{}

func (f failedCheck) Name() string                        { return f.name }
func (f failedCheck) HealthCheck(_ context.Context) error { return f.err }
