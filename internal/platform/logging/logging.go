// Package logging builds the pipeline's slog logger and carries it through
// contexts, so code deep inside a stage logs with the run's identity without
// being handed a logger.
//
//	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
//	ctx = logging.WithLogger(ctx, logger)
//	ctx = logging.WithAttrs(ctx, slog.String("run_id", id), slog.String("region", "wales"))
//	logging.FromContext(ctx).InfoContext(ctx, "population stored")
//
// Run attributes are attached once by the stage dispatcher. Failures then
// only add the operation and the error chain:
//
//	logger.ErrorContext(ctx, "stage failed",
//	    slog.String("operation", "Pipeline.Dispatch"),
//	    slog.Any("error", err),
//	)
//
// Every handler built by New masks credentials (see redact_handler.go).
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

type contextKey struct{}

// New returns a logger writing to w at the given level. format "text" selects
// logfmt-style output and anything else JSON. Debug and finer levels also
// record the source location.
func New(level, format string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level:       lvl,
		AddSource:   lvl <= slog.LevelDebug,
		ReplaceAttr: newRedactAttr(),
	}

	if strings.EqualFold(format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// ParseLevel reads a level name in any case, optionally offset as in
// "warn+2". Unknown input yields info.
func ParseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// WithLogger stores logger in ctx.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// WithAttrs derives the context's logger with attrs added to every record.
func WithAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	if len(attrs) == 0 {
		return ctx
	}
	h := FromContext(ctx).Handler().WithAttrs(attrs)
	return WithLogger(ctx, slog.New(h))
}

// FromContext returns the logger stored in ctx, or slog.Default.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(contextKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}
