// Package ledger is the SQLite-backed run ledger. Every stage invocation is
// appended as one row so past runs, and the seeds they used, can be listed
// and reproduced.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jsamuelsen11/ramp-pipeline/internal/domain"
	"github.com/jsamuelsen11/ramp-pipeline/internal/ports"
)

// Name identifies the ledger in health reports.
const Name = "ledger"

const defaultListLimit = 50

// Compile-time interface checks.
var (
	_ ports.RunLedger     = (*Store)(nil)
	_ ports.HealthChecker = (*Store)(nil)
)

// Store implements ports.RunLedger.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the ledger database at path and applies
// migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("ledger: path is required")
	}
	clean := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(clean), 0o755); err != nil {
		return nil, fmt.Errorf("ledger: create directory: %w", err)
	}

	dsn := clean + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("ledger: open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ledger: ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ledger: run migrations: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record appends run. ID, Region and Action are required.
func (s *Store) Record(ctx context.Context, run domain.Run) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(run.ID) == "" {
		return fmt.Errorf("%w: run id is required", domain.ErrValidation)
	}
	if !run.Region.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidRegion, run.Region)
	}
	if !run.Action.IsValid() {
		return fmt.Errorf("%w: unknown action %q", domain.ErrValidation, run.Action)
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now().UTC()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = run.FinishedAt
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO runs (
	id,
	region,
	action,
	seed,
	deterministic,
	status,
	error,
	started_at,
	finished_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		run.ID,
		run.Region.String(),
		run.Action.String(),
		int64(run.Seed),
		run.Deterministic,
		string(run.Status),
		run.Error,
		run.StartedAt.UTC().UnixMilli(),
		run.FinishedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("ledger: record run %s: %w", run.ID, err)
	}
	return nil
}

// List returns runs newest first, optionally restricted to one region.
func (s *Store) List(ctx context.Context, filter domain.RunFilter) ([]domain.Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := `
SELECT id, region, action, seed, deterministic, status, error, started_at, finished_at
FROM runs`
	args := []any{}
	if filter.Region != "" {
		query += "\nWHERE region = ?"
		args = append(args, filter.Region.String())
	}
	query += "\nORDER BY started_at DESC, id DESC\nLIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ledger: list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]domain.Run, 0, limit)
	for rows.Next() {
		var (
			run               domain.Run
			region, action    string
			status            string
			seed              int64
			started, finished int64
		)
		if err := rows.Scan(
			&run.ID,
			&region,
			&action,
			&seed,
			&run.Deterministic,
			&status,
			&run.Error,
			&started,
			&finished,
		); err != nil {
			return nil, fmt.Errorf("ledger: scan run: %w", err)
		}
		run.Region = domain.Region(region)
		run.Action = domain.Action(action)
		run.Status = domain.RunStatus(status)
		run.Seed = uint64(seed)
		run.StartedAt = time.UnixMilli(started).UTC()
		run.FinishedAt = time.UnixMilli(finished).UTC()
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ledger: iterate runs: %w", err)
	}
	return runs, nil
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string {
	return Name
}

// HealthCheck pings the database.
func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ledger: %w", err)
	}
	return nil
}
