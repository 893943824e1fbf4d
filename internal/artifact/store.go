package artifact

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel/metric"

	"github.com/jsamuelsen11/ramp-pipeline/internal/domain"
	"github.com/jsamuelsen11/ramp-pipeline/internal/platform/telemetry"
)

// State captures the readiness of an artifact on disk.
type State string

const (
	StateMissing State = "missing"
	StateReady   State = "ready"
	StateInvalid State = "invalid"
)

// CheckResult is returned by Store.Check.
type CheckResult struct {
	Key   Key
	Path  string
	State State
	Err   error
}

// Store reads and writes artifacts under a root directory. It performs no
// locking: two invocations writing the same key race, and the last rename wins.
type Store struct {
	root    string
	metrics *telemetry.Metrics
	logger  *slog.Logger
}

// StoreOption customizes a Store during construction.
type StoreOption func(*Store)

// WithMetrics records artifact sizes on the given instruments.
func WithMetrics(m *telemetry.Metrics) StoreOption {
	return func(s *Store) {
		s.metrics = m
	}
}

// WithLogger overrides the discard logger.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore builds a store rooted at root (normally "processed_data").
func NewStore(root string, opts ...StoreOption) *Store {
	s := &Store{
		root:   root,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the directory artifacts are resolved against.
func (s *Store) Root() string {
	return s.root
}

// Path resolves key under the store root.
func (s *Store) Path(key Key) string {
	return Path(s.root, key)
}

// Write encodes v and stores it at the path for key. The file appears under
// its final name only once fully written.
func (s *Store) Write(ctx context.Context, key Key, v any) error {
	path := s.Path(key)
	if key.Kind.IsDir() {
		return writeFailure(path, fmt.Errorf("%s artifacts are directories; use PrepareDir", key.Kind))
	}

	var payload bytes.Buffer
	if err := gob.NewEncoder(&payload).Encode(v); err != nil {
		return writeFailure(path, fmt.Errorf("encode %T: %w", v, err))
	}
	data := frame(key.Kind, payload.Bytes())

	if err := writeFileAtomic(ctx, path, data); err != nil {
		return writeFailure(path, err)
	}

	s.recordBytes(ctx, key, len(data))
	s.logger.DebugContext(ctx, "artifact written",
		slog.String("artifact", key.String()),
		slog.String("path", path),
		slog.Int("bytes", len(data)),
	)
	return nil
}

// Read decodes the artifact for key into v, which must be a pointer.
func (s *Store) Read(ctx context.Context, key Key, v any) error {
	path := s.Path(key)
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &domain.ArtifactError{Kind: domain.ErrArtifactMissing, Path: path}
		}
		return &domain.ArtifactError{Kind: domain.ErrArtifactCorrupt, Path: path, Err: err}
	}

	payload, err := unframe(data, key.Kind)
	if err != nil {
		return &domain.ArtifactError{Kind: domain.ErrArtifactCorrupt, Path: path, Err: err}
	}
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(v); err != nil {
		return &domain.ArtifactError{Kind: domain.ErrArtifactCorrupt, Path: path, Err: fmt.Errorf("decode %T: %w", v, err)}
	}

	s.logger.DebugContext(ctx, "artifact read",
		slog.String("artifact", key.String()),
		slog.String("path", path),
		slog.Int("bytes", len(data)),
	)
	return nil
}

// PrepareDir creates the output directory for a directory-kind key and
// returns its path.
func (s *Store) PrepareDir(key Key) (string, error) {
	path := s.Path(key)
	if !key.Kind.IsDir() {
		return "", writeFailure(path, fmt.Errorf("%s artifacts are files", key.Kind))
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", writeFailure(path, err)
	}
	return path, nil
}

// PrepareFile creates the parent directory of a file-kind key and returns
// the path the caller should write to.
func (s *Store) PrepareFile(key Key) (string, error) {
	path := s.Path(key)
	if key.Kind.IsDir() {
		return "", writeFailure(path, fmt.Errorf("%s artifacts are directories", key.Kind))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", writeFailure(path, err)
	}
	return path, nil
}

// Exists reports whether anything is present at the path for key.
func (s *Store) Exists(key Key) bool {
	_, err := os.Stat(s.Path(key))
	return err == nil
}

// Check inspects the artifact on disk without decoding its payload.
// Directory kinds are ready when the directory exists.
func (s *Store) Check(key Key) CheckResult {
	path := s.Path(key)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return CheckResult{Key: key, Path: path, State: StateMissing}
		}
		return CheckResult{Key: key, Path: path, State: StateInvalid, Err: err}
	}

	if key.Kind.IsDir() {
		if !info.IsDir() {
			return CheckResult{Key: key, Path: path, State: StateInvalid, Err: errors.New("expected directory")}
		}
		return CheckResult{Key: key, Path: path, State: StateReady}
	}
	if info.IsDir() {
		return CheckResult{Key: key, Path: path, State: StateInvalid, Err: errors.New("expected file got directory")}
	}
	if key.Kind != KindPopulation {
		return CheckResult{Key: key, Path: path, State: StateReady}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return CheckResult{Key: key, Path: path, State: StateInvalid, Err: err}
	}
	if _, err := unframe(data, key.Kind); err != nil {
		return CheckResult{Key: key, Path: path, State: StateInvalid, Err: err}
	}
	return CheckResult{Key: key, Path: path, State: StateReady}
}

func (s *Store) recordBytes(ctx context.Context, key Key, n int) {
	if s.metrics == nil {
		return
	}
	s.metrics.ArtifactBytes.Add(ctx, int64(n), metric.WithAttributes(
		telemetry.AttrArtifactKind.String(key.Kind.String()),
		telemetry.AttrRegion.String(key.Region.String()),
	))
}

func writeFailure(path string, err error) error {
	return &domain.ArtifactError{Kind: domain.ErrWriteFailure, Path: path, Err: err}
}

// WriteFile writes data to path so that the file appears under its final
// name only when complete. Stage outputs that live outside the framed
// envelope use it.
func WriteFile(ctx context.Context, path string, data []byte) error {
	return writeFileAtomic(ctx, path, data)
}

// writeFileAtomic writes data to a temporary file next to path and renames it
// into place. A cancelled context or any failure removes the temporary file.
func writeFileAtomic(ctx context.Context, path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
