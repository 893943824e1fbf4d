package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for errors.Is() checking.
var (
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrMalformedInputRow = errors.New("malformed input row")
	ErrArtifactMissing   = errors.New("artifact missing")
	ErrArtifactCorrupt   = errors.New("artifact corrupt")
	ErrWriteFailure      = errors.New("write failure")
	ErrInvalidRegion     = errors.New("invalid region")
	ErrInvalidAreaCode   = errors.New("invalid area code")
	ErrValidation        = errors.New("validation error")
	ErrRNGConsumed       = errors.New("rng already consumed")
)

// MalformedRowError describes a single table row that could not be parsed.
// Use errors.Is(err, ErrMalformedInputRow) for simple checks, or errors.As to
// reach the line and column.
type MalformedRowError struct {
	Source string
	Line   int
	Column string
	Reason string
}

func (e *MalformedRowError) Error() string {
	var b strings.Builder
	b.WriteString(ErrMalformedInputRow.Error())
	b.WriteString(": ")
	if e.Source != "" {
		b.WriteString(e.Source)
		b.WriteString(":")
	}
	fmt.Fprintf(&b, "%d", e.Line)
	if e.Column != "" {
		fmt.Fprintf(&b, " column %s", e.Column)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	return b.String()
}

func (e *MalformedRowError) Unwrap() error {
	return ErrMalformedInputRow
}

// ArtifactError ties an artifact failure to the path it concerns. Kind is one
// of ErrArtifactMissing, ErrArtifactCorrupt or ErrWriteFailure.
type ArtifactError struct {
	Kind error
	Path string
	Err  error
}

func (e *ArtifactError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Path)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
}

// Unwrap exposes both the classification sentinel and the underlying cause.
func (e *ArtifactError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// ValidationError provides programmatic access to field-level validation failures.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
