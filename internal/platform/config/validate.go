package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/jsamuelsen11/ramp-pipeline/internal/domain"
)

// Validate checks all configuration values and returns aggregated errors.
func (c *Config) Validate() error {
	return errors.Join(
		c.Log.validate(),
		c.Paths.validate(),
		c.Input.validate(),
		c.Directory.validate(),
		c.Telemetry.validate(),
		c.Ledger.validate(),
		c.validateLedgerLocation(),
	)
}

// validateLedgerLocation keeps the ledger out of the artifact root, where a
// failed stage would otherwise leave a file behind.
func (c *Config) validateLedgerLocation() error {
	if !c.Ledger.Enabled || c.Ledger.Path == "" || c.Paths.ProcessedData == "" {
		return nil
	}
	root, err := filepath.Abs(c.Paths.ProcessedData)
	if err != nil {
		return nil
	}
	ledger, err := filepath.Abs(c.Ledger.Path)
	if err != nil {
		return nil
	}
	rel, err := filepath.Rel(root, ledger)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil
	}
	return fmt.Errorf("ledger.path %q must not be inside paths.processed_data %q", c.Ledger.Path, c.Paths.ProcessedData)
}

func (l *LogConfig) validate() error {
	var errs []error

	switch l.Level {
	case "debug", "info", "warn", "error":
		// Valid levels.
	default:
		errs = append(errs, fmt.Errorf("log.level must be one of: debug, info, warn, error; got %q", l.Level))
	}

	switch l.Format {
	case "json", "text":
		// Valid formats.
	default:
		errs = append(errs, fmt.Errorf("log.format must be one of: json, text; got %q", l.Format))
	}

	return errors.Join(errs...)
}

func (p *PathsConfig) validate() error {
	var errs []error

	if p.ModelParameters == "" {
		errs = append(errs, errors.New("paths.model_parameters must not be empty"))
	}
	if p.ProcessedData == "" {
		errs = append(errs, errors.New("paths.processed_data must not be empty"))
	}

	return errors.Join(errs...)
}

func (in *InputConfig) validate() error {
	if !domain.DuplicatePolicy(in.DuplicatePolicy).IsValid() {
		return fmt.Errorf("input.duplicate_policy must be one of: error, overwrite, sum; got %q", in.DuplicatePolicy)
	}
	return nil
}

func (cl *ClientConfig) validate() error {
	var errs []error

	if cl.BaseURL == "" {
		errs = append(errs, errors.New("directory.base_url must not be empty"))
	} else if u, err := url.Parse(cl.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("directory.base_url must be an absolute URL, got %q", cl.BaseURL))
	}
	if cl.Timeout <= 0 {
		errs = append(errs, errors.New("directory.timeout must be positive"))
	}
	if cl.Retry.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("directory.retry.max_attempts must be >= 1, got %d", cl.Retry.MaxAttempts))
	}
	if cl.Retry.Multiplier <= 0 {
		errs = append(errs, fmt.Errorf("directory.retry.multiplier must be positive, got %f", cl.Retry.Multiplier))
	}
	if cl.CircuitBreaker.MaxFailures < 1 {
		errs = append(errs, fmt.Errorf("directory.circuit_breaker.max_failures must be >= 1, got %d",
			cl.CircuitBreaker.MaxFailures))
	}
	if cl.RateLimit.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("directory.rate_limit.requests_per_second must not be negative, got %f",
			cl.RateLimit.RequestsPerSecond))
	}
	if cl.RateLimit.RequestsPerSecond > 0 && cl.RateLimit.BurstSize < 1 {
		errs = append(errs, fmt.Errorf("directory.rate_limit.burst_size must be >= 1 when rate limiting, got %d",
			cl.RateLimit.BurstSize))
	}

	return errors.Join(errs...)
}

func (t *TelemetryConfig) validate() error {
	if !t.Enabled {
		return nil
	}

	var errs []error

	switch t.Exporter {
	case "stdout", "otlp":
		// Valid exporters.
	default:
		errs = append(errs, fmt.Errorf("telemetry.exporter must be one of: stdout, otlp; got %q", t.Exporter))
	}

	if t.Exporter == "otlp" && t.Endpoint == "" {
		errs = append(errs, errors.New("telemetry.endpoint must not be empty when exporter is otlp"))
	}
	if t.ServiceName == "" {
		errs = append(errs, errors.New("telemetry.service_name must not be empty"))
	}

	return errors.Join(errs...)
}

func (l *LedgerConfig) validate() error {
	if l.Enabled && l.Path == "" {
		return errors.New("ledger.path must not be empty when the ledger is enabled")
	}
	return nil
}
