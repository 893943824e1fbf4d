// Package config provides configuration loading and validation for the
// pipeline. Configuration is layered: built-in defaults -> base.yaml ->
// {profile}.yaml -> RAMP_ environment variables.
package config

import "time"

// Config holds all configuration for the pipeline.
type Config struct {
	Log       LogConfig       `koanf:"log"`
	Paths     PathsConfig     `koanf:"paths"`
	Input     InputConfig     `koanf:"input"`
	Directory ClientConfig    `koanf:"directory"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Ledger    LedgerConfig    `koanf:"ledger"`
	Model     ModelConfig     `koanf:"model"`
}

// LogConfig holds structured logging settings.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// PathsConfig holds the working directories the pipeline reads and writes.
type PathsConfig struct {
	ModelParameters string `koanf:"model_parameters"`
	ProcessedData   string `koanf:"processed_data"`
}

// InputConfig controls how input tables are interpreted.
type InputConfig struct {
	DuplicatePolicy string `koanf:"duplicate_policy"`
}

// ClientConfig holds settings for the remote area directory client.
type ClientConfig struct {
	BaseURL        string               `koanf:"base_url"`
	APIKey         string               `koanf:"api_key"`
	Timeout        time.Duration        `koanf:"timeout"`
	Retry          RetryConfig          `koanf:"retry"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker"`
	RateLimit      RateLimitConfig      `koanf:"rate_limit"`
}

// RetryConfig holds retry policy settings with exponential backoff.
type RetryConfig struct {
	MaxAttempts     int           `koanf:"max_attempts"`
	InitialInterval time.Duration `koanf:"initial_interval"`
	MaxInterval     time.Duration `koanf:"max_interval"`
	Multiplier      float64       `koanf:"multiplier"`
}

// CircuitBreakerConfig holds circuit breaker settings.
type CircuitBreakerConfig struct {
	MaxFailures   int           `koanf:"max_failures"`
	Timeout       time.Duration `koanf:"timeout"`
	HalfOpenLimit int           `koanf:"half_open_limit"`
}

// RateLimitConfig limits outbound request rate. Zero disables limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	BurstSize         int     `koanf:"burst_size"`
}

// TelemetryConfig holds OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled     bool   `koanf:"enabled"`
	Exporter    string `koanf:"exporter"`
	Endpoint    string `koanf:"endpoint"`
	ServiceName string `koanf:"service_name"`
}

// LedgerConfig controls the SQLite run ledger.
type LedgerConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// ModelConfig holds simulation runner settings.
type ModelConfig struct {
	ParametersFile string `koanf:"parameters_file"`
}
