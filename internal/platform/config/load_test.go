package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jsamuelsen11/ramp-pipeline/internal/platform/config"
)

func TestLoad_LocalProfile(t *testing.T) {
	t.Chdir("../../..")

	cfg, err := config.Load("local")
	if err != nil {
		t.Fatalf("Load(\"local\") error: %v", err)
	}

	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want \"debug\"", cfg.Log.Level)
	}
	if cfg.Log.Format != "text" {
		t.Errorf("Log.Format = %q, want \"text\"", cfg.Log.Format)
	}
	if cfg.Telemetry.Enabled {
		t.Error("Telemetry.Enabled = true, want false for local")
	}
	if cfg.Input.DuplicatePolicy != "error" {
		t.Errorf("Input.DuplicatePolicy = %q, want \"error\"", cfg.Input.DuplicatePolicy)
	}
}

func TestLoad_ProdProfile(t *testing.T) {
	t.Chdir("../../..")

	cfg, err := config.Load("prod")
	if err != nil {
		t.Fatalf("Load(\"prod\") error: %v", err)
	}

	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want \"json\"", cfg.Log.Format)
	}
	if !cfg.Telemetry.Enabled {
		t.Error("Telemetry.Enabled = false, want true for prod")
	}
	if cfg.Telemetry.Exporter != "otlp" {
		t.Errorf("Telemetry.Exporter = %q, want \"otlp\"", cfg.Telemetry.Exporter)
	}
	if cfg.Directory.Retry.MaxAttempts != 3 {
		t.Errorf("Directory.Retry.MaxAttempts = %d, want 3", cfg.Directory.Retry.MaxAttempts)
	}
	if cfg.Directory.RateLimit.RequestsPerSecond != 10 {
		t.Errorf("Directory.RateLimit.RequestsPerSecond = %v, want 10", cfg.Directory.RateLimit.RequestsPerSecond)
	}
}

func TestLoad_BaseConfigInheritance(t *testing.T) {
	t.Chdir("../../..")

	cfg, err := config.Load("local")
	if err != nil {
		t.Fatalf("Load(\"local\") error: %v", err)
	}

	// These come from base.yaml, not overridden by local.yaml.
	if cfg.Paths.ProcessedData != "processed_data" {
		t.Errorf("Paths.ProcessedData = %q, want \"processed_data\" (from base)", cfg.Paths.ProcessedData)
	}
	if cfg.Directory.Retry.MaxAttempts != 1 {
		t.Errorf("Directory.Retry.MaxAttempts = %d, want 1 (from base)", cfg.Directory.Retry.MaxAttempts)
	}
	if cfg.Directory.CircuitBreaker.MaxFailures != 5 {
		t.Errorf("Directory.CircuitBreaker.MaxFailures = %d, want 5 (from base)",
			cfg.Directory.CircuitBreaker.MaxFailures)
	}
}

func TestLoad_DefaultsWithoutBaseFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "ci.yaml"), []byte("log:\n  level: warn\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load("ci", config.WithConfigDir(dir))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want \"warn\" (from profile)", cfg.Log.Level)
	}
	if cfg.Paths.ModelParameters != "model_parameters" {
		t.Errorf("Paths.ModelParameters = %q, want default", cfg.Paths.ModelParameters)
	}
	if cfg.Directory.Timeout != 30*time.Second {
		t.Errorf("Directory.Timeout = %v, want 30s default", cfg.Directory.Timeout)
	}
	if !cfg.Ledger.Enabled {
		t.Error("Ledger.Enabled = false, want true by default")
	}
	if cfg.Ledger.Path != ".ramp/ledger.db" {
		t.Errorf("Ledger.Path = %q, want \".ramp/ledger.db\" outside the artifact root", cfg.Ledger.Path)
	}
}

func TestLoad_EnvOverrideSimpleKey(t *testing.T) {
	t.Chdir("../../..")
	t.Setenv("RAMP_LOG_LEVEL", "error")

	cfg, err := config.Load("local")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Log.Level != "error" {
		t.Errorf("Log.Level = %q, want \"error\" (env override)", cfg.Log.Level)
	}
}

func TestLoad_EnvOverrideSnakeCaseKey(t *testing.T) {
	t.Chdir("../../..")
	t.Setenv("RAMP_DIRECTORY_BASE_URL", "http://areas.test:9000")
	t.Setenv("RAMP_INPUT_DUPLICATE_POLICY", "sum")

	cfg, err := config.Load("local")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Directory.BaseURL != "http://areas.test:9000" {
		t.Errorf("Directory.BaseURL = %q (env override)", cfg.Directory.BaseURL)
	}
	if cfg.Input.DuplicatePolicy != "sum" {
		t.Errorf("Input.DuplicatePolicy = %q, want \"sum\" (env override)", cfg.Input.DuplicatePolicy)
	}
}

func TestLoad_EnvOverrideDeeplyNestedKey(t *testing.T) {
	t.Chdir("../../..")
	t.Setenv("RAMP_DIRECTORY_RETRY_MAX_ATTEMPTS", "7")

	cfg, err := config.Load("local")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Directory.Retry.MaxAttempts != 7 {
		t.Errorf("Directory.Retry.MaxAttempts = %d, want 7 (env override)", cfg.Directory.Retry.MaxAttempts)
	}
}

func TestLoad_MissingProfile(t *testing.T) {
	t.Chdir("../../..")

	_, err := config.Load("nonexistent")
	if err == nil {
		t.Fatal("Load(\"nonexistent\") returned nil error, want error")
	}
}

func TestLoad_UnsafeProfile(t *testing.T) {
	t.Parallel()

	for _, profile := range []string{"", "  ", "../etc", "a/b", `a\b`} {
		if _, err := config.Load(profile); err == nil {
			t.Errorf("Load(%q) returned nil error, want error", profile)
		}
	}
}

func TestResolveProfile(t *testing.T) {
	t.Setenv(config.ProfileEnv, "prod")

	if got := config.ResolveProfile("ci"); got != "ci" {
		t.Errorf("ResolveProfile(\"ci\") = %q, want explicit value", got)
	}
	if got := config.ResolveProfile(""); got != "prod" {
		t.Errorf("ResolveProfile(\"\") = %q, want \"prod\" from env", got)
	}

	t.Setenv(config.ProfileEnv, "")
	if got := config.ResolveProfile(""); got != config.DefaultProfile {
		t.Errorf("ResolveProfile(\"\") = %q, want %q", got, config.DefaultProfile)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	t.Parallel()

	cfg := validBaseConfig()
	cfg.Log.Level = "verbose"

	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() returned nil, want error for invalid log level")
	}
}

func TestValidate_InvalidDuplicatePolicy(t *testing.T) {
	t.Parallel()

	cfg := validBaseConfig()
	cfg.Input.DuplicatePolicy = "first"

	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() returned nil, want error for unknown duplicate policy")
	}
}

func TestValidate_RelativeDirectoryURL(t *testing.T) {
	t.Parallel()

	cfg := validBaseConfig()
	cfg.Directory.BaseURL = "areas.local"

	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() returned nil, want error for relative base_url")
	}
}

func TestValidate_RateLimitWithoutBurst(t *testing.T) {
	t.Parallel()

	cfg := validBaseConfig()
	cfg.Directory.RateLimit.RequestsPerSecond = 5

	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() returned nil, want error for rate limit with zero burst")
	}
}

func TestValidate_OtlpWithoutEndpoint(t *testing.T) {
	t.Parallel()

	cfg := validBaseConfig()
	cfg.Telemetry.Enabled = true
	cfg.Telemetry.Exporter = "otlp"
	cfg.Telemetry.Endpoint = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() returned nil, want error for otlp without endpoint")
	}
}

func TestValidate_LedgerWithoutPath(t *testing.T) {
	t.Parallel()

	cfg := validBaseConfig()
	cfg.Ledger.Path = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() returned nil, want error for enabled ledger without path")
	}

	cfg.Ledger.Enabled = false
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() with disabled ledger error = %v", err)
	}
}

func TestValidate_LedgerInsideProcessedData(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"directly inside", "processed_data/ledger.db", true},
		{"nested inside", "processed_data/state/ledger.db", true},
		{"dot-dot back inside", "other/../processed_data/ledger.db", true},
		{"default location", ".ramp/ledger.db", false},
		{"sibling with shared prefix", "processed_data_state/ledger.db", false},
		{"parent directory", "../ledger.db", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validBaseConfig()
			cfg.Ledger.Path = tt.path
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() with ledger.path %q error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	t.Parallel()

	cfg := validBaseConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned error for valid config: %v", err)
	}
}

// validBaseConfig returns a Config with all fields set to valid values.
func validBaseConfig() *config.Config {
	return &config.Config{
		Log: config.LogConfig{
			Level:  "info",
			Format: "json",
		},
		Paths: config.PathsConfig{
			ModelParameters: "model_parameters",
			ProcessedData:   "processed_data",
		},
		Input: config.InputConfig{
			DuplicatePolicy: "error",
		},
		Directory: config.ClientConfig{
			BaseURL: "http://localhost:8081",
			Timeout: 30 * time.Second,
			Retry: config.RetryConfig{
				MaxAttempts:     1,
				InitialInterval: 100 * time.Millisecond,
				MaxInterval:     10 * time.Second,
				Multiplier:      2.0,
			},
			CircuitBreaker: config.CircuitBreakerConfig{
				MaxFailures:   5,
				Timeout:       30 * time.Second,
				HalfOpenLimit: 1,
			},
		},
		Telemetry: config.TelemetryConfig{
			Enabled:  false,
			Exporter: "stdout",
		},
		Ledger: config.LedgerConfig{
			Enabled: true,
			Path:    ".ramp/ledger.db",
		},
		Model: config.ModelConfig{
			ParametersFile: "model_parameters/default.yml",
		},
	}
}
