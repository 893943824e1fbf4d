package config

const (
	defaultRetryMaxAttempts = 1
	defaultRetryMultiplier  = 2.0

	defaultCircuitBreakerMaxFailures = 5
	defaultCircuitBreakerHalfOpen    = 1
)

// defaults returns the default configuration values.
// These are loaded first and can be overridden by base.yaml, profile YAML, and env vars.
func defaults() map[string]any {
	return map[string]any{
		"log.level":  "info",
		"log.format": "text",

		"paths.model_parameters": "model_parameters",
		"paths.processed_data":   "processed_data",

		"input.duplicate_policy": "error",

		"directory.base_url":                        "http://localhost:8081",
		"directory.api_key":                         "",
		"directory.timeout":                         "30s",
		"directory.retry.max_attempts":              defaultRetryMaxAttempts,
		"directory.retry.initial_interval":          "100ms",
		"directory.retry.max_interval":              "10s",
		"directory.retry.multiplier":                defaultRetryMultiplier,
		"directory.circuit_breaker.max_failures":    defaultCircuitBreakerMaxFailures,
		"directory.circuit_breaker.timeout":         "30s",
		"directory.circuit_breaker.half_open_limit": defaultCircuitBreakerHalfOpen,
		"directory.rate_limit.requests_per_second":  0,
		"directory.rate_limit.burst_size":           0,

		"telemetry.enabled":      false,
		"telemetry.exporter":     "stdout",
		"telemetry.endpoint":     "",
		"telemetry.service_name": "ramp",

		"ledger.enabled": true,
		"ledger.path":    ".ramp/ledger.db",

		"model.parameters_file": "model_parameters/default.yml",
	}
}
