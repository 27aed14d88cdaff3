package config

import (
	"fmt"
	"slices"
	"time"
)

// ServiceName identifies this service in logs and APM dashboards.
const ServiceName = "bookmarks"

// ObservabilityConfig groups all configuration related to telemetry:
// structured logging, New Relic APM and dependency health checks.
type ObservabilityConfig struct {
	ServiceName  string             `koanf:"service_name" validate:"required"`
	Environment  string             `koanf:"environment" validate:"required"`
	Logging      LoggingConfig      `koanf:"logging" validate:"required"`
	NewRelic     NewRelicConfig     `koanf:"new_relic" validate:"required"`
	HealthChecks HealthChecksConfig `koanf:"health_checks" validate:"required"`
}

// LoggingConfig holds application logging configuration.
type LoggingConfig struct {
	// Level is the verbosity threshold (debug/info/warn/error).
	Level string `koanf:"level" validate:"required"`

	// Format selects the output format for logs ("json" or "console").
	Format string `koanf:"format" validate:"required"`

	// SlowQueryThreshold is the duration above which a query is logged at
	// warn level. Parsed from duration strings like "100ms".
	SlowQueryThreshold time.Duration `koanf:"slow_query_threshold"`
}

// NewRelicConfig holds configuration for New Relic APM and tracing.
// An empty LicenseKey disables the agent entirely.
type NewRelicConfig struct {
	LicenseKey                string `koanf:"license_key"`
	AppLogForwardingEnabled   bool   `koanf:"app_log_forwarding_enabled"`
	DistributedTracingEnabled bool   `koanf:"distributed_tracing_enabled"`
	DebugLogging              bool   `koanf:"debug_logging"`
}

// HealthChecksConfig controls the dependency checks behind /status.
type HealthChecksConfig struct {
	// Enabled is a pointer so an unset value can default to true.
	Enabled *bool `koanf:"enabled"`
	// Timeout bounds all checks of a single /status request together.
	Timeout time.Duration `koanf:"timeout" validate:"min=1ms"`
	// Checks names the dependencies to probe. Only "database" decides
	// the overall status.
	Checks []string `koanf:"checks" validate:"dive,oneof=database redis"`
}

// IsEnabled reports whether /status probes dependencies at all.
func (h HealthChecksConfig) IsEnabled() bool {
	return h.Enabled == nil || *h.Enabled
}

// Has reports whether the named dependency is probed.
func (h HealthChecksConfig) Has(name string) bool {
	return slices.Contains(h.Checks, name)
}

// DefaultObservabilityConfig provides the defaults used when no
// observability variables are set.
func DefaultObservabilityConfig() *ObservabilityConfig {
	return &ObservabilityConfig{
		ServiceName: ServiceName,
		Environment: "development",
		Logging: LoggingConfig{
			Level:              "info",
			Format:             "json",
			SlowQueryThreshold: 100 * time.Millisecond,
		},
		NewRelic: NewRelicConfig{
			LicenseKey:                "",
			AppLogForwardingEnabled:   true,
			DistributedTracingEnabled: true,
			DebugLogging:              false, // mixes agent output into our log stream
		},
		HealthChecks: HealthChecksConfig{
			Timeout: 5 * time.Second,
			Checks:  []string{"database", "redis"},
		},
	}
}

// Validate applies rules that go beyond struct tags. Zero-valued optional
// blocks are filled from the defaults first, so a partially configured
// observability block is still usable.
func (c *ObservabilityConfig) Validate() error {
	def := DefaultObservabilityConfig()
	if c.Logging.Format == "" {
		c.Logging.Format = def.Logging.Format
	}
	if c.Logging.SlowQueryThreshold == 0 {
		c.Logging.SlowQueryThreshold = def.Logging.SlowQueryThreshold
	}
	if c.HealthChecks.Timeout == 0 {
		c.HealthChecks.Timeout = def.HealthChecks.Timeout
	}
	if len(c.HealthChecks.Checks) == 0 {
		c.HealthChecks.Checks = def.HealthChecks.Checks
	}

	if c.ServiceName == "" {
		return fmt.Errorf("service_name is required")
	}

	validLevels := map[string]bool{
		"":      true, // resolved per environment by GetLogLevel
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s (must be one of: debug, info, warn, error)", c.Logging.Level)
	}

	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("invalid logging format: %s (must be json or console)", c.Logging.Format)
	}

	if c.Logging.SlowQueryThreshold < 0 {
		return fmt.Errorf("logging slow_query_threshold must be non-negative")
	}

	return nil
}

// GetLogLevel returns the effective log level: an explicit level wins,
// otherwise production defaults to info and everything else to debug.
func (c *ObservabilityConfig) GetLogLevel() string {
	if c.Logging.Level != "" {
		return c.Logging.Level
	}
	if c.IsProduction() {
		return "info"
	}
	return "debug"
}

// IsProduction reports whether the application is running in production mode.
func (c *ObservabilityConfig) IsProduction() bool {
	return c.Environment == "production"
}
