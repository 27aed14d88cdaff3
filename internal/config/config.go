// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env` file
// when present), loads them into structured Go types and validates that
// required values are present so they can be reused across the
// application runtime.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config (structs).
//   - Validate required values so the app fails fast on bad/missing config.
//   - Provide defaults for optional blocks (observability, rate limiting).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// Side-effect import: loads `.env` into the process env before we read it.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix every configuration variable carries.
//
// Keys are lowercased with the prefix removed, and "." separates nesting:
//
//	BOOKMARKS_DATABASE.HOST -> database.host -> Config.Database.Host
const EnvPrefix = "BOOKMARKS_"

// Config is the root configuration object for the application.
//
// Observability is a pointer because it is optional. If not provided,
// defaults are injected at load time.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Redis         RedisConfig          `koanf:"redis" validate:"required"`
	RateLimit     RateLimitConfig      `koanf:"ratelimit"`
	Sanitize      SanitizeConfig       `koanf:"sanitize"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
// It tags logs and decides how much error detail clients get.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// IsProduction reports whether the service runs with production behavior:
// generic 500 bodies and reduced request logs.
func (p Primary) IsProduction() bool {
	return p.Env == "production"
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are whole seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`
}

// DatabaseConfig contains PostgreSQL connection parameters and pool tuning.
type DatabaseConfig struct {
	Host            string `koanf:"host" validate:"required"`
	Port            int    `koanf:"port" validate:"required"`
	User            string `koanf:"user" validate:"required"`
	Password        string `koanf:"password" validate:"required"`
	Name            string `koanf:"name" validate:"required"`
	SSLMode         string `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int    `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns    int    `koanf:"max_idle_conns" validate:"required"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time" validate:"required"`
}

// RedisConfig contains Redis connection details.
// Address is typically "host:port".
type RedisConfig struct {
	Address  string `koanf:"address" validate:"required"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db" validate:"min=0"`
}

// RateLimitConfig configures the per-client token bucket.
//
// Enabled is a pointer so that "not set" can default to on.
type RateLimitConfig struct {
	Enabled        *bool         `koanf:"enabled"`
	Capacity       int           `koanf:"capacity" validate:"min=0"`
	RefillTokens   int           `koanf:"refill_tokens" validate:"min=0"`
	RefillInterval time.Duration `koanf:"refill_interval" validate:"min=0"`
	Prefix         string        `koanf:"prefix"`
}

// IsEnabled reports whether rate limiting should be installed.
func (c RateLimitConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// TTL is how long an idle bucket is kept around.
func (c RateLimitConfig) TTL() time.Duration {
	return time.Duration(c.Capacity/c.RefillTokens+1) * c.RefillInterval * 5
}

func (c *RateLimitConfig) applyDefaults() {
	if c.Capacity < 1 {
		c.Capacity = 60
	}
	if c.RefillTokens < 1 {
		c.RefillTokens = 1
	}
	if c.RefillInterval <= 0 {
		c.RefillInterval = time.Second
	}
	if c.Prefix == "" {
		c.Prefix = "rl"
	}
}

// SanitizeConfig controls where stored text is passed through the XSS filter.
//
// UniformReads=false keeps the historical behavior: only the single-record
// fetch is sanitized. Setting it to true sanitizes the list response as well.
type SanitizeConfig struct {
	UniformReads bool `koanf:"uniform_reads"`
}

// LoadConfig loads configuration from environment variables, validates it,
// applies defaults and returns the resulting config.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	mainConfig := &Config{}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	if mainConfig.Observability == nil {
		mainConfig.Observability = DefaultObservabilityConfig()
	}

	// Service name and environment always follow the primary config so that
	// logs and traces agree on what they describe.
	mainConfig.Observability.ServiceName = ServiceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	mainConfig.RateLimit.applyDefaults()

	return mainConfig, nil
}
