// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/fx"
)

var Module = fx.Module("config",
	fx.Provide(NewConfig),
)

// Config holds all application configuration.
type Config struct {
	ServerPort    int    `env:"SERVER_PORT" envDefault:"3010"`
	ServerAddress string `env:"SERVER_ADDRESS" envDefault:"0.0.0.0"`
	Environment   string `env:"ENVIRONMENT" envDefault:"local"`
	Debug         bool   `env:"DEBUG" envDefault:"false"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`

	Database DatabaseConfig
	Auth     AuthConfig
	Cache    CacheConfig
	Batch    BatchConfig
	Audit    AuditConfig

	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"60s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Requests per second allowed per client IP at the HTTP boundary.
	RateLimit float64 `env:"RATE_LIMIT_RPS" envDefault:"50"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host         string        `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port         int           `env:"POSTGRES_PORT" envDefault:"5432"`
	User         string        `env:"POSTGRES_USER" envDefault:"ontology"`
	Password     string        `env:"POSTGRES_PASSWORD" envDefault:""`
	Database     string        `env:"POSTGRES_DB" envDefault:"ontology"`
	SSLMode      string        `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	MaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	MaxIdleTime  time.Duration `env:"DB_MAX_IDLE_TIME" envDefault:"5m"`
	QueryDebug   bool          `env:"DB_QUERY_DEBUG" envDefault:"false"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode,
	)
}

// AuthConfig holds bearer token settings for the request boundary.
type AuthConfig struct {
	// HMAC secret used to verify inbound JWTs.
	JWTSecret string `env:"AUTH_JWT_SECRET" envDefault:""`

	// Accept unsigned debug tokens of the form "debug:<user-id>" when Debug
	// is enabled. Never set in production.
	AllowDebugTokens bool `env:"AUTH_ALLOW_DEBUG_TOKENS" envDefault:"false"`
}

// CacheConfig holds settings for the in-process cache.
type CacheConfig struct {
	Enabled       bool          `env:"CACHE_ENABLED" envDefault:"true"`
	MaxEntries    int           `env:"CACHE_MAX_ENTRIES" envDefault:"10000"`
	SweepInterval time.Duration `env:"CACHE_SWEEP_INTERVAL" envDefault:"30s"`

	// Short TTLs cap the staleness window of the pattern-based invalidation.
	ObjectTTL time.Duration `env:"CACHE_OBJECT_TTL" envDefault:"5m"`
	QueryTTL  time.Duration `env:"CACHE_QUERY_TTL" envDefault:"60s"`
	LinkTTL   time.Duration `env:"CACHE_LINK_TTL" envDefault:"90s"`
}

// BatchConfig holds settings for the batch query optimizer.
type BatchConfig struct {
	Enabled bool          `env:"BATCH_ENABLED" envDefault:"true"`
	Window  time.Duration `env:"BATCH_WINDOW" envDefault:"5ms"`
	MaxSize int           `env:"BATCH_MAX_SIZE" envDefault:"50"`
}

// AuditConfig holds audit log settings.
type AuditConfig struct {
	RetentionDays int    `env:"AUDIT_RETENTION_DAYS" envDefault:"90"`
	PurgeSchedule string `env:"AUDIT_PURGE_SCHEDULE" envDefault:"0 0 3 * * *"`
}

// NewConfig parses configuration from the environment.
func NewConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
