package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Holding sources.
const (
	SourceRemote = "remote"
	SourceLocal  = "local"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	CORS      CORSConfig
	Folio     FolioConfig
	Holdings  HoldingsConfig
	Sync      SyncConfig
	Valuation ValuationConfig
	Log       LogConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string `env:"SERVER_PORT" envDefault:"5001"`
	Host string `env:"SERVER_HOST" envDefault:"localhost"`
	Addr string // Combined host:port for convenience

	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT"     envDefault:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT"    envDefault:"15s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT"     envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string `env:"DB_PATH" envDefault:"./data/folio.db"`
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000,http://localhost:8081,http://localhost" envSeparator:","`
}

// FolioConfig points at the upstream folio API that owns the holdings.
type FolioConfig struct {
	APIURL  string        `env:"FOLIO_API_URL"`
	Timeout time.Duration `env:"FOLIO_API_TIMEOUT" envDefault:"10s"`
}

// HoldingsConfig selects where summaries read holdings from.
type HoldingsConfig struct {
	Source string `env:"HOLDINGS_SOURCE" envDefault:"remote"`
}

// SyncConfig controls the scheduled copy of upstream holdings into the local store.
// An empty Schedule disables the job.
type SyncConfig struct {
	Schedule    string   `env:"SYNC_SCHEDULE"`
	UserIDs     []string `env:"SYNC_USER_IDS" envSeparator:","`
	Concurrency int      `env:"SYNC_CONCURRENCY" envDefault:"4"`
}

// ValuationConfig tunes the portfolio aggregator.
type ValuationConfig struct {
	PreserveInputOrder bool `env:"VALUATION_PRESERVE_INPUT_ORDER" envDefault:"false"`
}

// LogConfig holds logger configuration.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL"  envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	return Parse()
}

// Parse builds a Config from the current environment without touching .env.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	// Combine host and port
	cfg.Server.Addr = fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks combinations env tags cannot express.
func (c *Config) Validate() error {
	switch c.Holdings.Source {
	case SourceRemote:
		if c.Folio.APIURL == "" {
			return fmt.Errorf("FOLIO_API_URL is required when HOLDINGS_SOURCE=%s", SourceRemote)
		}
	case SourceLocal:
		if c.Database.Path == "" {
			return fmt.Errorf("DB_PATH is required when HOLDINGS_SOURCE=%s", SourceLocal)
		}
	default:
		return fmt.Errorf("unknown HOLDINGS_SOURCE %q", c.Holdings.Source)
	}

	if c.Sync.Concurrency < 1 {
		return fmt.Errorf("SYNC_CONCURRENCY must be at least 1, got %d", c.Sync.Concurrency)
	}

	if c.Sync.Schedule != "" && c.Folio.APIURL == "" {
		return fmt.Errorf("FOLIO_API_URL is required when SYNC_SCHEDULE is set")
	}

	return nil
}
