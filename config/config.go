package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"brokerage/server/internal/analytics"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	BackendMemory = "memory"
	BackendRedis  = "redis"
)

type Config struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Server struct {
		Port           int      `env:"PORT" envDefault:"5250"`
		GinMode        string   `env:"GIN_MODE" envDefault:"release"`
		AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	}

	// Store selects where property, client and lead records are read from
	Store struct {
		Driver      string `env:"STORE_DRIVER" envDefault:"sqlite"`
		SQLitePath  string `env:"SQLITE_PATH" envDefault:"brokerage.db"`
		DatabaseURL string `env:"DATABASE_URL"`
		MaxConns    int32  `env:"STORE_MAX_CONNS" envDefault:"10"`
		Migrate     bool   `env:"STORE_MIGRATE" envDefault:"true"`
	}

	Dashboard struct {
		// Upper bound for the concurrent record fetch
		FetchTimeout time.Duration `env:"DASHBOARD_FETCH_TIMEOUT" envDefault:"15s"`

		// Zero disables snapshot caching
		CacheTTL time.Duration `env:"DASHBOARD_CACHE_TTL" envDefault:"0s"`

		// Zero disables background refresh
		RefreshInterval time.Duration `env:"DASHBOARD_REFRESH_INTERVAL" envDefault:"0s"`

		RecentSales int `env:"DASHBOARD_RECENT_SALES" envDefault:"10"`
	}

	Cache struct {
		Backend       string `env:"CACHE_BACKEND" envDefault:"memory"`
		RedisAddr     string `env:"REDIS_ADDR"`
		RedisPassword string `env:"REDIS_PASSWORD"`
		RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	}

	Segments struct {
		// Upper bounds of every band except the last, unbounded one
		BandEdges []float64 `env:"PRICE_BAND_EDGES" envSeparator:"," envDefault:"500000,1000000,2000000"`
	}

	Insights struct {
		Enabled bool          `env:"INSIGHTS_ENABLED" envDefault:"false"`
		APIURL  string        `env:"INSIGHTS_API_URL" envDefault:"https://api.openai.com/v1/chat/completions"`
		APIKey  string        `env:"INSIGHTS_API_KEY"`
		Model   string        `env:"INSIGHTS_MODEL" envDefault:"gpt-4o-mini"`
		Timeout time.Duration `env:"INSIGHTS_TIMEOUT" envDefault:"10s"`
	}

	// BatchProcessing configuration for seed imports
	BatchProcessing struct {
		// Maximum number of records per batch handed to the store
		MaxBatchSize int `env:"BATCH_MAX_SIZE" envDefault:"100"`

		// Number of concurrent batch processors
		ProcessorCount int `env:"BATCH_PROCESSOR_COUNT" envDefault:"2"`

		// Maximum number of retries for failed batches
		MaxRetries int `env:"BATCH_MAX_RETRIES" envDefault:"3"`

		// Delay between retries in seconds
		RetryDelay int `env:"BATCH_RETRY_DELAY" envDefault:"5"`

		QueueSize int `env:"BATCH_QUEUE_SIZE" envDefault:"64"`
	}

	Markets struct {
		// Market whose centre anchors location scoring when a request names none
		Default string `env:"DEFAULT_MARKET" envDefault:"sao-paulo"`
	}
}

// LoadConfig reads an optional .env file, then the environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Server.Port)
	}

	switch c.Store.Driver {
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite store")
		}
	case DriverPostgres:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}

	switch c.Cache.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis cache")
		}
	default:
		return fmt.Errorf("unknown CACHE_BACKEND %q", c.Cache.Backend)
	}

	if c.Dashboard.FetchTimeout <= 0 {
		return fmt.Errorf("DASHBOARD_FETCH_TIMEOUT must be positive")
	}
	if c.Dashboard.CacheTTL < 0 || c.Dashboard.RefreshInterval < 0 {
		return fmt.Errorf("dashboard durations must not be negative")
	}

	if _, err := analytics.BandsFromEdges(c.Segments.BandEdges); err != nil {
		return fmt.Errorf("invalid PRICE_BAND_EDGES: %w", err)
	}

	if GetMarketByName(c.Markets.Default) == nil {
		return fmt.Errorf("unknown DEFAULT_MARKET %q, expected one of %s", c.Markets.Default, strings.Join(GetMarketNames(), ", "))
	}

	if c.Insights.Enabled && c.Insights.APIKey == "" {
		return fmt.Errorf("INSIGHTS_API_KEY is required when INSIGHTS_ENABLED is set")
	}
	return nil
}

// PriceBands returns the configured segmentation bands.
func (c *Config) PriceBands() []analytics.PriceBand {
	bands, err := analytics.BandsFromEdges(c.Segments.BandEdges)
	if err != nil {
		return analytics.DefaultPriceBands()
	}
	return bands
}
