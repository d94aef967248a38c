package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 5250, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, 15*time.Second, cfg.Dashboard.FetchTimeout)
	assert.Equal(t, time.Duration(0), cfg.Dashboard.CacheTTL)
	assert.Equal(t, BackendMemory, cfg.Cache.Backend)
	assert.Equal(t, []float64{500000, 1000000, 2000000}, cfg.Segments.BandEdges)
	assert.Equal(t, 100, cfg.BatchProcessing.MaxBatchSize)
	assert.Equal(t, "sao-paulo", cfg.Markets.Default)
	assert.False(t, cfg.Insights.Enabled)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/brokerage")
	t.Setenv("DASHBOARD_FETCH_TIMEOUT", "3s")
	t.Setenv("DASHBOARD_CACHE_TTL", "1m")
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("PRICE_BAND_EDGES", "300000,900000")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test,http://b.test")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, 3*time.Second, cfg.Dashboard.FetchTimeout)
	assert.Equal(t, time.Minute, cfg.Dashboard.CacheTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowedOrigins)

	bands := cfg.PriceBands()
	require.Len(t, bands, 3)
	assert.Equal(t, "0-300k", bands[0].Label)
	assert.Equal(t, "900k+", bands[2].Label)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{name: "postgres without url", mutate: func(c *Config) { c.Store.Driver = DriverPostgres }},
		{name: "unknown driver", mutate: func(c *Config) { c.Store.Driver = "mongo" }},
		{name: "redis without address", mutate: func(c *Config) { c.Cache.Backend = BackendRedis }},
		{name: "unknown cache", mutate: func(c *Config) { c.Cache.Backend = "memcached" }},
		{name: "descending edges", mutate: func(c *Config) { c.Segments.BandEdges = []float64{2, 1} }},
		{name: "no edges", mutate: func(c *Config) { c.Segments.BandEdges = nil }},
		{name: "zero timeout", mutate: func(c *Config) { c.Dashboard.FetchTimeout = 0 }},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 70000 }},
		{name: "unknown market", mutate: func(c *Config) { c.Markets.Default = "atlantis" }},
		{name: "insights without key", mutate: func(c *Config) { c.Insights.Enabled = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig()
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateListsMarkets(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	cfg.Markets.Default = "atlantis"

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sao-paulo, rio-de-janeiro")
}

func TestLoadConfigRejectsInvalidEnvironment(t *testing.T) {
	t.Setenv("DASHBOARD_FETCH_TIMEOUT", "soon")
	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestMarkets(t *testing.T) {
	assert.Contains(t, GetMarketNames(), "sao-paulo")

	m := GetMarketByName("rio-de-janeiro")
	require.NotNil(t, m)
	assert.InDelta(t, -22.9068, m.Center.Lat(), 1e-9)
	assert.InDelta(t, -43.1729, m.Center.Lon(), 1e-9)

	assert.Nil(t, GetMarketByName("atlantis"))
}
