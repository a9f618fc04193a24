package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, SourceGenerated, cfg.Catalog.Source)
	assert.Equal(t, 50000, cfg.Catalog.GeneratedCount)
	assert.True(t, cfg.Search.CacheEnabled)
	assert.False(t, cfg.Kafka.Enabled)
	assert.Equal(t, 100, cfg.Kafka.BatchSize)
	assert.Equal(t, 5*time.Second, cfg.Search.ReadyTimeout)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
catalog:
  source: postgres
  colors: [Red, Green]
  loadTimeout: 2s
search:
  cacheEnabled: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, SourcePostgres, cfg.Catalog.Source)
	assert.Equal(t, []string{"Red", "Green"}, cfg.Catalog.Colors)
	assert.Equal(t, 2*time.Second, cfg.Catalog.LoadTimeout)
	assert.False(t, cfg.Search.CacheEnabled)
	assert.Equal(t, 3, cfg.Catalog.LoadAttempts)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SP_SERVER_PORT", "7070")
	t.Setenv("SP_KAFKA_ENABLED", "true")
	t.Setenv("SP_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("SP_CATALOG_SIZES", "S,M")
	t.Setenv("SP_CATALOG_GENERATED_COUNT", "10")
	t.Setenv("SP_SEARCH_CACHE_ENABLED", "false")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, []string{"S", "M"}, cfg.Catalog.Sizes)
	assert.Equal(t, 10, cfg.Catalog.GeneratedCount)
	assert.False(t, cfg.Search.CacheEnabled)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "server: [not, a, map"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown source", func(c *Config) { c.Catalog.Source = "s3" }},
		{"non-positive count", func(c *Config) { c.Catalog.GeneratedCount = 0 }},
		{"derive with explicit colors", func(c *Config) {
			c.Catalog.DeriveDomain = true
			c.Catalog.Colors = []string{"Red"}
		}},
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, defaultConfig().Validate())
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5433, User: "u", Password: "p", Database: "d", SSLMode: "disable"}

	assert.Equal(t, "host=db port=5433 user=u password=p dbname=d sslmode=disable", p.DSN())
}
