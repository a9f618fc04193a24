package store

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/facet-search/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/facet-search/internal/catalog/generator"
	"github.com/Adithya-Monish-Kumar-K/facet-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/facet-search/pkg/postgres"
)

// skipIfNoPostgres skips the test when PostgreSQL is unavailable.
func skipIfNoPostgres(t *testing.T) *postgres.Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	db, err := postgres.New(ctx, testPostgresConfig())
	if err != nil {
		t.Skipf("skipping store test: postgres unavailable: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testPostgresConfig() config.PostgresConfig {
	return config.PostgresConfig{
		Host:            envOrDefault("TEST_POSTGRES_HOST", "localhost"),
		Port:            envOrDefaultInt("TEST_POSTGRES_PORT", 5432),
		Database:        envOrDefault("TEST_POSTGRES_DB", "facetsearch_test"),
		User:            envOrDefault("TEST_POSTGRES_USER", "facetsearch"),
		Password:        envOrDefault("TEST_POSTGRES_PASSWORD", "localdev"),
		SSLMode:         "disable",
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

func TestSeedAndLoad(t *testing.T) {
	db := skipIfNoPostgres(t)
	ctx := context.Background()
	st := New(db, config.CatalogConfig{LoadAttempts: 2, LoadTimeout: 10 * time.Second})
	require.NoError(t, st.Migrate(ctx))

	shirts, err := generator.New(catalog.DefaultDomain(), 3).Shirts(250)
	require.NoError(t, err)
	require.NoError(t, st.Seed(ctx, shirts))

	loaded, err := st.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, shirts, loaded)

	require.NoError(t, st.Seed(ctx, shirts[:10]))
	loaded, err = st.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, loaded, 10)
}

func TestSeedEmpty(t *testing.T) {
	db := skipIfNoPostgres(t)
	ctx := context.Background()
	st := New(db, config.CatalogConfig{})
	require.NoError(t, st.Migrate(ctx))

	require.NoError(t, st.Seed(ctx, nil))
	loaded, err := st.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
