// Package store persists the shirt catalog in PostgreSQL. The search service
// reads it once at startup; facetctl seeds it.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/Adithya-Monish-Kumar-K/facet-search/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/facet-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/facet-search/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/facet-search/pkg/resilience"
)

const schema = `
CREATE TABLE IF NOT EXISTS shirts (
	seq   BIGSERIAL PRIMARY KEY,
	id    TEXT NOT NULL UNIQUE,
	name  TEXT NOT NULL,
	color TEXT NOT NULL,
	size  TEXT NOT NULL
)`

type Store struct {
	client *postgres.Client
	cfg    config.CatalogConfig
	logger *slog.Logger
}

func New(client *postgres.Client, cfg config.CatalogConfig) *Store {
	return &Store{
		client: client,
		cfg:    cfg,
		logger: slog.Default().With("component", "catalog-store"),
	}
}

// Migrate creates the shirts table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.client.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating shirts table: %w", err)
	}
	return nil
}

// Load reads the whole catalog in insertion order from one snapshot.
// Transient failures are retried with backoff, each attempt bounded by the
// configured load timeout.
func (s *Store) Load(ctx context.Context) ([]*catalog.Shirt, error) {
	var shirts []*catalog.Shirt
	retryCfg := resilience.RetryConfig{
		MaxAttempts:    s.cfg.LoadAttempts,
		AttemptTimeout: s.cfg.LoadTimeout,
	}
	err := resilience.Retry(ctx, "catalog-load", retryCfg, func(ctx context.Context) error {
		return s.client.InSnapshot(ctx, func(tx *sql.Tx) error {
			loaded, err := loadShirts(ctx, tx)
			if err != nil {
				return err
			}
			shirts = loaded
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("catalog loaded from postgres", "shirts", len(shirts))
	return shirts, nil
}

func loadShirts(ctx context.Context, tx *sql.Tx) ([]*catalog.Shirt, error) {
	var total int
	if err := tx.QueryRowContext(ctx, `SELECT count(*) FROM shirts`).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting shirts: %w", err)
	}
	rows, err := tx.QueryContext(ctx, `SELECT id, name, color, size FROM shirts ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("querying shirts: %w", err)
	}
	defer rows.Close()

	shirts := make([]*catalog.Shirt, 0, total)
	for rows.Next() {
		var (
			sh          catalog.Shirt
			color, size string
		)
		if err := rows.Scan(&sh.ID, &sh.Name, &color, &size); err != nil {
			return nil, resilience.Permanent(fmt.Errorf("scanning shirt row: %w", err))
		}
		sh.Color = catalog.Color(color)
		sh.Size = catalog.Size(size)
		shirts = append(shirts, &sh)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating shirt rows: %w", err)
	}
	return shirts, nil
}

// Seed replaces the catalog with shirts in a single transaction using COPY.
func (s *Store) Seed(ctx context.Context, shirts []*catalog.Shirt) error {
	err := s.client.InTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `TRUNCATE shirts RESTART IDENTITY`); err != nil {
			return fmt.Errorf("truncating shirts: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx, pq.CopyIn("shirts", "id", "name", "color", "size"))
		if err != nil {
			return fmt.Errorf("preparing copy: %w", err)
		}
		for _, sh := range shirts {
			if _, err := stmt.ExecContext(ctx, sh.ID, sh.Name, string(sh.Color), string(sh.Size)); err != nil {
				stmt.Close()
				return fmt.Errorf("copying shirt %s: %w", sh.ID, err)
			}
		}
		if _, err := stmt.ExecContext(ctx); err != nil {
			stmt.Close()
			return fmt.Errorf("flushing copy: %w", err)
		}
		return stmt.Close()
	})
	if err != nil {
		return err
	}
	s.logger.Info("catalog seeded", "shirts", len(shirts))
	return nil
}
