// Package source turns catalog configuration into the facet domain and the
// loader the indexer builds from.
package source

import (
	"context"
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/facet-search/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/facet-search/internal/catalog/generator"
	"github.com/Adithya-Monish-Kumar-K/facet-search/internal/catalog/store"
	"github.com/Adithya-Monish-Kumar-K/facet-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/facet-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/facet-search/pkg/postgres"
)

// Source is an opened catalog source. Domain is nil when the domain is to be
// derived from the loaded catalog.
type Source struct {
	Domain *catalog.Domain
	Loader indexer.Loader
	Store  *store.Store
	db     *postgres.Client
}

// Domain builds the configured domain, or nil for a catalog-derived one.
func Domain(cfg config.CatalogConfig) (*catalog.Domain, error) {
	if cfg.DeriveDomain {
		return nil, nil
	}
	return catalog.DomainFromNames(cfg.Colors, cfg.Sizes)
}

// Open prepares the configured source. For Postgres it connects and ensures
// the schema; nothing is loaded until the indexer calls the loader.
func Open(ctx context.Context, cfg *config.Config) (*Source, error) {
	domain, err := Domain(cfg.Catalog)
	if err != nil {
		return nil, fmt.Errorf("building facet domain: %w", err)
	}
	src := &Source{Domain: domain}

	switch cfg.Catalog.Source {
	case config.SourceGenerated:
		genDomain := domain
		if genDomain == nil {
			genDomain = catalog.DefaultDomain()
		}
		gen := generator.New(genDomain, cfg.Catalog.Seed)
		src.Loader = indexer.LoaderFunc(gen.LoadFunc(cfg.Catalog.GeneratedCount))
	case config.SourcePostgres:
		db, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("connecting to catalog database: %w", err)
		}
		st := store.New(db, cfg.Catalog)
		if err := st.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		src.db = db
		src.Store = st
		src.Loader = st
	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.Catalog.Source)
	}
	return src, nil
}

// Ping checks the backing database, if any.
func (s *Source) Ping(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	return s.db.Ping(ctx)
}

func (s *Source) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
