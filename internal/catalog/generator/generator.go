// Package generator produces synthetic shirt catalogs for benchmarks, load
// tests and the "generated" catalog source. Output is fully determined by the
// seed, so runs are reproducible.
package generator

import (
	"context"
	"encoding/binary"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/Adithya-Monish-Kumar-K/facet-search/internal/catalog"
	apperrors "github.com/Adithya-Monish-Kumar-K/facet-search/pkg/errors"
)

// Generator draws shirts uniformly over a domain.
type Generator struct {
	domain *catalog.Domain
	seed   int64
}

func New(domain *catalog.Domain, seed int64) *Generator {
	return &Generator{domain: domain, seed: seed}
}

// Shirts returns count freshly allocated shirts.
func (g *Generator) Shirts(count int) ([]*catalog.Shirt, error) {
	if count < 0 {
		return nil, apperrors.InvalidInput("shirt count must not be negative, got %d", count)
	}
	if count > 0 && (g.domain.NumColors() == 0 || g.domain.NumSizes() == 0) {
		return nil, apperrors.InvalidInput("cannot generate shirts over an empty domain")
	}
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:], uint64(g.seed))
	src := rand.NewChaCha8(key)
	rng := rand.New(src)

	shirts := make([]*catalog.Shirt, count)
	for i := range shirts {
		id, err := uuid.NewRandomFromReader(src)
		if err != nil {
			return nil, fmt.Errorf("generating shirt id: %w", err)
		}
		color := g.domain.ColorAt(rng.IntN(g.domain.NumColors()))
		size := g.domain.SizeAt(rng.IntN(g.domain.NumSizes()))
		shirts[i] = &catalog.Shirt{
			ID:    id.String(),
			Name:  fmt.Sprintf("%s %s shirt #%d", size, color, i+1),
			Color: color,
			Size:  size,
		}
	}
	return shirts, nil
}

// LoadFunc returns a loader callback producing count shirts. Wrap it with
// indexer.LoaderFunc to feed an engine.
func (g *Generator) LoadFunc(count int) func(ctx context.Context) ([]*catalog.Shirt, error) {
	return func(ctx context.Context) ([]*catalog.Shirt, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return g.Shirts(count)
	}
}
