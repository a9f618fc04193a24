// Package index holds the size-by-color bucket table that backs facet search.
// A Grouping is built once from the full catalog and is read-only afterwards,
// so any number of goroutines may query it without locking.
package index

import (
	"github.com/cespare/xxhash/v2"

	"github.com/Adithya-Monish-Kumar-K/facet-search/internal/catalog"
	apperrors "github.com/Adithya-Monish-Kumar-K/facet-search/pkg/errors"
)

// Grouping is a flat table with one bucket per (size, color) pair of its
// domain. Bucket (s, c) lives at s*numColors + c.
type Grouping struct {
	domain      *catalog.Domain
	buckets     [][]*catalog.Shirt
	numColors   int
	total       int
	fingerprint uint64
}

// BucketStats summarises bucket occupancy.
type BucketStats struct {
	Buckets      int `json:"buckets"`
	EmptyBuckets int `json:"empty_buckets"`
	MaxBucket    int `json:"max_bucket"`
	Shirts       int `json:"shirts"`
}

// Build groups shirts by size, then color. Every bucket of the domain's cross
// product exists even if it stays empty. Shirts keep their catalog order
// inside a bucket and duplicates are kept as distinct entries.
func Build(domain *catalog.Domain, shirts []*catalog.Shirt) (*Grouping, error) {
	if domain == nil {
		return nil, apperrors.InvalidInput("domain is required")
	}
	numColors := domain.NumColors()
	g := &Grouping{
		domain:    domain,
		buckets:   make([][]*catalog.Shirt, domain.NumSizes()*numColors),
		numColors: numColors,
	}
	for i := range g.buckets {
		g.buckets[i] = []*catalog.Shirt{}
	}

	h := xxhash.New()
	for i, shirt := range shirts {
		if shirt == nil {
			return nil, apperrors.InvalidInput("shirt at position %d is nil", i)
		}
		si, ok := domain.SizeIndex(shirt.Size)
		if !ok {
			return nil, apperrors.InvalidInput("shirt %q has size %q outside the domain", shirt.Name, shirt.Size)
		}
		ci, ok := domain.ColorIndex(shirt.Color)
		if !ok {
			return nil, apperrors.InvalidInput("shirt %q has color %q outside the domain", shirt.Name, shirt.Color)
		}
		slot := si*numColors + ci
		g.buckets[slot] = append(g.buckets[slot], shirt)

		h.WriteString(shirt.ID)
		h.WriteString("\x00")
		h.WriteString(shirt.Name)
		h.WriteString("\x00")
		h.WriteString(string(shirt.Color))
		h.WriteString("\x00")
		h.WriteString(string(shirt.Size))
		h.WriteString("\x1e")
	}
	for _, s := range domain.Sizes() {
		h.WriteString(string(s))
		h.WriteString("\x1f")
	}
	for _, c := range domain.Colors() {
		h.WriteString(string(c))
		h.WriteString("\x1f")
	}
	g.total = len(shirts)
	g.fingerprint = h.Sum64()
	return g, nil
}

// Domain returns the enumeration the grouping was built over.
func (g *Grouping) Domain() *catalog.Domain {
	return g.domain
}

// Len is the number of shirts indexed.
func (g *Grouping) Len() int {
	return g.total
}

// Fingerprint identifies the catalog contents and domain. Two groupings built
// from equal inputs share a fingerprint.
func (g *Grouping) Fingerprint() uint64 {
	return g.fingerprint
}

// Bucket returns the shirts of one (size, color) pair. The returned slice is
// shared with the grouping and must not be modified.
func (g *Grouping) Bucket(size catalog.Size, color catalog.Color) ([]*catalog.Shirt, error) {
	slot, err := g.slot(size, color)
	if err != nil {
		return nil, err
	}
	return g.buckets[slot], nil
}

// Count returns the number of shirts in one (size, color) bucket.
func (g *Grouping) Count(size catalog.Size, color catalog.Color) (int, error) {
	slot, err := g.slot(size, color)
	if err != nil {
		return 0, err
	}
	return len(g.buckets[slot]), nil
}

// BucketAt addresses a bucket by domain positions. Callers must pass indexes
// obtained from the grouping's own domain.
func (g *Grouping) BucketAt(sizeIdx, colorIdx int) []*catalog.Shirt {
	return g.buckets[sizeIdx*g.numColors+colorIdx]
}

// Stats reports bucket occupancy.
func (g *Grouping) Stats() BucketStats {
	st := BucketStats{Buckets: len(g.buckets), Shirts: g.total}
	for _, b := range g.buckets {
		if len(b) == 0 {
			st.EmptyBuckets++
		}
		if len(b) > st.MaxBucket {
			st.MaxBucket = len(b)
		}
	}
	return st
}

func (g *Grouping) slot(size catalog.Size, color catalog.Color) (int, error) {
	si, ok := g.domain.SizeIndex(size)
	if !ok {
		return 0, &apperrors.NotFoundError{Attribute: "size", Value: string(size)}
	}
	ci, ok := g.domain.ColorIndex(color)
	if !ok {
		return 0, &apperrors.NotFoundError{Attribute: "color", Value: string(color)}
	}
	return si*g.numColors + ci, nil
}
