package catalog

import (
	"encoding/json"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/facet-search/pkg/errors"
)

// Domain is the canonical enumeration of both facets. It drives default
// query expansion and fixes the order of facet counts in every result.
// A Domain is immutable after construction.
type Domain struct {
	colors   []Color
	sizes    []Size
	colorIdx map[Color]int
	sizeIdx  map[Size]int
}

// NewDomain validates and copies the given enumerations. Empty values and
// duplicates are rejected.
func NewDomain(colors []Color, sizes []Size) (*Domain, error) {
	d := &Domain{
		colors:   make([]Color, 0, len(colors)),
		sizes:    make([]Size, 0, len(sizes)),
		colorIdx: make(map[Color]int, len(colors)),
		sizeIdx:  make(map[Size]int, len(sizes)),
	}
	for _, c := range colors {
		if strings.TrimSpace(string(c)) == "" {
			return nil, apperrors.InvalidInput("color must not be empty")
		}
		if _, dup := d.colorIdx[c]; dup {
			return nil, apperrors.InvalidInput("duplicate color %q", c)
		}
		d.colorIdx[c] = len(d.colors)
		d.colors = append(d.colors, c)
	}
	for _, s := range sizes {
		if strings.TrimSpace(string(s)) == "" {
			return nil, apperrors.InvalidInput("size must not be empty")
		}
		if _, dup := d.sizeIdx[s]; dup {
			return nil, apperrors.InvalidInput("duplicate size %q", s)
		}
		d.sizeIdx[s] = len(d.sizes)
		d.sizes = append(d.sizes, s)
	}
	return d, nil
}

// DefaultDomain returns the fixed five-color, three-size domain.
func DefaultDomain() *Domain {
	d, err := NewDomain(DefaultColors(), DefaultSizes())
	if err != nil {
		panic(err)
	}
	return d
}

// DomainFromShirts derives the domain from the distinct values observed in
// shirts, in first-seen order. Values absent from the catalog are absent from
// the domain. Nil entries are skipped.
func DomainFromShirts(shirts []*Shirt) *Domain {
	d := &Domain{
		colorIdx: make(map[Color]int),
		sizeIdx:  make(map[Size]int),
	}
	for _, s := range shirts {
		if s == nil {
			continue
		}
		if _, ok := d.colorIdx[s.Color]; !ok {
			d.colorIdx[s.Color] = len(d.colors)
			d.colors = append(d.colors, s.Color)
		}
		if _, ok := d.sizeIdx[s.Size]; !ok {
			d.sizeIdx[s.Size] = len(d.sizes)
			d.sizes = append(d.sizes, s.Size)
		}
	}
	return d
}

// Colors returns a copy of the color enumeration.
func (d *Domain) Colors() []Color {
	out := make([]Color, len(d.colors))
	copy(out, d.colors)
	return out
}

// Sizes returns a copy of the size enumeration.
func (d *Domain) Sizes() []Size {
	out := make([]Size, len(d.sizes))
	copy(out, d.sizes)
	return out
}

// NumColors is the number of colors in the domain.
func (d *Domain) NumColors() int { return len(d.colors) }

// NumSizes is the number of sizes in the domain.
func (d *Domain) NumSizes() int { return len(d.sizes) }

// ColorIndex returns the position of c in the enumeration.
func (d *Domain) ColorIndex(c Color) (int, bool) {
	i, ok := d.colorIdx[c]
	return i, ok
}

// SizeIndex returns the position of s in the enumeration.
func (d *Domain) SizeIndex(s Size) (int, bool) {
	i, ok := d.sizeIdx[s]
	return i, ok
}

// ColorAt returns the color at position i.
func (d *Domain) ColorAt(i int) Color { return d.colors[i] }

// SizeAt returns the size at position i.
func (d *Domain) SizeAt(i int) Size { return d.sizes[i] }

// ParseColor resolves a case-insensitive name to a color of the domain.
func (d *Domain) ParseColor(name string) (Color, error) {
	name = strings.TrimSpace(name)
	for _, c := range d.colors {
		if strings.EqualFold(string(c), name) {
			return c, nil
		}
	}
	return "", &apperrors.NotFoundError{Attribute: "color", Value: name}
}

// ParseSize resolves a case-insensitive name to a size of the domain.
func (d *Domain) ParseSize(name string) (Size, error) {
	name = strings.TrimSpace(name)
	for _, s := range d.sizes {
		if strings.EqualFold(string(s), name) {
			return s, nil
		}
	}
	return "", &apperrors.NotFoundError{Attribute: "size", Value: name}
}

// MarshalJSON renders the domain as {"colors": [...], "sizes": [...]}.
func (d *Domain) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Colors []Color `json:"colors"`
		Sizes  []Size  `json:"sizes"`
	}{d.colors, d.sizes})
}

// DomainFromNames builds a domain from configured value names. A facet with
// no names falls back to its default enumeration.
func DomainFromNames(colorNames, sizeNames []string) (*Domain, error) {
	colors := DefaultColors()
	if len(colorNames) > 0 {
		colors = make([]Color, len(colorNames))
		for i, n := range colorNames {
			colors[i] = Color(strings.TrimSpace(n))
		}
	}
	sizes := DefaultSizes()
	if len(sizeNames) > 0 {
		sizes = make([]Size, len(sizeNames))
		for i, n := range sizeNames {
			sizes[i] = Size(strings.TrimSpace(n))
		}
	}
	return NewDomain(colors, sizes)
}
