// Package catalog defines the shirt data model shared by the indexer and the
// query engine: the Color and Size attribute domains, the Shirt item, search
// options and search results.
package catalog

// Color is one value of the color facet.
type Color string

// Size is one value of the size facet.
type Size string

const (
	Red    Color = "Red"
	Blue   Color = "Blue"
	Yellow Color = "Yellow"
	White  Color = "White"
	Black  Color = "Black"
)

const (
	Small  Size = "Small"
	Medium Size = "Medium"
	Large  Size = "Large"
)

// DefaultColors is the canonical color enumeration used when no domain is
// configured.
func DefaultColors() []Color {
	return []Color{Red, Blue, Yellow, White, Black}
}

// DefaultSizes is the canonical size enumeration used when no domain is
// configured.
func DefaultSizes() []Size {
	return []Size{Small, Medium, Large}
}

// Shirt is a catalog item. Shirts are owned by whoever loads the catalog;
// the index and the query engine only hold pointers to them.
type Shirt struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color Color  `json:"color"`
	Size  Size   `json:"size"`
}

// Options restricts a search. An empty Colors or Sizes slice means every
// canonical value of that facet.
type Options struct {
	Colors []Color `json:"colors"`
	Sizes  []Size  `json:"sizes"`
}

// SizeCount is the facet count for one size.
type SizeCount struct {
	Size  Size `json:"size"`
	Count int  `json:"count"`
}

// ColorCount is the facet count for one color.
type ColorCount struct {
	Color Color `json:"color"`
	Count int   `json:"count"`
}

// Results holds the matching shirts and the facet breakdowns. SizeCounts and
// ColorCounts list every canonical value in domain order, zeros included.
type Results struct {
	Shirts      []*Shirt     `json:"shirts"`
	SizeCounts  []SizeCount  `json:"size_counts"`
	ColorCounts []ColorCount `json:"color_counts"`
}

// SizeCount returns the facet count for size, or 0 if size is not listed.
func (r *Results) SizeCount(size Size) int {
	for _, sc := range r.SizeCounts {
		if sc.Size == size {
			return sc.Count
		}
	}
	return 0
}

// ColorCount returns the facet count for color, or 0 if color is not listed.
func (r *Results) ColorCount(color Color) int {
	for _, cc := range r.ColorCounts {
		if cc.Color == color {
			return cc.Count
		}
	}
	return 0
}

// TotalHits is the number of matching shirts.
func (r *Results) TotalHits() int {
	return len(r.Shirts)
}
