package executor

import (
	"github.com/Adithya-Monish-Kumar-K/facet-search/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/facet-search/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/facet-search/pkg/errors"
)

// plan is a query resolved against a domain: requested values as domain
// positions in request order, plus membership masks.
type plan struct {
	sizes     []int
	colors    []int
	colorMask []bool
}

// Search evaluates opts against g. It never modifies g or opts.
//
// Matching shirts are ordered by requested size, then requested color, then
// catalog order. Color counts cover every canonical color across all sizes,
// and are zero for colors that were not requested. Size counts cover every
// canonical size and sum the requested colors' buckets at that size. Neither
// facet is narrowed by the size filter.
func Search(g *index.Grouping, opts *catalog.Options) (*catalog.Results, error) {
	if g == nil {
		return nil, apperrors.InvalidInput("grouping is required")
	}
	if opts == nil {
		return nil, apperrors.InvalidInput("search options are required")
	}
	p, err := resolve(g.Domain(), opts)
	if err != nil {
		return nil, err
	}
	domain := g.Domain()

	matched := 0
	for _, si := range p.sizes {
		for _, ci := range p.colors {
			matched += len(g.BucketAt(si, ci))
		}
	}
	shirts := make([]*catalog.Shirt, 0, matched)
	for _, si := range p.sizes {
		for _, ci := range p.colors {
			shirts = append(shirts, g.BucketAt(si, ci)...)
		}
	}

	sizeCounts := make([]catalog.SizeCount, domain.NumSizes())
	for si := range sizeCounts {
		count := 0
		for _, ci := range p.colors {
			count += len(g.BucketAt(si, ci))
		}
		sizeCounts[si] = catalog.SizeCount{Size: domain.SizeAt(si), Count: count}
	}

	colorCounts := make([]catalog.ColorCount, domain.NumColors())
	for ci := range colorCounts {
		count := 0
		if p.colorMask[ci] {
			for si := 0; si < domain.NumSizes(); si++ {
				count += len(g.BucketAt(si, ci))
			}
		}
		colorCounts[ci] = catalog.ColorCount{Color: domain.ColorAt(ci), Count: count}
	}

	return &catalog.Results{
		Shirts:      shirts,
		SizeCounts:  sizeCounts,
		ColorCounts: colorCounts,
	}, nil
}

// resolve expands empty facets to the whole domain and maps values to
// domain positions. Repeated values keep their first position only.
func resolve(domain *catalog.Domain, opts *catalog.Options) (*plan, error) {
	p := &plan{colorMask: make([]bool, domain.NumColors())}

	if len(opts.Sizes) == 0 {
		p.sizes = make([]int, domain.NumSizes())
		for i := range p.sizes {
			p.sizes[i] = i
		}
	} else {
		seen := make([]bool, domain.NumSizes())
		for _, s := range opts.Sizes {
			si, ok := domain.SizeIndex(s)
			if !ok {
				return nil, &apperrors.NotFoundError{Attribute: "size", Value: string(s)}
			}
			if seen[si] {
				continue
			}
			seen[si] = true
			p.sizes = append(p.sizes, si)
		}
	}

	if len(opts.Colors) == 0 {
		p.colors = make([]int, domain.NumColors())
		for i := range p.colors {
			p.colors[i] = i
			p.colorMask[i] = true
		}
	} else {
		for _, c := range opts.Colors {
			ci, ok := domain.ColorIndex(c)
			if !ok {
				return nil, &apperrors.NotFoundError{Attribute: "color", Value: string(c)}
			}
			if p.colorMask[ci] {
				continue
			}
			p.colorMask[ci] = true
			p.colors = append(p.colors, ci)
		}
	}
	return p, nil
}

// Normalize returns the canonical form of opts for domain: facets
// expanded and de-duplicated, request order kept. It is used to key caches so
// that equivalent queries share an entry.
func Normalize(domain *catalog.Domain, opts *catalog.Options) (*catalog.Options, error) {
	if domain == nil || opts == nil {
		return nil, apperrors.InvalidInput("domain and options are required")
	}
	p, err := resolve(domain, opts)
	if err != nil {
		return nil, err
	}
	out := &catalog.Options{
		Colors: make([]catalog.Color, len(p.colors)),
		Sizes:  make([]catalog.Size, len(p.sizes)),
	}
	for i, ci := range p.colors {
		out.Colors[i] = domain.ColorAt(ci)
	}
	for i, si := range p.sizes {
		out.Sizes[i] = domain.SizeAt(si)
	}
	return out, nil
}
