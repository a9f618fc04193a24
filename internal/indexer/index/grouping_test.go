package index

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/facet-search/internal/catalog"
	apperrors "github.com/Adithya-Monish-Kumar-K/facet-search/pkg/errors"
)

func shirt(name string, c catalog.Color, s catalog.Size) *catalog.Shirt {
	return &catalog.Shirt{ID: name, Name: name, Color: c, Size: s}
}

func TestBuildGroupsBySizeThenColor(t *testing.T) {
	a := shirt("a", catalog.Red, catalog.Small)
	b := shirt("b", catalog.Red, catalog.Large)
	c := shirt("c", catalog.Blue, catalog.Small)
	d := shirt("d", catalog.Red, catalog.Small)

	g, err := Build(catalog.DefaultDomain(), []*catalog.Shirt{a, b, c, d})
	require.NoError(t, err)

	bucket, err := g.Bucket(catalog.Small, catalog.Red)
	require.NoError(t, err)
	assert.Equal(t, []*catalog.Shirt{a, d}, bucket)

	bucket, err = g.Bucket(catalog.Large, catalog.Red)
	require.NoError(t, err)
	assert.Equal(t, []*catalog.Shirt{b}, bucket)

	n, err := g.Count(catalog.Small, catalog.Blue)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Equal(t, 4, g.Len())
}

func TestBuildPopulatesEveryBucket(t *testing.T) {
	domain := catalog.DefaultDomain()

	g, err := Build(domain, nil)
	require.NoError(t, err)

	for _, s := range domain.Sizes() {
		for _, c := range domain.Colors() {
			bucket, err := g.Bucket(s, c)
			require.NoError(t, err)
			assert.NotNil(t, bucket, "%s/%s", s, c)
			assert.Empty(t, bucket)
		}
	}
	st := g.Stats()
	assert.Equal(t, 15, st.Buckets)
	assert.Equal(t, 15, st.EmptyBuckets)
	assert.Zero(t, st.Shirts)
}

func TestBuildPartitionsCatalog(t *testing.T) {
	domain := catalog.DefaultDomain()
	var shirts []*catalog.Shirt
	for i := 0; i < 300; i++ {
		c := domain.ColorAt(i % domain.NumColors())
		s := domain.SizeAt((i / 7) % domain.NumSizes())
		shirts = append(shirts, shirt(fmt.Sprintf("s%d", i), c, s))
	}

	g, err := Build(domain, shirts)
	require.NoError(t, err)

	seen := make(map[*catalog.Shirt]int)
	total := 0
	for _, s := range domain.Sizes() {
		for _, c := range domain.Colors() {
			bucket, err := g.Bucket(s, c)
			require.NoError(t, err)
			for _, sh := range bucket {
				assert.Equal(t, s, sh.Size)
				assert.Equal(t, c, sh.Color)
				seen[sh]++
			}
			total += len(bucket)
		}
	}
	assert.Equal(t, len(shirts), total)
	for _, sh := range shirts {
		assert.Equal(t, 1, seen[sh], sh.Name)
	}
}

func TestBuildKeepsDuplicates(t *testing.T) {
	a := shirt("a", catalog.Red, catalog.Small)

	g, err := Build(catalog.DefaultDomain(), []*catalog.Shirt{a, a})
	require.NoError(t, err)

	n, err := g.Count(catalog.Small, catalog.Red)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestBuildRejectsInvalidInput(t *testing.T) {
	domain := catalog.DefaultDomain()

	_, err := Build(nil, nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = Build(domain, []*catalog.Shirt{nil})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = Build(domain, []*catalog.Shirt{shirt("x", "Green", catalog.Small)})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = Build(domain, []*catalog.Shirt{shirt("x", catalog.Red, "XL")})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestBucketUnknownValue(t *testing.T) {
	g, err := Build(catalog.DefaultDomain(), nil)
	require.NoError(t, err)

	_, err = g.Bucket("XL", catalog.Red)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = g.Count(catalog.Small, "Green")
	var nf *apperrors.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "color", nf.Attribute)
}

func TestFingerprint(t *testing.T) {
	domain := catalog.DefaultDomain()
	shirts := []*catalog.Shirt{
		shirt("a", catalog.Red, catalog.Small),
		shirt("b", catalog.Blue, catalog.Large),
	}

	g1, err := Build(domain, shirts)
	require.NoError(t, err)
	g2, err := Build(catalog.DefaultDomain(), []*catalog.Shirt{
		shirt("a", catalog.Red, catalog.Small),
		shirt("b", catalog.Blue, catalog.Large),
	})
	require.NoError(t, err)
	assert.Equal(t, g1.Fingerprint(), g2.Fingerprint())

	g3, err := Build(domain, shirts[:1])
	require.NoError(t, err)
	assert.NotEqual(t, g1.Fingerprint(), g3.Fingerprint())

	narrow, err := catalog.NewDomain([]catalog.Color{catalog.Red, catalog.Blue}, domain.Sizes())
	require.NoError(t, err)
	g4, err := Build(narrow, shirts)
	require.NoError(t, err)
	assert.NotEqual(t, g1.Fingerprint(), g4.Fingerprint())
}

func TestStats(t *testing.T) {
	g, err := Build(catalog.DefaultDomain(), []*catalog.Shirt{
		shirt("a", catalog.Red, catalog.Small),
		shirt("b", catalog.Red, catalog.Small),
		shirt("c", catalog.Blue, catalog.Large),
	})
	require.NoError(t, err)

	assert.Equal(t, BucketStats{Buckets: 15, EmptyBuckets: 13, MaxBucket: 2, Shirts: 3}, g.Stats())
}

func BenchmarkBuild(b *testing.B) {
	domain := catalog.DefaultDomain()
	for _, n := range []int{1000, 50000} {
		shirts := make([]*catalog.Shirt, n)
		for i := range shirts {
			shirts[i] = shirt(fmt.Sprintf("s%d", i), domain.ColorAt(i%5), domain.SizeAt(i%3))
		}
		b.Run(fmt.Sprintf("shirts_%d", n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := Build(domain, shirts); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
