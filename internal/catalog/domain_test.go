package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Adithya-Monish-Kumar-K/facet-search/pkg/errors"
)

func TestDefaultDomain(t *testing.T) {
	d := DefaultDomain()

	assert.Equal(t, []Color{Red, Blue, Yellow, White, Black}, d.Colors())
	assert.Equal(t, []Size{Small, Medium, Large}, d.Sizes())
	assert.Equal(t, 5, d.NumColors())
	assert.Equal(t, 3, d.NumSizes())

	i, ok := d.ColorIndex(Yellow)
	require.True(t, ok)
	assert.Equal(t, 2, i)
	assert.Equal(t, Yellow, d.ColorAt(i))

	_, ok = d.SizeIndex("XL")
	assert.False(t, ok)
}

func TestNewDomainRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		colors []Color
		sizes  []Size
	}{
		{"duplicate color", []Color{Red, Red}, []Size{Small}},
		{"duplicate size", []Color{Red}, []Size{Small, Small}},
		{"blank color", []Color{" "}, []Size{Small}},
		{"blank size", []Color{Red}, []Size{""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDomain(tt.colors, tt.sizes)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		})
	}
}

func TestDomainAccessorsReturnCopies(t *testing.T) {
	d := DefaultDomain()
	colors := d.Colors()
	colors[0] = "Green"

	assert.Equal(t, Red, d.ColorAt(0))
}

func TestDomainFromShirts(t *testing.T) {
	shirts := []*Shirt{
		{Name: "a", Color: Blue, Size: Large},
		nil,
		{Name: "b", Color: Red, Size: Large},
		{Name: "c", Color: Blue, Size: Small},
	}

	d := DomainFromShirts(shirts)

	assert.Equal(t, []Color{Blue, Red}, d.Colors())
	assert.Equal(t, []Size{Large, Small}, d.Sizes())
}

func TestDomainFromShirtsEmpty(t *testing.T) {
	d := DomainFromShirts(nil)

	assert.Zero(t, d.NumColors())
	assert.Zero(t, d.NumSizes())
}

func TestDomainFromNames(t *testing.T) {
	d, err := DomainFromNames([]string{" Green ", "Red"}, nil)
	require.NoError(t, err)

	assert.Equal(t, []Color{"Green", Red}, d.Colors())
	assert.Equal(t, DefaultSizes(), d.Sizes())

	_, err = DomainFromNames([]string{"Red", "Red"}, nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestParseColorAndSize(t *testing.T) {
	d := DefaultDomain()

	c, err := d.ParseColor("  rEd ")
	require.NoError(t, err)
	assert.Equal(t, Red, c)

	s, err := d.ParseSize("LARGE")
	require.NoError(t, err)
	assert.Equal(t, Large, s)

	_, err = d.ParseColor("Green")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	var nf *apperrors.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "color", nf.Attribute)
	assert.Equal(t, "Green", nf.Value)

	_, err = d.ParseSize("XL")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDomainMarshalJSON(t *testing.T) {
	d, err := NewDomain([]Color{Red, Blue}, []Size{Small})
	require.NoError(t, err)

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{"colors":["Red","Blue"],"sizes":["Small"]}`, string(data))
}

func TestResultsLookups(t *testing.T) {
	r := &Results{
		Shirts:      []*Shirt{{Name: "a"}, {Name: "b"}},
		SizeCounts:  []SizeCount{{Size: Small, Count: 2}},
		ColorCounts: []ColorCount{{Color: Red, Count: 1}},
	}

	assert.Equal(t, 2, r.TotalHits())
	assert.Equal(t, 2, r.SizeCount(Small))
	assert.Equal(t, 0, r.SizeCount(Large))
	assert.Equal(t, 1, r.ColorCount(Red))
	assert.Equal(t, 0, r.ColorCount(Blue))
}
