package services

import (
	"testing"

	"airbnb-insights/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filterFixture() *models.Dataset {
	withBarrio := func(l *models.Listing, barrio string) *models.Listing {
		l.BarrioStd = &barrio
		return l
	}
	return &models.Dataset{Listings: []*models.Listing{
		withBarrio(priced("Madrid", 1, 50), "Centro"),
		withBarrio(priced("Madrid", 2, 150), "Salamanca"),
		{ID: 3, Ciudad: "Madrid"},
		withBarrio(priced("Milan", 1, 90), "Brera"),
	}}
}

func ids(ds *models.Dataset) []int64 {
	out := make([]int64, 0, ds.Len())
	for _, l := range ds.Listings {
		out = append(out, l.ID)
	}
	return out
}

func TestFilterListings(t *testing.T) {
	lo, hi := 60.0, 150.0

	tests := []struct {
		name   string
		filter ListingFilter
		want   []int64
		count  int
	}{
		{"no filter", ListingFilter{}, nil, 4},
		{"by city", ListingFilter{Cities: []string{"Madrid"}}, []int64{1, 2, 3}, 3},
		{"by barrio", ListingFilter{Barrios: []string{"Centro", "Brera"}}, []int64{1, 1}, 2},
		{"min price", ListingFilter{MinPrice: &lo}, []int64{2, 1}, 2},
		{"max price", ListingFilter{MaxPrice: &hi}, []int64{1, 2, 1}, 3},
		{"city and range", ListingFilter{Cities: []string{"Madrid"}, MinPrice: &lo, MaxPrice: &hi}, []int64{2}, 1},
		{"unknown city", ListingFilter{Cities: []string{"Roma"}}, []int64{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := FilterListings(filterFixture(), tt.filter)
			require.Equal(t, tt.count, out.Len())
			if tt.want != nil {
				assert.Equal(t, tt.want, ids(out))
			}
		})
	}
}

func TestFilterListingsReturnsCopies(t *testing.T) {
	ds := filterFixture()
	out := FilterListings(ds, ListingFilter{Cities: []string{"Milan"}})
	require.Equal(t, 1, out.Len())

	out.Listings[0].Ciudad = "changed"
	assert.Equal(t, "Milan", ds.Listings[3].Ciudad)
}
