package services

import (
	"testing"

	"airbnb-insights/models"
	"airbnb-insights/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

func TestGenerate(t *testing.T) {
	ds := &models.Dataset{Listings: []*models.Listing{
		{ID: 1, Ciudad: "Madrid", Price: fptr(100), PricePerPerson: fptr(50), ReviewScoresRating: fptr(4),
			HostIsSuperhost: strPtr("t"), BarrioStd: strPtr("Centro"), RoomType: strPtr("Entire home/apt")},
		{ID: 2, Ciudad: "Madrid", Price: fptr(200), ReviewScoresRating: fptr(5),
			HostIsSuperhost: strPtr(" T "), BarrioStd: strPtr("Centro"), RoomType: strPtr("Private room")},
		{ID: 3, Ciudad: "Madrid", HostIsSuperhost: strPtr("f"), BarrioStd: strPtr("Retiro")},
		{ID: 1, Ciudad: "Milan", Price: fptr(60), PricePerPerson: fptr(30)},
	}}

	report := NewInsightService(utils.NewNopLogger()).Generate(ds)

	assert.Equal(t, 4, report.TotalListings)
	assert.InDelta(t, 120.0, *report.AveragePrice, 1e-9)
	assert.InDelta(t, 4.5, *report.AverageRating, 1e-9)
	assert.InDelta(t, 40.0, *report.AveragePricePerHead, 1e-9)
	assert.InDelta(t, 50.0, *report.SuperhostPct, 1e-9)

	require.Len(t, report.Cities, 2)
	madrid := report.Cities[0]
	assert.Equal(t, "Madrid", madrid.City)
	assert.Equal(t, 3, madrid.Listings)
	assert.InDelta(t, 0.75, madrid.Share, 1e-9)
	assert.InDelta(t, 150.0, *madrid.AveragePrice, 1e-9)
	assert.Equal(t, []models.CategoryCount{{Label: "Centro", Count: 2}, {Label: "Retiro", Count: 1}}, madrid.TopBarrios)
	assert.Len(t, madrid.RoomTypes, 2)

	milan := report.Cities[1]
	assert.Nil(t, milan.AverageRating)
	assert.Empty(t, milan.TopBarrios)
}

func TestGenerateEmpty(t *testing.T) {
	report := NewInsightService(utils.NewNopLogger()).Generate(&models.Dataset{})
	assert.Zero(t, report.TotalListings)
	assert.Nil(t, report.AveragePrice)
	assert.Nil(t, report.SuperhostPct)
	assert.Empty(t, report.Cities)
}

func TestCompetitiveness(t *testing.T) {
	listings := []*models.Listing{
		{Price: fptr(100), AmenitiesCount: iptr(30), HostIsSuperhost: strPtr("t")},
		{Price: fptr(100), AmenitiesCount: iptr(30), HostIsSuperhost: strPtr("f")},
	}

	c := Competitiveness(listings)
	assert.InDelta(t, 50.0, c.Professionalism, 1e-9)
	assert.Zero(t, c.Flexibility)
	assert.InDelta(t, 100.0, c.Amenities, 1e-9, "amenities score is capped")
	assert.Zero(t, c.PriceVariation, "identical prices have no variation")
	assert.InDelta(t, 50*0.4+100*0.2, c.Index, 1e-9)
}

func TestCompetitivenessPriceVariation(t *testing.T) {
	listings := []*models.Listing{
		{Price: fptr(90), AmenitiesCount: iptr(3)},
		{Price: fptr(110), AmenitiesCount: iptr(3)},
		{AmenitiesCount: nil},
	}

	c := Competitiveness(listings)
	// std = 14.142..., cv = 14.142%, score = cv / 50 * 100
	assert.InDelta(t, 28.2843, c.PriceVariation, 1e-3)
	assert.InDelta(t, 20.0, c.Amenities, 1e-9)
	assert.Zero(t, c.Professionalism)
}

func TestTopCategoriesLimit(t *testing.T) {
	var listings []*models.Listing
	for _, b := range []string{"a", "b", "b", "c", "c", "c"} {
		listings = append(listings, &models.Listing{BarrioStd: strPtr(b)})
	}
	top := TopCategories(listings, func(l *models.Listing) *string { return l.BarrioStd }, 2)
	assert.Equal(t, []models.CategoryCount{{Label: "c", Count: 3}, {Label: "b", Count: 2}}, top)
}
