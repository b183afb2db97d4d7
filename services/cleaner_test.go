package services

import (
	"testing"

	"airbnb-insights/models"
	"airbnb-insights/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCleaner() *DataCleaner {
	return NewDataCleaner(utils.NewNopLogger())
}

func TestStandardizeFullSchema(t *testing.T) {
	raw := models.NewRawTable(
		[]string{"id", "neighbourhood_cleansed", "neighbourhood", "room_type", "accommodates",
			"bathrooms_text", "bathrooms", "price", "amenities", "latitude", "longitude",
			"number_of_reviews_ltm", "review_scores_rating", "host_is_superhost", "extra"},
		[][]*string{
			{strPtr("42"), strPtr("Eixample"), strPtr("Barcelona, Spain"), strPtr("Entire home/apt"), strPtr("4"),
				strPtr("1.5 baths"), strPtr("9"), strPtr("$100.00"), strPtr(`["Wifi", "Kitchen"]`), strPtr("41.39"), strPtr("2.16"),
				strPtr("12"), strPtr("4.85"), strPtr("t"), strPtr("ignored")},
			{strPtr("43"), nil, strPtr("Gràcia"), strPtr("nan"), strPtr("0"),
				strPtr("Half-bath"), nil, nil, nil, nil, nil,
				strPtr("x"), nil, nil, nil},
		},
	)

	listings := newTestCleaner().Standardize(raw, "Barcelona")
	require.Len(t, listings, 2)

	first := listings[0]
	assert.Equal(t, int64(42), first.ID)
	assert.Equal(t, "Barcelona", first.Ciudad)
	require.NotNil(t, first.BarrioStd)
	assert.Equal(t, "Eixample", *first.BarrioStd)
	require.NotNil(t, first.RoomType)
	assert.Equal(t, "Entire home/apt", *first.RoomType)
	assert.Equal(t, 4.0, *first.Accommodates)
	assert.Equal(t, 1.5, *first.BathroomsNum)
	assert.InDelta(t, 80.0, *first.Price, 1e-9)
	assert.InDelta(t, 20.0, *first.PricePerPerson, 1e-9)
	assert.Equal(t, 2, *first.AmenitiesCount)
	assert.Equal(t, 41.39, *first.Latitude)
	assert.Equal(t, 2.16, *first.Longitude)
	assert.Equal(t, 12.0, *first.NumberOfReviewsLTM)
	assert.Equal(t, 4.85, *first.ReviewScoresRating)
	assert.Equal(t, "t", *first.HostIsSuperhost)

	second := listings[1]
	assert.Equal(t, int64(43), second.ID)
	assert.Nil(t, second.BarrioStd, "neighbourhood_cleansed wins even when its cell is missing")
	assert.Nil(t, second.RoomType)
	assert.Equal(t, 0.5, *second.BathroomsNum)
	assert.Nil(t, second.Price)
	assert.Nil(t, second.PricePerPerson)
	require.NotNil(t, second.AmenitiesCount)
	assert.Equal(t, 0, *second.AmenitiesCount)
	assert.Nil(t, second.Latitude)
	assert.Nil(t, second.NumberOfReviewsLTM)
	assert.Nil(t, second.HostIsSuperhost)
}

func TestStandardizeSparseSchema(t *testing.T) {
	raw := models.NewRawTable(
		[]string{"neighbourhood", "bathrooms", "price", "accommodates"},
		[][]*string{
			{strPtr("Centrum"), strPtr("2"), strPtr("150"), nil},
			{strPtr("Zuid"), strPtr("x"), strPtr("abc"), strPtr("3")},
			{nil, nil, strPtr("90"), strPtr("3")},
		},
	)

	listings := newTestCleaner().Standardize(raw, "Amsterdam")
	require.Len(t, listings, 3)

	for i, l := range listings {
		assert.Equal(t, int64(i+1), l.ID, "ids are synthesized as a 1-based sequence")
		assert.Nil(t, l.RoomType)
		assert.Nil(t, l.AmenitiesCount, "absent amenities column stays null")
		assert.Nil(t, l.ReviewScoresRating)
	}

	assert.Equal(t, "Centrum", *listings[0].BarrioStd)
	assert.Equal(t, 2.0, *listings[0].BathroomsNum)
	assert.InDelta(t, 120.0, *listings[0].Price, 1e-9)
	assert.Nil(t, listings[0].PricePerPerson, "null accommodates")

	assert.Nil(t, listings[1].BathroomsNum)
	assert.Nil(t, listings[1].Price)
	assert.Nil(t, listings[1].PricePerPerson)

	assert.Nil(t, listings[2].BarrioStd)
	assert.InDelta(t, 72.0, *listings[2].Price, 1e-9)
	assert.InDelta(t, 24.0, *listings[2].PricePerPerson, 1e-9)
}

func TestStandardizeZeroAccommodates(t *testing.T) {
	raw := models.NewRawTable(
		[]string{"id", "price", "accommodates"},
		[][]*string{{strPtr("1"), strPtr("100"), strPtr("0")}},
	)
	listings := newTestCleaner().Standardize(raw, "Madrid")
	require.Len(t, listings, 1)
	assert.InDelta(t, 80.0, *listings[0].Price, 1e-9)
	assert.Nil(t, listings[0].PricePerPerson)
}

func TestStandardizeNormalizesBarrio(t *testing.T) {
	decomposed := "Gra\u0300cia"
	raw := models.NewRawTable(
		[]string{"neighbourhood_cleansed"},
		[][]*string{{&decomposed}},
	)
	listings := newTestCleaner().Standardize(raw, "Barcelona")
	require.Len(t, listings, 1)
	assert.Equal(t, "Gr\u00e0cia", *listings[0].BarrioStd)
}

func TestStandardizeIDs(t *testing.T) {
	raw := models.NewRawTable(
		[]string{"id"},
		[][]*string{{strPtr("7")}, {strPtr("1.2e+3")}, {nil}, {strPtr("abc")}},
	)
	listings := newTestCleaner().Standardize(raw, "Atenas")
	require.Len(t, listings, 4)
	assert.Equal(t, int64(7), listings[0].ID)
	assert.Equal(t, int64(1200), listings[1].ID)
	assert.Equal(t, int64(0), listings[2].ID)
	assert.Equal(t, int64(0), listings[3].ID)
}

func TestStandardizeEmptyTable(t *testing.T) {
	raw := models.NewRawTable([]string{"id", "price"}, nil)
	assert.Empty(t, newTestCleaner().Standardize(raw, "Milan"))
}
