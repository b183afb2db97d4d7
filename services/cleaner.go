package services

import (
	"strconv"
	"strings"

	"airbnb-insights/models"
	"airbnb-insights/utils"

	"golang.org/x/text/unicode/norm"
)

// PriceScaleFactor is applied to every parsed price. The upstream dashboard
// applies it without documenting why (fee or currency adjustment); it is kept
// as an unexplained business rule.
const PriceScaleFactor = 0.80

// DataCleaner maps raw per-city tables into the canonical listing schema
type DataCleaner struct {
	logger *utils.Logger
}

// NewDataCleaner creates a new DataCleaner
func NewDataCleaner(logger *utils.Logger) *DataCleaner {
	return &DataCleaner{logger: logger}
}

// Standardize converts every row of raw into a canonical Listing for city.
// Unparsable or absent fields become nil; it never fails.
func (c *DataCleaner) Standardize(raw *models.RawTable, city string) []*models.Listing {
	n := raw.Len()
	listings := make([]*models.Listing, n)

	barrioCol := ""
	switch {
	case raw.Has("neighbourhood_cleansed"):
		barrioCol = "neighbourhood_cleansed"
	case raw.Has("neighbourhood"):
		barrioCol = "neighbourhood"
	}
	hasID := raw.Has("id")
	hasBathText := raw.Has("bathrooms_text")
	hasAmenities := raw.Has("amenities")

	c.logger.Debug("Standardizing %s: %d rows (id=%t barrio=%q bathrooms_text=%t amenities=%t)",
		city, n, hasID, barrioCol, hasBathText, hasAmenities)

	anyPrice := false
	for i := 0; i < n; i++ {
		l := &models.Listing{Ciudad: city}

		if hasID {
			l.ID = parseID(cell(raw, i, "id"))
		} else {
			l.ID = int64(i + 1)
		}

		if v, ok := raw.Value(i, "price"); ok {
			l.Price = floatOK(ParsePrice(v))
			if l.Price != nil {
				anyPrice = true
			}
		}

		if barrioCol != "" {
			if v, ok := raw.Value(i, barrioCol); ok {
				l.BarrioStd = strPtr(norm.NFC.String(v))
			}
		}

		if v, ok := raw.Value(i, "room_type"); ok && v != "nan" {
			l.RoomType = strPtr(v)
		}

		l.Accommodates = numericCell(raw, i, "accommodates")

		if hasBathText {
			if v, ok := raw.Value(i, "bathrooms_text"); ok {
				l.BathroomsNum = floatOK(ParseBathrooms(v))
			}
		} else {
			l.BathroomsNum = numericCell(raw, i, "bathrooms")
		}

		l.Latitude = numericCell(raw, i, "latitude")
		l.Longitude = numericCell(raw, i, "longitude")

		if hasAmenities {
			count := 0
			if v, ok := raw.Value(i, "amenities"); ok {
				count = CountAmenities(v)
			}
			l.AmenitiesCount = &count
		}

		l.NumberOfReviewsLTM = numericCell(raw, i, "number_of_reviews_ltm")
		l.ReviewScoresRating = numericCell(raw, i, "review_scores_rating")
		if v, ok := raw.Value(i, "host_is_superhost"); ok {
			l.HostIsSuperhost = strPtr(v)
		}

		listings[i] = l
	}

	for _, l := range listings {
		if anyPrice && l.Price != nil {
			scaled := *l.Price * PriceScaleFactor
			l.Price = &scaled
		}
		if l.Price != nil && l.Accommodates != nil && *l.Accommodates > 0 {
			ppp := *l.Price / *l.Accommodates
			l.PricePerPerson = &ppp
		}
	}

	return listings
}

// parseID reads an integer listing id; ids exported as floats ("1.2e+17")
// are accepted. Missing or invalid ids map to 0.
func parseID(raw string) int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return id
	}
	if f, ok := parseFinite(raw); ok {
		return int64(f)
	}
	return 0
}

func cell(raw *models.RawTable, row int, column string) string {
	v, _ := raw.Value(row, column)
	return v
}

func numericCell(raw *models.RawTable, row int, column string) *float64 {
	v, ok := raw.Value(row, column)
	if !ok {
		return nil
	}
	return floatOK(ParseNumeric(v))
}

func floatOK(v float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	return &v
}

func strPtr(s string) *string {
	return &s
}
