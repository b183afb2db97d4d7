package storage

import (
	"strconv"

	"airbnb-insights/models"
)

// listingValues returns the listing's fields in canonical column order,
// with nil for null values
func listingValues(l *models.Listing) []any {
	return []any{
		l.ID,
		l.Ciudad,
		nullableString(l.BarrioStd),
		nullableString(l.RoomType),
		nullableFloat(l.Accommodates),
		nullableFloat(l.BathroomsNum),
		nullableFloat(l.Price),
		nullableFloat(l.PricePerPerson),
		nullableInt(l.AmenitiesCount),
		nullableFloat(l.Latitude),
		nullableFloat(l.Longitude),
		nullableFloat(l.NumberOfReviewsLTM),
		nullableFloat(l.ReviewScoresRating),
		nullableString(l.HostIsSuperhost),
	}
}

// listingRecord renders the listing as CSV cells; nulls are empty
func listingRecord(l *models.Listing) []string {
	values := listingValues(l)
	rec := make([]string, len(values))
	for i, v := range values {
		switch x := v.(type) {
		case nil:
			rec[i] = ""
		case string:
			rec[i] = x
		case int64:
			rec[i] = strconv.FormatInt(x, 10)
		case int:
			rec[i] = strconv.Itoa(x)
		case float64:
			rec[i] = strconv.FormatFloat(x, 'f', -1, 64)
		}
	}
	return rec
}

func nullableString(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullableFloat(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullableInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
