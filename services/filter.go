package services

import "airbnb-insights/models"

// ListingFilter narrows the dataset. Empty slices and nil bounds match
// everything.
type ListingFilter struct {
	Cities   []string
	Barrios  []string
	MinPrice *float64
	MaxPrice *float64
}

// FilterListings returns copies of the listings matching f. Once a price
// bound is set, listings without a price are excluded; likewise a barrio
// filter excludes listings without a barrio.
func FilterListings(ds *models.Dataset, f ListingFilter) *models.Dataset {
	cities := toSet(f.Cities)
	barrios := toSet(f.Barrios)

	out := &models.Dataset{}
	for _, l := range ds.Listings {
		if cities != nil && !cities[l.Ciudad] {
			continue
		}
		if barrios != nil && (l.BarrioStd == nil || !barrios[*l.BarrioStd]) {
			continue
		}
		if f.MinPrice != nil || f.MaxPrice != nil {
			if l.Price == nil {
				continue
			}
			if f.MinPrice != nil && *l.Price < *f.MinPrice {
				continue
			}
			if f.MaxPrice != nil && *l.Price > *f.MaxPrice {
				continue
			}
		}
		out.Listings = append(out.Listings, l.Clone())
	}
	return out
}

func toSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
