package services

import (
	"math"
	"sort"

	"airbnb-insights/models"
)

// Outlier trimming heuristics, kept as literal constants.
const (
	MinPricedRowsForTrim = 50
	LowerPriceQuantile   = 0.01
	UpperPriceQuantile   = 0.99
)

// TrimPriceOutliers drops, per city, listings whose price lies outside the
// [p1, p99] band of that city's prices. Cities with fewer than
// MinPricedRowsForTrim priced listings are returned untouched, and listings
// without a price are always kept. Groups come out in city-name order.
func TrimPriceOutliers(listings []*models.Listing) []*models.Listing {
	groups := make(map[string][]*models.Listing)
	var cities []string
	for _, l := range listings {
		if _, ok := groups[l.Ciudad]; !ok {
			cities = append(cities, l.Ciudad)
		}
		groups[l.Ciudad] = append(groups[l.Ciudad], l)
	}
	sort.Strings(cities)

	out := make([]*models.Listing, 0, len(listings))
	for _, city := range cities {
		group := groups[city]
		prices := pricesOf(group)
		if len(prices) < MinPricedRowsForTrim {
			out = append(out, group...)
			continue
		}

		sort.Float64s(prices)
		low := Quantile(prices, LowerPriceQuantile)
		high := Quantile(prices, UpperPriceQuantile)
		for _, l := range group {
			if l.Price == nil || (*l.Price >= low && *l.Price <= high) {
				out = append(out, l)
			}
		}
	}
	return out
}

// Quantile returns the q-th quantile of sorted values using linear
// interpolation between the closest ranks. sorted must be ascending and
// non-empty.
func Quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	if lo >= n-1 {
		return sorted[n-1]
	}
	t := pos - float64(lo)
	a, b := sorted[lo], sorted[lo+1]
	diff := b - a
	// Interpolate from the nearer end to stay monotonic in t.
	if t >= 0.5 {
		return b - diff*(1-t)
	}
	return a + diff*t
}

func pricesOf(listings []*models.Listing) []float64 {
	prices := make([]float64, 0, len(listings))
	for _, l := range listings {
		if l.Price != nil {
			prices = append(prices, *l.Price)
		}
	}
	return prices
}
