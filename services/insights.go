package services

import (
	"math"
	"sort"
	"strings"

	"airbnb-insights/models"
	"airbnb-insights/utils"
)

const defaultTopBarrios = 10

// InsightService computes analytics from the consolidated dataset
type InsightService struct {
	logger *utils.Logger
	topK   int
}

// NewInsightService creates a new InsightService
func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger, topK: defaultTopBarrios}
}

// Generate computes global and per-city KPIs. Means skip null values.
func (s *InsightService) Generate(ds *models.Dataset) *models.InsightReport {
	report := &models.InsightReport{}
	if ds.Empty() {
		s.logger.Warn("No listings to generate insights from")
		return report
	}

	report.TotalListings = ds.Len()
	report.AveragePrice = meanOf(ds.Listings, func(l *models.Listing) *float64 { return l.Price })
	report.AverageRating = meanOf(ds.Listings, func(l *models.Listing) *float64 { return l.ReviewScoresRating })
	report.AveragePricePerHead = meanOf(ds.Listings, func(l *models.Listing) *float64 { return l.PricePerPerson })

	superhosts := 0
	for _, l := range ds.Listings {
		if l.HostIsSuperhost != nil && strings.EqualFold(strings.TrimSpace(*l.HostIsSuperhost), "t") {
			superhosts++
		}
	}
	pct := 100 * float64(superhosts) / float64(ds.Len())
	report.SuperhostPct = &pct

	groups := ds.ByCity()
	for _, city := range ds.Cities() {
		listings := groups[city]
		report.Cities = append(report.Cities, models.CityKPI{
			City:            city,
			Listings:        len(listings),
			Share:           float64(len(listings)) / float64(ds.Len()),
			AveragePrice:    meanOf(listings, func(l *models.Listing) *float64 { return l.Price }),
			AverageRating:   meanOf(listings, func(l *models.Listing) *float64 { return l.ReviewScoresRating }),
			TopBarrios:      TopCategories(listings, func(l *models.Listing) *string { return l.BarrioStd }, s.topK),
			RoomTypes:       TopCategories(listings, func(l *models.Listing) *string { return l.RoomType }, 0),
			Competitiveness: Competitiveness(listings),
		})
	}

	s.logger.Debug("Generated insights for %d cities", len(report.Cities))
	return report
}

// Competitiveness scores a set of listings on professionalism (share of
// superhosts), flexibility, amenities and price variation, each on 0-100,
// and combines them into a weighted index
func Competitiveness(listings []*models.Listing) models.Competitiveness {
	var c models.Competitiveness
	if len(listings) == 0 {
		return c
	}

	superhosts := 0
	for _, l := range listings {
		if l.HostIsSuperhost != nil && *l.HostIsSuperhost == "t" {
			superhosts++
		}
	}
	c.Professionalism = 100 * float64(superhosts) / float64(len(listings))

	var amenities []float64
	for _, l := range listings {
		if l.AmenitiesCount != nil {
			amenities = append(amenities, float64(*l.AmenitiesCount))
		}
	}
	if len(amenities) > 0 {
		c.Amenities = math.Min(mean(amenities)/15*100, 100)
	}

	prices := pricesOf(listings)
	if len(prices) > 1 {
		if m := mean(prices); m != 0 {
			cv := sampleStdDev(prices) / m * 100
			c.PriceVariation = math.Min(cv/50*100, 100)
		}
	}

	c.Index = c.Professionalism*0.4 + c.Flexibility*0.3 + c.Amenities*0.2 + c.PriceVariation*0.1
	return c
}

// TopCategories counts non-null category values, most frequent first with
// ties broken by label. limit <= 0 returns every category.
func TopCategories(listings []*models.Listing, field func(*models.Listing) *string, limit int) []models.CategoryCount {
	counts := make(map[string]int)
	for _, l := range listings {
		if v := field(l); v != nil {
			counts[*v]++
		}
	}
	out := make([]models.CategoryCount, 0, len(counts))
	for label, n := range counts {
		out = append(out, models.CategoryCount{Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func meanOf(listings []*models.Listing, field func(*models.Listing) *float64) *float64 {
	var values []float64
	for _, l := range listings {
		if v := field(l); v != nil {
			values = append(values, *v)
		}
	}
	if len(values) == 0 {
		return nil
	}
	m := mean(values)
	return &m
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func sampleStdDev(values []float64) float64 {
	m := mean(values)
	var ss float64
	for _, v := range values {
		ss += (v - m) * (v - m)
	}
	return math.Sqrt(ss / float64(len(values)-1))
}
