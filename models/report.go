package models

import "github.com/shopspring/decimal"

// InsightReport holds computed analytics from the consolidated dataset
type InsightReport struct {
	TotalListings       int
	AveragePrice        *float64
	AverageRating       *float64
	AveragePricePerHead *float64
	SuperhostPct        *float64 // nil for an empty dataset
	Cities              []CityKPI
}

// CityKPI holds per-city descriptive metrics
type CityKPI struct {
	City            string
	Listings        int
	Share           float64 // fraction of all listings
	AveragePrice    *float64
	AverageRating   *float64
	TopBarrios      []CategoryCount
	RoomTypes       []CategoryCount
	Competitiveness Competitiveness
}

// CategoryCount is a category label with its frequency
type CategoryCount struct {
	Label string
	Count int
}

// Competitiveness scores a market on a 0-100 scale per dimension
type Competitiveness struct {
	Professionalism float64 // % superhosts
	Flexibility     float64 // % instant bookable; always 0, not in the canonical schema
	Amenities       float64
	PriceVariation  float64
	Index           float64
}

// CityROI is a yearly return estimate for operating one listing in a city
type CityROI struct {
	City              string
	AveragePrice      decimal.Decimal
	OccupancyPct      decimal.Decimal
	OccupiedDays      decimal.Decimal
	GrossRevenue      decimal.Decimal
	NetRevenue        decimal.Decimal
	InitialInvestment decimal.Decimal
	NetProfit         decimal.Decimal
	ROI               decimal.Decimal // percent
}
