package services

import (
	"errors"
	"fmt"
	"sort"

	"airbnb-insights/config"
	"airbnb-insights/models"

	"github.com/shopspring/decimal"
)

// Monthly operating expense bounds accepted by the estimator.
const (
	MinMonthlyExpenses = 200
	MaxMonthlyExpenses = 3000
)

// ErrInvalidExpenses is returned for monthly expenses outside the accepted range
var ErrInvalidExpenses = errors.New("monthly expenses out of range")

var (
	daysPerYear   = decimal.NewFromInt(365)
	monthsPerYear = decimal.NewFromInt(12)
	setupMonths   = decimal.NewFromInt(8)
	hundred       = decimal.NewFromInt(100)
)

// MarketEstimator estimates yearly returns of operating one listing per city
type MarketEstimator struct {
	market *config.MarketConfig
}

// NewMarketEstimator creates an estimator from market assumptions
func NewMarketEstimator(market *config.MarketConfig) *MarketEstimator {
	if market == nil {
		market = config.DefaultMarket()
	}
	return &MarketEstimator{market: market}
}

// Estimate computes one ROI row per city present in ds, highest ROI first.
// The nightly price is the city's mean price; cities without prices use 0.
func (e *MarketEstimator) Estimate(ds *models.Dataset, monthlyExpenses float64) ([]models.CityROI, error) {
	if monthlyExpenses < MinMonthlyExpenses || monthlyExpenses > MaxMonthlyExpenses {
		return nil, fmt.Errorf("%w: %.2f not within [%d, %d]",
			ErrInvalidExpenses, monthlyExpenses, MinMonthlyExpenses, MaxMonthlyExpenses)
	}
	if ds.Empty() {
		return nil, nil
	}

	expenses := decimal.NewFromFloat(monthlyExpenses)
	fees := decimal.NewFromFloat(e.market.PlatformFee).Add(decimal.NewFromFloat(e.market.CleaningShare))
	groups := ds.ByCity()

	rows := make([]models.CityROI, 0, len(groups))
	for _, city := range ds.Cities() {
		price := decimal.Zero
		if m := meanOf(groups[city], func(l *models.Listing) *float64 { return l.Price }); m != nil {
			price = decimal.NewFromFloat(*m)
		}

		occupancy := decimal.NewFromFloat(e.market.Occupancy(city))
		days := occupancy.Mul(daysPerYear)
		gross := price.Mul(days)
		net := gross.Sub(gross.Mul(fees))
		profit := net.Sub(expenses.Mul(monthsPerYear))
		investment := decimal.NewFromFloat(e.market.SetupCost(city)).Add(expenses.Mul(setupMonths))

		roi := decimal.Zero
		if investment.IsPositive() {
			roi = profit.Div(investment).Mul(hundred)
		}

		rows = append(rows, models.CityROI{
			City:              city,
			AveragePrice:      price,
			OccupancyPct:      occupancy.Mul(hundred),
			OccupiedDays:      days,
			GrossRevenue:      gross,
			NetRevenue:        net,
			InitialInvestment: investment,
			NetProfit:         profit,
			ROI:               roi,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].ROI.GreaterThan(rows[j].ROI)
	})
	return rows, nil
}
