package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Market validation errors.
var (
	ErrInvalidOccupancy  = errors.New("occupancy must be within (0, 1]")
	ErrInvalidSetupCost  = errors.New("setup_cost must be non-negative")
	ErrInvalidFeeShare   = errors.New("platform_fee and cleaning_share must be within [0, 1)")
	ErrMissingMarketCity = errors.New("city entry needs a name")
)

// MarketConfig holds the market assumptions used for revenue estimates
type MarketConfig struct {
	DefaultOccupancy float64      `yaml:"default_occupancy"`
	DefaultSetupCost float64      `yaml:"default_setup_cost"`
	PlatformFee      float64      `yaml:"platform_fee"`
	CleaningShare    float64      `yaml:"cleaning_share"`
	Cities           []CityMarket `yaml:"cities"`
}

// CityMarket holds per-city occupancy and initial setup cost
type CityMarket struct {
	City      string  `yaml:"city"`
	Occupancy float64 `yaml:"occupancy"`
	SetupCost float64 `yaml:"setup_cost"`
}

// DefaultMarket returns the reference European market figures
func DefaultMarket() *MarketConfig {
	return &MarketConfig{
		DefaultOccupancy: 0.65,
		DefaultSetupCost: 7000,
		PlatformFee:      0.15,
		CleaningShare:    0.05,
		Cities: []CityMarket{
			{City: "Barcelona", Occupancy: 0.68, SetupCost: 8000},
			{City: "Amsterdam", Occupancy: 0.62, SetupCost: 12000},
			{City: "Milan", Occupancy: 0.65, SetupCost: 7000},
			{City: "Atenas", Occupancy: 0.70, SetupCost: 5000},
			{City: "Athens", Occupancy: 0.70, SetupCost: 5000},
			{City: "Madrid", Occupancy: 0.67, SetupCost: 6500},
		},
	}
}

// LoadMarket reads market assumptions from a YAML file.
// An empty path returns DefaultMarket.
func LoadMarket(path string) (*MarketConfig, error) {
	if path == "" {
		return DefaultMarket(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read market file: %w", err)
	}

	cfg := DefaultMarket()
	cfg.Cities = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse market YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("market validation failed: %w", err)
	}
	return cfg, nil
}

// Validate validates the market assumptions
func (m *MarketConfig) Validate() error {
	if m.DefaultOccupancy <= 0 || m.DefaultOccupancy > 1 {
		return fmt.Errorf("%w: default_occupancy", ErrInvalidOccupancy)
	}
	if m.DefaultSetupCost < 0 {
		return fmt.Errorf("%w: default_setup_cost", ErrInvalidSetupCost)
	}
	if m.PlatformFee < 0 || m.PlatformFee >= 1 || m.CleaningShare < 0 || m.CleaningShare >= 1 {
		return ErrInvalidFeeShare
	}
	for i, c := range m.Cities {
		if c.City == "" {
			return fmt.Errorf("%w: cities[%d]", ErrMissingMarketCity, i)
		}
		if c.Occupancy <= 0 || c.Occupancy > 1 {
			return fmt.Errorf("%w: cities[%d]", ErrInvalidOccupancy, i)
		}
		if c.SetupCost < 0 {
			return fmt.Errorf("%w: cities[%d]", ErrInvalidSetupCost, i)
		}
	}
	return nil
}

// Occupancy returns the occupancy rate for a city, or the default
func (m *MarketConfig) Occupancy(city string) float64 {
	for _, c := range m.Cities {
		if c.City == city {
			return c.Occupancy
		}
	}
	return m.DefaultOccupancy
}

// SetupCost returns the initial setup cost for a city, or the default
func (m *MarketConfig) SetupCost(city string) float64 {
	for _, c := range m.Cities {
		if c.City == city {
			return c.SetupCost
		}
	}
	return m.DefaultSetupCost
}
