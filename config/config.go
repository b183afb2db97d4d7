package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

// CitySource maps a city display name to its Google Drive file ID
type CitySource struct {
	City   string
	FileID string
}

// DriveFiles is the fixed set of cities loaded into the dataset, in load order.
// Changing cities means changing this list.
var DriveFiles = []CitySource{
	{City: "Barcelona", FileID: "18yTaNKXzREyh5IdnqEdEBokqU6y4sq1r"},
	{City: "Amsterdam", FileID: "1hwrvXG3gujLl4dle_-7r_wVusRVv-AaC"},
	{City: "Milan", FileID: "16Uv7HNWgdWgzs10s9RJAhQkZtOL545dc"},
	{City: "Atenas", FileID: "1XH1WPvK_VvKGCcN0BlJm830Z2KonnTQ1"},
	{City: "Madrid", FileID: "177x-ptsDj8216O4ikG_EICwmcmQE0epS"},
}

// ErrInvalidConfig wraps every validation failure returned by Load
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all application-level configuration
type Config struct {
	// Logging
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"console" validate:"oneof=console json"`

	// Drive source
	DriveBaseURL   string        `envconfig:"DRIVE_BASE_URL" default:"https://drive.google.com/uc" validate:"required,url"`
	FetchTimeout   time.Duration `envconfig:"FETCH_TIMEOUT" default:"5m" validate:"gte=0"`
	MaxRetries     int           `envconfig:"MAX_RETRIES" default:"1" validate:"min=1,max=10"`
	RateLimitDelay int           `envconfig:"RATE_LIMIT_DELAY_MS" default:"0" validate:"gte=0"` // milliseconds between downloads
	BrowserConfirm bool          `envconfig:"DRIVE_BROWSER_CONFIRM" default:"false"`

	// Shared snapshot cache
	RedisURL    string        `envconfig:"REDIS_URL" validate:"omitempty,url"`
	SnapshotTTL time.Duration `envconfig:"SNAPSHOT_TTL" default:"6h" validate:"gte=0"`

	// Output
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	SQLitePath      string `envconfig:"SQLITE_PATH"`
	CSVFilePath     string `envconfig:"CSV_FILE_PATH" default:"output/listings_clean.csv"`
	RawDumpDir      string `envconfig:"RAW_DUMP_DIR"`
	MetricsTextfile string `envconfig:"METRICS_TEXTFILE"`

	// Market estimates
	MarketFile      string  `envconfig:"MARKET_FILE"`
	MonthlyExpenses float64 `envconfig:"MONTHLY_EXPENSES" default:"800" validate:"gte=200,lte=3000"`
}

// Load reads configuration from environment variables, applying defaults
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// DownloadURL builds the direct-download URL for a Drive file
func (c *Config) DownloadURL(fileID string) string {
	return fmt.Sprintf("%s?export=download&id=%s", c.DriveBaseURL, fileID)
}
