package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"airbnb-insights/config"
	"airbnb-insights/metrics"
	"airbnb-insights/models"
	"airbnb-insights/storage"
	"airbnb-insights/utils"
)

// TotalFailureWarning is returned when no city could be fetched
const TotalFailureWarning = "no city data could be loaded from Google Drive"

// RawFetcher downloads the raw listings table of one city
type RawFetcher interface {
	Fetch(ctx context.Context, source config.CitySource) (*models.RawTable, error)
}

// DatasetLoader builds the consolidated dataset once and serves it from
// memory until Reset is called
type DatasetLoader struct {
	sources   []config.CitySource
	fetcher   RawFetcher
	cleaner   *DataCleaner
	logger    *utils.Logger
	metrics   *metrics.LoadMetrics
	snapshots storage.SnapshotStore
	rawStore  storage.RawStorage

	mu       sync.Mutex
	loaded   bool
	dataset  *models.Dataset
	warnings []string
}

// LoaderOption customizes a DatasetLoader
type LoaderOption func(*DatasetLoader)

// WithSnapshotStore adds a shared cache tier consulted before fetching
func WithSnapshotStore(s storage.SnapshotStore) LoaderOption {
	return func(d *DatasetLoader) { d.snapshots = s }
}

// WithRawStorage keeps a copy of every fetched raw table
func WithRawStorage(s storage.RawStorage) LoaderOption {
	return func(d *DatasetLoader) { d.rawStore = s }
}

// WithMetrics records fetch and cleaning metrics
func WithMetrics(m *metrics.LoadMetrics) LoaderOption {
	return func(d *DatasetLoader) { d.metrics = m }
}

// NewDatasetLoader creates a loader for the given city sources
func NewDatasetLoader(sources []config.CitySource, fetcher RawFetcher, cleaner *DataCleaner, logger *utils.Logger, opts ...LoaderOption) *DatasetLoader {
	d := &DatasetLoader{
		sources: sources,
		fetcher: fetcher,
		cleaner: cleaner,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Load returns the consolidated dataset and the warnings collected while
// building it. The first call fetches every city; later calls return the
// cached result. The dataset may be empty and must not be modified.
func (d *DatasetLoader) Load(ctx context.Context) (*models.Dataset, []string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.loaded {
		d.metrics.IncCacheHit("memory")
		return d.dataset, append([]string(nil), d.warnings...)
	}

	if ds, ok := d.fromSnapshot(ctx); ok {
		d.dataset, d.warnings, d.loaded = ds, nil, true
		return ds, nil
	}

	ds, warnings := d.build(ctx)
	d.dataset, d.warnings, d.loaded = ds, warnings, true

	if d.snapshots != nil && len(warnings) == 0 {
		if err := d.snapshots.SaveSnapshot(ctx, ds); err != nil {
			d.logger.Warn("Failed to store dataset snapshot: %v", err)
		}
	}
	return ds, append([]string(nil), warnings...)
}

// Reset drops the cached dataset, including any shared snapshot, so the
// next Load fetches again
func (d *DatasetLoader) Reset(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.loaded = false
	d.dataset = nil
	d.warnings = nil
	if d.snapshots != nil {
		if err := d.snapshots.Invalidate(ctx); err != nil {
			d.logger.Warn("Failed to invalidate dataset snapshot: %v", err)
		}
	}
}

func (d *DatasetLoader) fromSnapshot(ctx context.Context) (*models.Dataset, bool) {
	if d.snapshots == nil {
		return nil, false
	}
	ds, ok, err := d.snapshots.LoadSnapshot(ctx)
	if err != nil {
		d.logger.Warn("Snapshot cache unavailable, fetching from source: %v", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	d.metrics.IncCacheHit("snapshot")
	d.logger.Info("Loaded %d listings from snapshot cache", ds.Len())
	return ds, true
}

func (d *DatasetLoader) build(ctx context.Context) (*models.Dataset, []string) {
	var (
		parts    [][]*models.Listing
		warnings []string
		total    int
	)

	for _, src := range d.sources {
		log := d.logger.With("city", src.City)
		start := time.Now()
		raw, err := d.fetcher.Fetch(ctx, src)
		d.metrics.ObserveFetch(src.City, time.Since(start))
		if err != nil {
			d.metrics.IncFetchFailure(src.City)
			log.Error("Fetch failed: %v", err)
			warnings = append(warnings, fmt.Sprintf("failed to load %s: %v", src.City, err))
			continue
		}

		if d.rawStore != nil {
			if err := d.rawStore.SaveRaw(src.City, raw); err != nil {
				log.Warn("Failed to keep raw copy: %v", err)
			}
		}

		part := d.cleaner.Standardize(raw, src.City)
		d.metrics.SetStandardized(src.City, len(part))
		log.Info("Standardized %d rows", len(part))
		parts = append(parts, part)
		total += len(part)
	}

	if len(parts) == 0 {
		warnings = append(warnings, TotalFailureWarning)
		return &models.Dataset{}, warnings
	}

	all := make([]*models.Listing, 0, total)
	for _, p := range parts {
		all = append(all, p...)
	}

	deduped := DropDuplicates(all)
	d.metrics.AddDuplicatesDropped(len(all) - len(deduped))

	trimmed := TrimPriceOutliers(deduped)
	ds := &models.Dataset{Listings: trimmed}
	for city, group := range ds.ByCity() {
		d.metrics.SetRetained(city, len(group))
	}
	d.metrics.AddTrimmed(len(deduped) - len(trimmed))

	d.logger.Info("Dataset ready: %d listings (%d duplicates dropped, %d price outliers trimmed, %d warnings)",
		len(trimmed), len(all)-len(deduped), len(deduped)-len(trimmed), len(warnings))
	return ds, warnings
}

// DropDuplicates keeps the first listing of every (ciudad, id) pair
func DropDuplicates(listings []*models.Listing) []*models.Listing {
	tracker := utils.NewKeyTracker()
	out := make([]*models.Listing, 0, len(listings))
	for _, l := range listings {
		if tracker.Add(fmt.Sprintf("%s\x00%d", l.Ciudad, l.ID)) {
			out = append(out, l)
		}
	}
	return out
}
