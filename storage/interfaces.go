package storage

import (
	"context"

	"airbnb-insights/models"
)

// RawStorage keeps a copy of raw tables as fetched from the source
type RawStorage interface {
	SaveRaw(city string, table *models.RawTable) error
}

// CleanStorage persists the consolidated canonical dataset
type CleanStorage interface {
	SaveClean(ctx context.Context, listings []*models.Listing) error
	Close() error
}

// SnapshotStore shares a consolidated dataset between processes
type SnapshotStore interface {
	LoadSnapshot(ctx context.Context) (*models.Dataset, bool, error)
	SaveSnapshot(ctx context.Context, ds *models.Dataset) error
	Invalidate(ctx context.Context) error
}
