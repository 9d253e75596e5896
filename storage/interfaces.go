package storage

import (
	"context"

	"restaurant-sync/models"
)

// RestaurantWriter is the interface any restaurant storage backend must satisfy.
// UpsertBatch must insert-or-update every record keyed on NameAddress in one
// atomic statement; keys inside one batch are unique.
type RestaurantWriter interface {
	UpsertBatch(ctx context.Context, batch []*models.Restaurant) error
	Close() error
}

// RestaurantStore is a RestaurantWriter that can also create its schema and read rows back.
type RestaurantStore interface {
	RestaurantWriter
	Migrate(ctx context.Context) error
	FetchAll(ctx context.Context) ([]*models.Restaurant, error)
	Count(ctx context.Context) (int, error)
}

// RawRecordWriter is the interface for persisting unprocessed provider rows.
type RawRecordWriter interface {
	WriteRaw(records []*models.RawRecord) error
	Close() error
}

// StatusStore persists the outcome of the last sync attempt per data-set.
type StatusStore interface {
	SaveStatus(ctx context.Context, status *models.SyncStatus) error
	// LoadStatus returns nil, nil when the data-set has never been synced.
	LoadStatus(ctx context.Context, dataset string) (*models.SyncStatus, error)
	Close() error
}

var (
	_ RestaurantStore = (*SQLWriter)(nil)
	_ RestaurantStore = (*PgxWriter)(nil)
	_ RawRecordWriter = (*CSVWriter)(nil)
	_ StatusStore     = (*RedisStatusStore)(nil)
	_ StatusStore     = (*MemoryStatusStore)(nil)
)
