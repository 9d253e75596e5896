package storage

import (
	"context"
	"fmt"

	"restaurant-sync/models"
	"restaurant-sync/utils"
)

// DefaultBatchSize is the number of rows written per upsert statement.
const DefaultBatchSize = 1000

// PersistenceError reports the batch that failed to write. Batches before it
// were committed; batches after it were not attempted.
type PersistenceError struct {
	Batch  int // 1-based
	Offset int
	Size   int
	Err    error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist batch %d (rows %d-%d): %v", e.Batch, e.Offset, e.Offset+e.Size-1, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// BulkResult summarises a successful Upsert.
type BulkResult struct {
	Batches int
	Rows    int
}

// BulkUpserter splits records into fixed-size batches and writes them in order.
type BulkUpserter struct {
	writer    RestaurantWriter
	batchSize int
	logger    *utils.Logger
}

// NewBulkUpserter wraps writer. A batchSize below 1 falls back to DefaultBatchSize.
func NewBulkUpserter(writer RestaurantWriter, batchSize int, logger *utils.Logger) *BulkUpserter {
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}
	return &BulkUpserter{writer: writer, batchSize: batchSize, logger: logger}
}

// BatchSize returns the configured batch size.
func (b *BulkUpserter) BatchSize() int { return b.batchSize }

// Upsert writes records batch by batch and stops at the first failing batch.
// Keys must already be unique across records.
func (b *BulkUpserter) Upsert(ctx context.Context, records []*models.Restaurant) (BulkResult, error) {
	var res BulkResult
	for i, batch := range SplitBatches(records, b.batchSize) {
		if err := ctx.Err(); err != nil {
			return res, &PersistenceError{Batch: i + 1, Offset: i * b.batchSize, Size: len(batch), Err: err}
		}
		if err := b.writer.UpsertBatch(ctx, batch); err != nil {
			return res, &PersistenceError{Batch: i + 1, Offset: i * b.batchSize, Size: len(batch), Err: err}
		}
		res.Batches++
		res.Rows += len(batch)
		b.logger.Debug("[storage] upserted batch %d (%d rows)", i+1, len(batch))
	}
	return res, nil
}

// SplitBatches cuts records into consecutive slices of at most size elements.
func SplitBatches(records []*models.Restaurant, size int) [][]*models.Restaurant {
	if size < 1 {
		size = DefaultBatchSize
	}
	batches := make([][]*models.Restaurant, 0, (len(records)+size-1)/size)
	for i := 0; i < len(records); i += size {
		end := i + size
		if end > len(records) {
			end = len(records)
		}
		batches = append(batches, records[i:end])
	}
	return batches
}
