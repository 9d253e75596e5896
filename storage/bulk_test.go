package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-sync/models"
	"restaurant-sync/utils"
)

type recordingWriter struct {
	batches [][]*models.Restaurant
	failOn  int // 1-based batch number, 0 never fails
}

func (w *recordingWriter) UpsertBatch(_ context.Context, batch []*models.Restaurant) error {
	if w.failOn == len(w.batches)+1 {
		return errors.New("connection reset")
	}
	w.batches = append(w.batches, batch)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func makeRestaurants(n int) []*models.Restaurant {
	out := make([]*models.Restaurant, n)
	for i := range out {
		out[i] = &models.Restaurant{NameAddress: fmt.Sprintf("key-%04d", i), Status: models.StatusUnconfirmed}
	}
	return out
}

func TestBulkUpsertSplitsInOrder(t *testing.T) {
	w := &recordingWriter{}
	b := NewBulkUpserter(w, 1000, utils.NewNopLogger())

	res, err := b.Upsert(context.Background(), makeRestaurants(2500))
	require.NoError(t, err)
	assert.Equal(t, BulkResult{Batches: 3, Rows: 2500}, res)

	require.Len(t, w.batches, 3)
	assert.Len(t, w.batches[0], 1000)
	assert.Len(t, w.batches[1], 1000)
	assert.Len(t, w.batches[2], 500)
	assert.Equal(t, "key-0000", w.batches[0][0].NameAddress)
	assert.Equal(t, "key-1000", w.batches[1][0].NameAddress)
	assert.Equal(t, "key-2499", w.batches[2][499].NameAddress)
}

func TestBulkUpsertEmpty(t *testing.T) {
	w := &recordingWriter{}
	res, err := NewBulkUpserter(w, 1000, utils.NewNopLogger()).Upsert(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, res.Batches)
	assert.Empty(t, w.batches)
}

func TestBulkUpsertStopsAtFailingBatch(t *testing.T) {
	w := &recordingWriter{failOn: 2}
	b := NewBulkUpserter(w, 1000, utils.NewNopLogger())

	res, err := b.Upsert(context.Background(), makeRestaurants(2500))
	require.Error(t, err)

	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 2, pe.Batch)
	assert.Equal(t, 1000, pe.Offset)
	assert.Equal(t, 1000, pe.Size)
	assert.EqualError(t, pe.Unwrap(), "connection reset")
	assert.Contains(t, err.Error(), "rows 1000-1999")

	assert.Equal(t, BulkResult{Batches: 1, Rows: 1000}, res)
	assert.Len(t, w.batches, 1, "batches after the failure must not be attempted")
}

func TestBulkUpsertHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := &recordingWriter{}
	_, err := NewBulkUpserter(w, 10, utils.NewNopLogger()).Upsert(ctx, makeRestaurants(5))
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, w.batches)
}

func TestNewBulkUpserterDefaultsBatchSize(t *testing.T) {
	b := NewBulkUpserter(&recordingWriter{}, 0, utils.NewNopLogger())
	assert.Equal(t, DefaultBatchSize, b.BatchSize())
}

func TestSplitBatches(t *testing.T) {
	tests := []struct {
		n, size int
		want    []int
	}{
		{0, 1000, []int{}},
		{1, 1000, []int{1}},
		{1000, 1000, []int{1000}},
		{1001, 1000, []int{1000, 1}},
		{7, 3, []int{3, 3, 1}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d/%d", tt.n, tt.size), func(t *testing.T) {
			batches := SplitBatches(makeRestaurants(tt.n), tt.size)
			sizes := make([]int, 0, len(batches))
			for _, b := range batches {
				sizes = append(sizes, len(b))
			}
			assert.Equal(t, tt.want, sizes)
		})
	}
}
