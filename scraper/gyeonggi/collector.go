package gyeonggi

import (
	"context"
	"fmt"
	"time"

	"restaurant-sync/models"
	"restaurant-sync/utils"
)

// maxTotalCount bounds list_total_count; larger values are treated as a corrupt head.
const maxTotalCount = 10_000_000

// Collector walks every page of a data-set through a PageFetcher.
type Collector struct {
	fetcher   PageFetcher
	logger    *utils.Logger
	pageDelay time.Duration
}

// NewCollector creates a Collector. pageDelay is slept between consecutive pages.
func NewCollector(fetcher PageFetcher, logger *utils.Logger, pageDelay time.Duration) *Collector {
	return &Collector{fetcher: fetcher, logger: logger, pageDelay: pageDelay}
}

// CollectAll fetches page 1 to learn the total count, then pages 2..totalPages
// in order. Rows are returned in page order. Any failing page aborts the
// data-set and no rows are returned.
func (c *Collector) CollectAll(ctx context.Context, dataset, apiKey string, pageSize int) ([]*models.RawRecord, error) {
	if pageSize <= 0 {
		return nil, fmt.Errorf("collect %s: page size must be positive, got %d", dataset, pageSize)
	}

	first, err := c.fetcher.FetchPage(ctx, dataset, apiKey, 1, pageSize)
	if err != nil {
		return nil, err
	}
	if !first.HasTotal {
		return nil, &FetchError{Dataset: dataset, Page: 1, Err: fmt.Errorf("head section has no list_total_count")}
	}
	if first.TotalCount < 0 || first.TotalCount > maxTotalCount {
		return nil, &FetchError{Dataset: dataset, Page: 1, Err: fmt.Errorf("list_total_count %d out of range [0, %d]", first.TotalCount, maxTotalCount)}
	}

	totalPages := TotalPages(first.TotalCount, pageSize)
	c.logger.Info("[collector] %s: %d records over %d pages", dataset, first.TotalCount, totalPages)

	rows := make([]*models.RawRecord, 0, len(first.Rows))
	rows = append(rows, first.Rows...)

	for page := 2; page <= totalPages; page++ {
		if err := utils.Sleep(ctx, c.pageDelay); err != nil {
			return nil, &FetchError{Dataset: dataset, Page: page, Err: err}
		}

		next, err := c.fetcher.FetchPage(ctx, dataset, apiKey, page, pageSize)
		if err != nil {
			return nil, err
		}
		rows = append(rows, next.Rows...)
		c.logger.Debug("[collector] %s: page %d/%d done, %d rows so far", dataset, page, totalPages, len(rows))
	}

	return rows, nil
}

// TotalPages is ceil(totalCount / pageSize).
func TotalPages(totalCount, pageSize int) int {
	if totalCount <= 0 || pageSize <= 0 {
		return 0
	}
	return (totalCount + pageSize - 1) / pageSize
}
