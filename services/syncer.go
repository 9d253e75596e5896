package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"restaurant-sync/models"
	"restaurant-sync/observability"
	"restaurant-sync/storage"
	"restaurant-sync/utils"
)

// RecordCollector fetches every raw record of one data-set, in page order.
type RecordCollector interface {
	CollectAll(ctx context.Context, dataset, apiKey string, pageSize int) ([]*models.RawRecord, error)
}

// Upserter persists deduplicated restaurants.
type Upserter interface {
	Upsert(ctx context.Context, records []*models.Restaurant) (storage.BulkResult, error)
}

// MetricsRecorder receives per data-set counters.
type MetricsRecorder interface {
	ObserveDataset(dataset string, phase models.Phase, elapsed time.Duration)
	AddRecords(dataset, stage string, n int)
}

// RawDumper stores the unprocessed rows of a data-set.
type RawDumper interface {
	Dump(dataset string, records []*models.RawRecord) error
}

// SyncOptions is the run configuration shared by every data-set.
type SyncOptions struct {
	APIKey         string
	Datasets       []string
	PageSize       int
	MaxConcurrency int
}

// Syncer runs collect, normalize, dedupe and upsert for each configured data-set.
// A failing data-set never stops the others.
type Syncer struct {
	collector  RecordCollector
	upserter   Upserter
	normalizer *Normalizer
	opts       SyncOptions
	logger     *utils.Logger

	status  storage.StatusStore
	metrics MetricsRecorder
	dumper  RawDumper
	now     func() time.Time
}

type SyncerOption func(*Syncer)

func WithStatusStore(store storage.StatusStore) SyncerOption {
	return func(s *Syncer) { s.status = store }
}

func WithMetrics(m MetricsRecorder) SyncerOption {
	return func(s *Syncer) { s.metrics = m }
}

// WithRawDumper writes each data-set's raw rows before normalization.
func WithRawDumper(d RawDumper) SyncerOption {
	return func(s *Syncer) { s.dumper = d }
}

func withClock(now func() time.Time) SyncerOption {
	return func(s *Syncer) { s.now = now }
}

func NewSyncer(collector RecordCollector, upserter Upserter, opts SyncOptions, logger *utils.Logger, options ...SyncerOption) *Syncer {
	s := &Syncer{
		collector:  collector,
		upserter:   upserter,
		normalizer: NewNormalizer(logger),
		opts:       opts,
		logger:     logger,
		metrics:    nopMetrics{},
		now:        time.Now,
	}
	for _, o := range options {
		o(s)
	}
	return s
}

// Run syncs every configured data-set and returns the per data-set outcome.
// The error joins the failures of all failed data-sets.
func (s *Syncer) Run(ctx context.Context) (*models.SyncReport, error) {
	runID := uuid.NewString()
	logger := s.logger.With("run_id", runID)

	report := &models.SyncReport{RunID: runID, StartedAt: s.now()}
	results := make([]models.DatasetResult, len(s.opts.Datasets))

	logger.Info("[sync] starting run for %d data-set(s): %v", len(s.opts.Datasets), s.opts.Datasets)

	if s.opts.MaxConcurrency > 1 && len(s.opts.Datasets) > 1 {
		pool := utils.NewWorkerPool(s.opts.MaxConcurrency, 0)
		for i, dataset := range s.opts.Datasets {
			pool.Submit(func() {
				results[i] = s.syncDataset(ctx, runID, logger, dataset)
			})
		}
		pool.Wait()
	} else {
		for i, dataset := range s.opts.Datasets {
			results[i] = s.syncDataset(ctx, runID, logger, dataset)
		}
	}

	report.Results = results
	report.FinishedAt = s.now()

	if err := report.Err(); err != nil {
		logger.Warn("[sync] run finished with %d of %d data-set(s) failed", len(report.Failed()), len(results))
		return report, err
	}
	logger.Infow("Data updated successfully",
		"datasets", len(results),
		"upserted", report.TotalUpserted(),
		"duration", report.FinishedAt.Sub(report.StartedAt).String())
	return report, nil
}

func (s *Syncer) syncDataset(ctx context.Context, runID string, logger *utils.Logger, dataset string) models.DatasetResult {
	logger = logger.With("dataset", dataset)
	start := s.now()
	res := models.DatasetResult{Dataset: dataset, Phase: models.PhaseRunning}

	previous := s.loadStatus(ctx, logger, dataset)
	status := &models.SyncStatus{
		Dataset:     dataset,
		RunID:       runID,
		Phase:       models.PhaseRunning,
		LastAttempt: start,
	}
	if previous != nil {
		status.LastSuccess = previous.LastSuccess
		status.RecordCount = previous.RecordCount
	}
	s.saveStatus(ctx, logger, status)

	err := s.safePipeline(ctx, logger, dataset, &res)
	res.Duration = s.now().Sub(start)

	if err != nil {
		res.Phase = models.PhaseFailed
		res.Err = fmt.Errorf("%s: %w", dataset, err)
		logger.Error("Failed to update data : %v", res.Err)
		status.Message = res.Err.Error()
	} else {
		res.Phase = models.PhaseSuccess
		logger.Info("[sync] %s: fetched %d, dropped %d, duplicates %d, upserted %d in %d batch(es) (%v)",
			dataset, res.Fetched, res.Dropped, res.Duplicates, res.Upserted, res.Batches, res.Duration.Round(time.Millisecond))
		finished := s.now()
		status.LastSuccess = &finished
		status.RecordCount = res.Upserted
		status.Message = "ok"
	}

	status.Phase = res.Phase
	s.saveStatus(ctx, logger, status)
	s.metrics.ObserveDataset(dataset, res.Phase, res.Duration)
	return res
}

// safePipeline runs the pipeline and converts a panic into an error so the
// remaining data-sets still run.
func (s *Syncer) safePipeline(ctx context.Context, logger *utils.Logger, dataset string, res *models.DatasetResult) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return s.runPipeline(ctx, logger, dataset, res)
}

// runPipeline fills res as it goes so partial counts survive a failure.
func (s *Syncer) runPipeline(ctx context.Context, logger *utils.Logger, dataset string, res *models.DatasetResult) error {
	raw, err := s.collector.CollectAll(ctx, dataset, s.opts.APIKey, s.opts.PageSize)
	if err != nil {
		return err
	}
	res.Fetched = len(raw)
	s.metrics.AddRecords(dataset, observability.StageFetched, len(raw))

	if s.dumper != nil {
		if err := s.dumper.Dump(dataset, raw); err != nil {
			logger.Warn("[sync] %s: raw dump failed: %v", dataset, err)
		}
	}

	normalized := s.normalizer.NormalizeAll(dataset, raw)
	res.Dropped = len(raw) - len(normalized)
	s.metrics.AddRecords(dataset, observability.StageDropped, res.Dropped)

	unique := Dedupe(normalized)
	res.Duplicates = len(normalized) - len(unique)
	res.ByCounty = CountByCounty(unique)
	s.metrics.AddRecords(dataset, observability.StageDuplicate, res.Duplicates)

	bulk, err := s.upserter.Upsert(ctx, unique)
	res.Upserted = bulk.Rows
	res.Batches = bulk.Batches
	s.metrics.AddRecords(dataset, observability.StageUpserted, bulk.Rows)
	return err
}

func (s *Syncer) loadStatus(ctx context.Context, logger *utils.Logger, dataset string) *models.SyncStatus {
	if s.status == nil {
		return nil
	}
	status, err := s.status.LoadStatus(ctx, dataset)
	if err != nil {
		logger.Warn("[sync] %s: load status: %v", dataset, err)
		return nil
	}
	return status
}

func (s *Syncer) saveStatus(ctx context.Context, logger *utils.Logger, status *models.SyncStatus) {
	if s.status == nil {
		return
	}
	if err := s.status.SaveStatus(ctx, status); err != nil {
		logger.Warn("[sync] %s: save status: %v", status.Dataset, err)
	}
}

type nopMetrics struct{}

func (nopMetrics) ObserveDataset(string, models.Phase, time.Duration) {}
func (nopMetrics) AddRecords(string, string, int) {}
