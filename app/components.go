package app

import (
	"context"
	"fmt"
	"time"

	"restaurant-sync/config"
	"restaurant-sync/observability"
	"restaurant-sync/scraper/gyeonggi"
	"restaurant-sync/services"
	"restaurant-sync/storage"
	"restaurant-sync/utils"
)

// components is everything a sync run needs, built once per command.
type components struct {
	cfg     *config.Config
	logger  *utils.Logger
	store   storage.RestaurantStore
	status  storage.StatusStore
	metrics *observability.Metrics
	syncer  *services.Syncer
}

// loadConfig reads configuration and builds the logger for a command.
func loadConfig(opts *rootOptions) (*config.Config, *utils.Logger, error) {
	var files []string
	if opts.envFile != "" {
		files = append(files, opts.envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return nil, nil, err
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	return cfg, utils.NewLogger(cfg.LogLevel), nil
}

func buildComponents(ctx context.Context, cfg *config.Config, logger *utils.Logger) (*components, error) {
	store, err := storage.OpenRestaurantStore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open restaurant store: %w", err)
	}

	status, err := storage.OpenStatusStore(ctx, cfg, logger)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("open status store: %w", err)
	}

	metrics := observability.NewMetrics()
	client := gyeonggi.NewClient(cfg.BaseURL, cfg.RequestTimeout)
	collector := gyeonggi.NewCollector(client, logger, time.Duration(cfg.PageDelayMs)*time.Millisecond)
	bulk := storage.NewBulkUpserter(store, cfg.BatchSize, logger)
	logger.Debugw("pipeline configured",
		"db_driver", cfg.DBDriver,
		"page_size", cfg.PageSize,
		"batch_size", bulk.BatchSize(),
		"max_concurrency", cfg.MaxConcurrency)

	options := []services.SyncerOption{
		services.WithStatusStore(status),
		services.WithMetrics(metrics),
	}
	if cfg.CSVOutputDir != "" {
		options = append(options, services.WithRawDumper(storage.CSVDumper{Dir: cfg.CSVOutputDir}))
	}

	syncer := services.NewSyncer(collector, bulk, services.SyncOptions{
		APIKey:         cfg.APIKey,
		Datasets:       cfg.Datasets,
		PageSize:       cfg.PageSize,
		MaxConcurrency: cfg.MaxConcurrency,
	}, logger, options...)

	return &components{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		status:  status,
		metrics: metrics,
		syncer:  syncer,
	}, nil
}

func (c *components) Close() {
	if err := c.status.Close(); err != nil {
		c.logger.Warn("[app] closing status store: %v", err)
	}
	if err := c.store.Close(); err != nil {
		c.logger.Warn("[app] closing restaurant store: %v", err)
	}
}
