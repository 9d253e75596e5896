package storage

import (
	"context"
	"fmt"
	"time"

	"restaurant-sync/config"
	"restaurant-sync/utils"
)

// OpenRestaurantStore connects to the backend selected by cfg.DBDriver.
func OpenRestaurantStore(ctx context.Context, cfg *config.Config, logger *utils.Logger) (RestaurantStore, error) {
	retry := &utils.RetryConfig{
		MaxAttempts: cfg.DBConnectRetries,
		BaseDelay:   500 * time.Millisecond,
		Logger:      logger,
	}

	switch cfg.DBDriver {
	case config.DriverPostgres:
		logger.Info("[storage] connecting to PostgreSQL at %s:%s (lib/pq)", cfg.PostgresHost, cfg.PostgresPort)
		w, err := NewPostgresWriter(ctx, cfg.DSN(), retry)
		if err != nil {
			return nil, err
		}
		return w, nil
	case config.DriverPgx:
		logger.Info("[storage] connecting to PostgreSQL at %s:%s (pgx pool)", cfg.PostgresHost, cfg.PostgresPort)
		w, err := NewPgxWriter(ctx, cfg.PgxURL(), PgxPoolOptions{}, retry)
		if err != nil {
			return nil, err
		}
		return w, nil
	case config.DriverSQLite:
		logger.Info("[storage] opening SQLite database %s", cfg.SQLitePath)
		w, err := NewSQLiteWriter(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return w, nil
	default:
		return nil, fmt.Errorf("storage: unsupported driver %q", cfg.DBDriver)
	}
}

// OpenStatusStore returns a Redis-backed store when REDIS_ADDR is set and an
// in-memory one otherwise.
func OpenStatusStore(ctx context.Context, cfg *config.Config, logger *utils.Logger) (StatusStore, error) {
	if cfg.RedisAddr == "" {
		logger.Debug("[storage] REDIS_ADDR not set, keeping sync status in memory")
		return NewMemoryStatusStore(), nil
	}
	logger.Info("[storage] connecting to Redis at %s", cfg.RedisAddr)
	store, err := NewRedisStatusStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, err
	}
	return store, nil
}
