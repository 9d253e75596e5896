package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"restaurant-sync/models"
	"restaurant-sync/utils"
)

// PgxWriter persists restaurants to PostgreSQL through a pgx connection pool.
type PgxWriter struct {
	pool *pgxpool.Pool
}

// PgxPoolOptions tunes the connection pool. Zero values keep pgx defaults.
type PgxPoolOptions struct {
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

// NewPgxWriter builds a pool for connURL, waits for the server, migrates the
// schema and returns a ready-to-use PgxWriter.
func NewPgxWriter(ctx context.Context, connURL string, opts PgxPoolOptions, retry *utils.RetryConfig) (*PgxWriter, error) {
	poolConfig, err := pgxpool.ParseConfig(connURL)
	if err != nil {
		return nil, fmt.Errorf("pgx: parse connection string: %w", err)
	}
	if opts.MaxConns > 0 {
		poolConfig.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		poolConfig.MinConns = opts.MinConns
	}
	if opts.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = opts.MaxConnLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("pgx: create pool: %w", err)
	}

	if retry == nil {
		retry = &utils.RetryConfig{MaxAttempts: 1}
	}
	if err := retry.Do(ctx, "pgx ping", func() error { return pool.Ping(ctx) }); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pgx: %w", err)
	}

	w := &PgxWriter{pool: pool}
	if err := w.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return w, nil
}

// Migrate creates the restaurant table and its indexes if they do not exist.
func (w *PgxWriter) Migrate(ctx context.Context) error {
	if _, err := w.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("pgx: migrate: %w", err)
	}
	return nil
}

// UpsertBatch writes the batch in one INSERT ... ON CONFLICT statement.
func (w *PgxWriter) UpsertBatch(ctx context.Context, batch []*models.Restaurant) error {
	if len(batch) == 0 {
		return nil
	}

	query, args := buildUpsertQuery(batch, dollarPlaceholder)
	if _, err := w.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("pgx: upsert %d rows: %w", len(batch), err)
	}
	return nil
}

// FetchAll retrieves all stored restaurants in insertion order.
func (w *PgxWriter) FetchAll(ctx context.Context) ([]*models.Restaurant, error) {
	rows, err := w.pool.Query(ctx, selectAllQuery)
	if err != nil {
		return nil, fmt.Errorf("pgx: fetch all: %w", err)
	}
	defer rows.Close()

	var restaurants []*models.Restaurant
	for rows.Next() {
		r, err := scanRestaurant(rows)
		if err != nil {
			return nil, fmt.Errorf("pgx: scan row: %w", err)
		}
		restaurants = append(restaurants, r)
	}
	return restaurants, rows.Err()
}

// Count returns the number of stored restaurants.
func (w *PgxWriter) Count(ctx context.Context) (int, error) {
	var n int
	if err := w.pool.QueryRow(ctx, countQuery).Scan(&n); err != nil {
		return 0, fmt.Errorf("pgx: count: %w", err)
	}
	return n, nil
}

func (w *PgxWriter) Close() error {
	w.pool.Close()
	return nil
}
