package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"restaurant-sync/models"
	"restaurant-sync/utils"
)

// dialect captures what differs between the database/sql backends.
type dialect struct {
	name        string
	driver      string
	schema      string
	placeholder func(n int) string
}

var (
	postgresDialect = dialect{name: "postgres", driver: "postgres", schema: postgresSchema, placeholder: dollarPlaceholder}
	sqliteDialect   = dialect{name: "sqlite", driver: "sqlite3", schema: sqliteSchema, placeholder: questionPlaceholder}
)

// SQLWriter persists restaurants through database/sql, either to PostgreSQL
// (lib/pq) or to an embedded SQLite file.
type SQLWriter struct {
	db      *sql.DB
	dialect dialect
}

// NewPostgresWriter opens a connection to PostgreSQL, waits for it to accept
// connections, runs schema migrations, and returns a ready-to-use SQLWriter.
func NewPostgresWriter(ctx context.Context, dsn string, retry *utils.RetryConfig) (*SQLWriter, error) {
	return openSQLWriter(ctx, postgresDialect, dsn, retry)
}

// NewSQLiteWriter opens (or creates) the SQLite database at path and migrates it.
// ":memory:" is accepted for tests.
func NewSQLiteWriter(ctx context.Context, path string) (*SQLWriter, error) {
	w, err := openSQLWriter(ctx, sqliteDialect, path, nil)
	if err != nil {
		return nil, err
	}
	// A single connection keeps ":memory:" databases alive across statements.
	w.db.SetMaxOpenConns(1)
	return w, nil
}

func openSQLWriter(ctx context.Context, d dialect, dsn string, retry *utils.RetryConfig) (*SQLWriter, error) {
	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: open: %w", d.name, err)
	}

	if retry == nil {
		retry = &utils.RetryConfig{MaxAttempts: 1}
	}
	err = retry.Do(ctx, d.name+" ping", func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return db.PingContext(pingCtx)
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", d.name, err)
	}

	w := &SQLWriter{db: db, dialect: d}
	if err := w.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return w, nil
}

// Migrate creates the restaurant table and its indexes if they do not exist.
func (w *SQLWriter) Migrate(ctx context.Context) error {
	if _, err := w.db.ExecContext(ctx, w.dialect.schema); err != nil {
		return fmt.Errorf("%s: migrate: %w", w.dialect.name, err)
	}
	return nil
}

// UpsertBatch writes the batch in one INSERT ... ON CONFLICT statement.
func (w *SQLWriter) UpsertBatch(ctx context.Context, batch []*models.Restaurant) error {
	if len(batch) == 0 {
		return nil
	}

	query, args := buildUpsertQuery(batch, w.dialect.placeholder)
	if _, err := w.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: upsert %d rows: %w", w.dialect.name, len(batch), err)
	}
	return nil
}

// FetchAll retrieves all stored restaurants in insertion order.
func (w *SQLWriter) FetchAll(ctx context.Context) ([]*models.Restaurant, error) {
	rows, err := w.db.QueryContext(ctx, selectAllQuery)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch all: %w", w.dialect.name, err)
	}
	defer rows.Close()

	var restaurants []*models.Restaurant
	for rows.Next() {
		r, err := scanRestaurant(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", w.dialect.name, err)
		}
		restaurants = append(restaurants, r)
	}
	return restaurants, rows.Err()
}

// Count returns the number of stored restaurants.
func (w *SQLWriter) Count(ctx context.Context) (int, error) {
	var n int
	if err := w.db.QueryRowContext(ctx, countQuery).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: count: %w", w.dialect.name, err)
	}
	return n, nil
}

func (w *SQLWriter) Close() error {
	return w.db.Close()
}
