package storage

import (
	"fmt"
	"strings"

	"restaurant-sync/models"
)

const restaurantTable = "restaurant"

// upsertColumns is the insert column order; name_address must stay first
// because it is the conflict target and is never updated.
var upsertColumns = []string{
	"name_address", "county_name", "name", "type", "address", "status", "lat", "lon", "score",
}

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS restaurant (
		id           SERIAL PRIMARY KEY,
		name_address TEXT          NOT NULL UNIQUE,
		county_name  TEXT          NOT NULL DEFAULT '',
		name         TEXT          NOT NULL DEFAULT '',
		type         TEXT          NOT NULL DEFAULT '',
		address      TEXT          NOT NULL,
		status       VARCHAR(50)   NOT NULL DEFAULT 'unconfirmed',
		lat          NUMERIC(11,8) NOT NULL,
		lon          NUMERIC(11,8) NOT NULL,
		score        INTEGER       NOT NULL DEFAULT 0,
		created_at   TIMESTAMPTZ   NOT NULL DEFAULT NOW(),
		updated_at   TIMESTAMPTZ   NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_restaurant_county_name ON restaurant(county_name);
	CREATE INDEX IF NOT EXISTS idx_restaurant_type        ON restaurant(type);
	CREATE INDEX IF NOT EXISTS idx_restaurant_score       ON restaurant(score);
`

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS restaurant (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		name_address TEXT    NOT NULL UNIQUE,
		county_name  TEXT    NOT NULL DEFAULT '',
		name         TEXT    NOT NULL DEFAULT '',
		type         TEXT    NOT NULL DEFAULT '',
		address      TEXT    NOT NULL,
		status       TEXT    NOT NULL DEFAULT 'unconfirmed',
		lat          REAL    NOT NULL,
		lon          REAL    NOT NULL,
		score        INTEGER NOT NULL DEFAULT 0,
		created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_restaurant_county_name ON restaurant(county_name);
	CREATE INDEX IF NOT EXISTS idx_restaurant_type        ON restaurant(type);
	CREATE INDEX IF NOT EXISTS idx_restaurant_score       ON restaurant(score);
`

const selectAllQuery = `
	SELECT name_address, county_name, name, type, address, status, lat, lon, score
	FROM restaurant
	ORDER BY id
`

const countQuery = `SELECT COUNT(*) FROM restaurant`

func dollarPlaceholder(n int) string { return fmt.Sprintf("$%d", n) }

func questionPlaceholder(int) string { return "?" }

// buildUpsertQuery renders one multi-row INSERT ... ON CONFLICT (name_address) DO UPDATE
// statement for the batch. Existing rows are overwritten with the incoming values.
func buildUpsertQuery(batch []*models.Restaurant, placeholder func(n int) string) (string, []any) {
	width := len(upsertColumns)
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]any, 0, len(batch)*width)

	for idx, r := range batch {
		base := idx * width
		ph := make([]string, width)
		for i := range ph {
			ph[i] = placeholder(base + i + 1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(ph, ",")+")")
		valueArgs = append(valueArgs,
			r.NameAddress, r.CountyName, r.Name, r.Type, r.Address, string(r.Status), r.Lat, r.Lon, r.Score)
	}

	updates := make([]string, 0, width)
	for _, col := range upsertColumns[1:] {
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
	}
	updates = append(updates, "updated_at = CURRENT_TIMESTAMP")

	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES %s
		ON CONFLICT (name_address) DO UPDATE SET %s
	`, restaurantTable, strings.Join(upsertColumns, ", "), strings.Join(valueStrings, ","), strings.Join(updates, ", "))

	return query, valueArgs
}

// rowScanner is satisfied by *sql.Rows and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRestaurant(row rowScanner) (*models.Restaurant, error) {
	r := &models.Restaurant{}
	var status string
	if err := row.Scan(&r.NameAddress, &r.CountyName, &r.Name, &r.Type, &r.Address,
		&status, &r.Lat, &r.Lon, &r.Score); err != nil {
		return nil, err
	}
	r.Status = models.Status(status)
	return r, nil
}
