package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noEnvFile points godotenv at a file that does not exist so the
// developer's own .env never leaks into tests.
const noEnvFile = "testdata-missing.env"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GG_API_KEY", "secret")
	t.Setenv("SYNC_DATASETS", "")
	t.Setenv("PAGE_SIZE", "")
	t.Setenv("SYNC_CONFIG_FILE", "")

	cfg, err := Load(noEnvFile)
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.APIKey)
	assert.Equal(t, []string{"jpnfood", "chifood", "lunch"}, cfg.Datasets)
	assert.Equal(t, 1000, cfg.PageSize)
	assert.Equal(t, 1000, cfg.BatchSize)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "0 1 * * 5", cfg.Schedule)
	assert.Equal(t, "https://openapi.gg.go.kr", cfg.BaseURL)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.NoError(t, cfg.Validate())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("GG_API_KEY", "k")
	t.Setenv("SYNC_DATASETS", " lunch , ,jpnfood")
	t.Setenv("PAGE_SIZE", "500")
	t.Setenv("BATCH_SIZE", "not-a-number")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("SYNC_CONFIG_FILE", "")

	cfg, err := Load(noEnvFile)
	require.NoError(t, err)

	assert.Equal(t, []string{"lunch", "jpnfood"}, cfg.Datasets)
	assert.Equal(t, 500, cfg.PageSize)
	assert.Equal(t, 1000, cfg.BatchSize, "invalid ints fall back to the default")
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
}

func TestLoadYAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
datasets: [chifood]
page_size: 250
batch_size: 100
request_timeout: 5s
max_concurrency: 3
schedule: "30 2 * * 1"
timezone: UTC
`), 0o600))

	t.Setenv("GG_API_KEY", "k")
	t.Setenv("SYNC_DATASETS", "lunch")
	t.Setenv("SYNC_CONFIG_FILE", path)

	cfg, err := Load(noEnvFile)
	require.NoError(t, err)

	assert.Equal(t, []string{"chifood"}, cfg.Datasets)
	assert.Equal(t, 250, cfg.PageSize)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 3, cfg.MaxConcurrency)
	assert.Equal(t, "30 2 * * 1", cfg.Schedule)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

func TestLoadYAMLOverlayErrors(t *testing.T) {
	t.Setenv("SYNC_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load(noEnvFile)
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("request_timeout: soon\n"), 0o600))
	t.Setenv("SYNC_CONFIG_FILE", path)
	_, err = Load(noEnvFile)
	assert.ErrorContains(t, err, "request_timeout")
}

func TestValidate(t *testing.T) {
	cfg := &Config{DBDriver: "mysql"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "GG_API_KEY")
	assert.ErrorContains(t, err, "data-set")
	assert.ErrorContains(t, err, "PAGE_SIZE")
	assert.ErrorContains(t, err, "BATCH_SIZE")
	assert.ErrorContains(t, err, "mysql")
}

func TestConnectionStrings(t *testing.T) {
	cfg := &Config{
		PostgresHost: "db", PostgresPort: "5432", PostgresUser: "u",
		PostgresPassword: "p", PostgresDB: "restaurant_db", PostgresSSLMode: "disable",
	}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=restaurant_db sslmode=disable", cfg.DSN())
	assert.Equal(t, "postgres://u:p@db:5432/restaurant_db?sslmode=disable", cfg.PgxURL())
}
