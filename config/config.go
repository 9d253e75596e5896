package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultDatasets are the Genrestrt* categories synchronised when SYNC_DATASETS is unset.
var DefaultDatasets = []string{"jpnfood", "chifood", "lunch"}

const (
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
	DriverSQLite   = "sqlite"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	APIKey         string
	BaseURL        string
	Datasets       []string
	PageSize       int
	BatchSize      int
	RequestTimeout time.Duration
	PageDelayMs    int
	MaxConcurrency int

	Schedule string
	Timezone string

	DBDriver         string
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	SQLitePath       string
	DBConnectRetries int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MetricsPort  string
	CSVOutputDir string
	LogLevel     string
}

// fileOverlay is the optional YAML file pointed to by SYNC_CONFIG_FILE.
// Only non-zero values override the environment.
type fileOverlay struct {
	BaseURL        string   `yaml:"base_url"`
	Datasets       []string `yaml:"datasets"`
	PageSize       int      `yaml:"page_size"`
	BatchSize      int      `yaml:"batch_size"`
	RequestTimeout string   `yaml:"request_timeout"`
	PageDelayMs    int      `yaml:"page_delay_ms"`
	MaxConcurrency int      `yaml:"max_concurrency"`
	Schedule       string   `yaml:"schedule"`
	Timezone       string   `yaml:"timezone"`
	CSVOutputDir   string   `yaml:"csv_output_dir"`
}

// Load reads the .env file and returns a populated Config struct.
// envFiles overrides the default ".env" lookup.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	cfg := &Config{
		APIKey:         getEnv("GG_API_KEY", ""),
		BaseURL:        getEnv("GG_BASE_URL", "https://openapi.gg.go.kr"),
		Datasets:       getEnvList("SYNC_DATASETS", DefaultDatasets),
		PageSize:       getEnvInt("PAGE_SIZE", 1000),
		BatchSize:      getEnvInt("BATCH_SIZE", 1000),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 30)) * time.Second,
		PageDelayMs:    getEnvInt("PAGE_DELAY_MS", 0),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 1),

		Schedule: getEnv("SYNC_SCHEDULE", "0 1 * * 5"),
		Timezone: getEnv("SYNC_TIMEZONE", "Asia/Seoul"),

		DBDriver:         strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "restaurant"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "restaurant"),
		PostgresDB:       getEnv("POSTGRES_DB", "restaurant_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		SQLitePath:       getEnv("SQLITE_PATH", "./restaurant.db"),
		DBConnectRetries: getEnvInt("DB_CONNECT_RETRIES", 10),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		MetricsPort:  getEnv("METRICS_PORT", "9090"),
		CSVOutputDir: getEnv("CSV_OUTPUT_DIR", ""),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
	}

	if path := getEnv("SYNC_CONFIG_FILE", ""); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %q: %w", path, err)
	}

	var overlay fileOverlay
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("config: parse %q: %w", path, err)
	}

	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if len(overlay.Datasets) > 0 {
		c.Datasets = cleanList(overlay.Datasets)
	}
	if overlay.PageSize > 0 {
		c.PageSize = overlay.PageSize
	}
	if overlay.BatchSize > 0 {
		c.BatchSize = overlay.BatchSize
	}
	if overlay.RequestTimeout != "" {
		d, err := time.ParseDuration(overlay.RequestTimeout)
		if err != nil {
			return fmt.Errorf("config: request_timeout %q: %w", overlay.RequestTimeout, err)
		}
		c.RequestTimeout = d
	}
	if overlay.PageDelayMs > 0 {
		c.PageDelayMs = overlay.PageDelayMs
	}
	if overlay.MaxConcurrency > 0 {
		c.MaxConcurrency = overlay.MaxConcurrency
	}
	if overlay.Schedule != "" {
		c.Schedule = overlay.Schedule
	}
	if overlay.Timezone != "" {
		c.Timezone = overlay.Timezone
	}
	if overlay.CSVOutputDir != "" {
		c.CSVOutputDir = overlay.CSVOutputDir
	}
	return nil
}

// Validate checks the values a sync run cannot do without.
func (c *Config) Validate() error {
	var errs []error
	if c.APIKey == "" {
		errs = append(errs, errors.New("GG_API_KEY is required"))
	}
	if len(c.Datasets) == 0 {
		errs = append(errs, errors.New("at least one data-set is required"))
	}
	if c.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("PAGE_SIZE must be positive, got %d", c.PageSize))
	}
	if c.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("BATCH_SIZE must be positive, got %d", c.BatchSize))
	}
	switch c.DBDriver {
	case DriverPostgres, DriverPgx, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER %q is not one of postgres, pgx, sqlite", c.DBDriver))
	}
	return errors.Join(errs...)
}

// Location resolves the scheduling time zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// PgxURL returns the PostgreSQL connection URL understood by pgxpool.
func (c *Config) PgxURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.PostgresUser, c.PostgresPassword, c.PostgresHost, c.PostgresPort, c.PostgresDB, c.PostgresSSLMode)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	if val := os.Getenv(key); val != "" {
		if list := cleanList(strings.Split(val, ",")); len(list) > 0 {
			return list
		}
	}
	return append([]string(nil), fallback...)
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
