// Package config loads application settings from environment variables.
// Every field has an env tag and, where sensible, a default; Load validates
// the result so a bad deployment fails at startup.
package config

import (
	"strconv"
	"time"
)

// Data source kinds.
const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Data     DataConfig
	Database DatabaseConfig
	Session  SessionConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
	Merge    MergeConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" default:"8080"`

	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"15s"`

	// RequestTimeout is the middleware timeout for requests (default: 30s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"30s"`
}

// DataConfig locates the two datasets and the CSV download.
type DataConfig struct {
	// Source is where datasets are read from: file or postgres (default: file)
	Source string `env:"DATA_SOURCE" default:"file"`

	DirectoryPath string `env:"DATA_DIRECTORY_PATH" default:"data/countylink.json"`
	RecordsPath   string `env:"DATA_RECORDS_PATH" default:"data/merged_country_data.json"`

	// CSVPath is the flattened merged data offered for download
	CSVPath string `env:"DATA_CSV_PATH" default:"data/merged_country_data.csv"`

	// LoadTimeout bounds the startup dataset fetch (default: 30s)
	LoadTimeout time.Duration `env:"DATA_LOAD_TIMEOUT" default:"30s"`
}

// DatabaseConfig holds Postgres settings, used by the postgres data source
// and by merge publish.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string.
	// Supports both DATABASE_URL and DB_URL env vars.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"4"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"0"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// SessionConfig holds per-browser workspace settings.
type SessionConfig struct {
	CookieName    string        `env:"SESSION_COOKIE_NAME" default:"rc_session"`
	TTL           time.Duration `env:"SESSION_TTL" default:"30m"`
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" default:"1m"`
	MaxSessions   int           `env:"SESSION_MAX" default:"10000"`

	// Secure marks the cookie HTTPS-only (default: false)
	Secure bool `env:"SESSION_COOKIE_SECURE" default:"false"`
}

// RateLimitConfig holds per-IP rate limiting settings.
type RateLimitConfig struct {
	Enabled           bool `env:"RATE_LIMIT_ENABLED" default:"true"`
	RequestsPerMinute int  `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`

	// CompareLimit is requests per minute for compare and export (default: 30)
	CompareLimit int `env:"RATE_LIMIT_COMPARE" default:"30"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// RequireAPIKey protects the /api routes (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys
	APIKeys []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// MergeConfig locates the inputs of the merge job. Outputs go to
// Data.RecordsPath and Data.CSVPath. A zero Every runs a job once.
type MergeConfig struct {
	CIAPath      string        `env:"MERGE_CIA_PATH" default:"data/country_data.json"`
	WorldBankDir string        `env:"MERGE_WORLDBANK_DIR" default:"data"`
	Years        int           `env:"MERGE_YEARS" default:"3"`
	Every        time.Duration `env:"MERGE_EVERY" default:"0s"`

	WorldBankURL string        `env:"WORLDBANK_API_URL" default:"https://api.worldbank.org/v2"`
	FetchTimeout time.Duration `env:"WORLDBANK_FETCH_TIMEOUT" default:"30s"`
	FetchWorkers int           `env:"WORLDBANK_FETCH_WORKERS" default:"5"`
	FetchEvery   time.Duration `env:"WORLDBANK_FETCH_EVERY" default:"0s"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
