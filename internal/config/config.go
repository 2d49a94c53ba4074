// Package config loads process settings from environment variables.
//
// Every field is described by struct tags: env names the variable, envAlt an
// older alias, default the fallback and required marks variables that must be
// set. Load fails fast with every problem listed at once.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all server configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Export   ExportConfig
	Run      RunConfig
	Refresh  RefreshConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port defaults to 8081 to match the existing deployment.
	Port int `env:"SERVER_PORT" envAlt:"PORT" default:"8081"`

	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"5m"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout bounds a single request, including a full scrape run.
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"5m"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" required:"true"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// ExportConfig says where the raw export documents come from.
//
// When Dir is set the exports are read from disk; otherwise all three URLs
// must be configured.
type ExportConfig struct {
	Dir string `env:"EXPORT_DIR"`

	StateCasesURL      string `env:"EXPORT_STATE_CASES_URL"`
	AffectedTotalsURL  string `env:"EXPORT_AFFECTED_TOTALS_URL"`
	ConfirmedTotalsURL string `env:"EXPORT_CONFIRMED_TOTALS_URL"`

	FetchTimeout time.Duration `env:"EXPORT_FETCH_TIMEOUT" default:"60s"`

	// MaxBytes caps the size of a single export document (default: 10MB).
	MaxBytes int64 `env:"EXPORT_MAX_BYTES" default:"10485760"`
}

// RunConfig limits concurrent scrape runs.
type RunConfig struct {
	MaxConcurrent int           `env:"RUN_MAX_CONCURRENT" default:"1"`
	MaxWaitTime   time.Duration `env:"RUN_MAX_WAIT_TIME" default:"10s"`
	Timeout       time.Duration `env:"RUN_TIMEOUT" default:"5m"`

	// Persist writes results to the database. Disable for dry runs.
	Persist bool `env:"RUN_PERSIST" default:"true"`
}

// RefreshConfig controls the background refresh loop.
type RefreshConfig struct {
	Enabled  bool          `env:"REFRESH_ENABLED" default:"false"`
	Interval time.Duration `env:"REFRESH_INTERVAL" default:"24h"`
}

// RateLimitConfig holds per-IP rate limiting settings.
type RateLimitConfig struct {
	Enabled           bool `env:"RATE_LIMIT_ENABLED" default:"true"`
	RequestsPerMinute int  `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"60"`

	// ScrapeLimit is requests per minute for the scrape endpoint.
	ScrapeLimit int `env:"RATE_LIMIT_SCRAPE" default:"5"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	PermissionsPolicy string `env:"SECURITY_PERMISSIONS_POLICY" default:"geolocation=(), interest-cohort=()"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is text or json.
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// FromDir reports whether exports are read from a local directory.
func (c *ExportConfig) FromDir() bool {
	return c.Dir != ""
}
