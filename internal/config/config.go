// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Storage drivers.
const (
	DriverBadger   = "badger"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Upload   UploadConfig
	Export   ExportConfig
	Scanner  ScannerConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 30s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// StorageConfig selects and configures the session store.
type StorageConfig struct {
	// Driver is one of badger, postgres, redis, memory (default: badger)
	Driver string `env:"STORAGE_DRIVER" default:"badger"`

	// BadgerDir is the badger data directory (default: ./data)
	BadgerDir string `env:"BADGER_DIR" default:"./data"`

	// DatabaseURL is the PostgreSQL connection string, required for the postgres driver.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	DatabaseURL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" default:"4"`

	// MinConns is the minimum number of connections to keep open (default: 1)
	MinConns int `env:"DB_MIN_CONNS" default:"1"`

	// RedisAddr is the redis host:port (default: localhost:6379)
	RedisAddr string `env:"REDIS_ADDR" default:"localhost:6379"`

	// RedisPassword is the redis password
	RedisPassword string `env:"REDIS_PASSWORD"`

	// RedisDB is the redis database number (default: 0)
	RedisDB int `env:"REDIS_DB" default:"0"`

	// KeyPrefix namespaces persisted entries, so several receiving stations
	// can share one redis or postgres (default: inbound)
	KeyPrefix string `env:"STORAGE_KEY_PREFIX" default:"inbound"`

	// Timeout bounds a single store call (default: 5s)
	Timeout time.Duration `env:"STORAGE_TIMEOUT" default:"5s"`
}

// UploadConfig holds expected-list upload settings.
type UploadConfig struct {
	// MaxFileSize is the maximum allowed file size in bytes (default: 20MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"20971520"`

	// Timeout is the maximum duration for a single upload operation (default: 2m)
	Timeout time.Duration `env:"UPLOAD_TIMEOUT" default:"2m"`
}

// ExportConfig holds report export settings.
type ExportConfig struct {
	// Dir is where the console scanner writes report workbooks (default: ./exports)
	Dir string `env:"EXPORT_DIR" default:"./exports"`

	// Label is the middle part of the export file name
	Label string `env:"EXPORT_LABEL" default:"입고 스캔정보"`

	// SheetName is the worksheet name of the export
	SheetName string `env:"EXPORT_SHEET_NAME" default:"검수 내역"`
}

// ScannerConfig holds scan handling settings.
type ScannerConfig struct {
	// HighlightDelay is how long clients highlight the last scanned SKU (default: 500ms)
	HighlightDelay time.Duration `env:"SCANNER_HIGHLIGHT_DELAY" default:"500ms"`

	// TimestampLayout is the Go time layout of scan timestamps
	TimestampLayout string `env:"SCANNER_TIMESTAMP_LAYOUT" default:"2006-01-02 15:04:05"`

	// Station names this receiving station in audit records (default: dock-1)
	Station string `env:"SCANNER_STATION" default:"dock-1"`

	// Operator is the operator signed in at the terminal scanner, if any
	Operator string `env:"SCANNER_OPERATOR"`

	// LogFile receives the terminal scanner's logs while it owns the screen
	LogFile string `env:"SCANNER_LOG_FILE" default:"scanner.log"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// RequireAPIKey guards the mutating endpoints (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted X-API-Key values
	APIKeys []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
