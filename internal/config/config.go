// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	CSV     CSVConfig
	Logging LoggingConfig
}

// ServerConfig holds HTTP server settings for the local shell.
type ServerConfig struct {
	// Host is the interface to bind to (default: 127.0.0.1, the shell is local-only)
	Host string `env:"SERVER_HOST" default:"127.0.0.1"`

	// Port is the port to listen on (default: 8787)
	Port int `env:"SERVER_PORT" default:"8787"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 5m, imports can be slow)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"5m"`
}

// StorageConfig holds the locations of the part library files.
type StorageConfig struct {
	// DataDir holds the database and the column mapping document (default: data).
	// "~/" and $VAR references are expanded.
	DataDir string `env:"PARTLIB_DATA_DIR" default:"data" path:"true"`

	// BackupDir holds the single-slot backup (default: <DataDir>/backup)
	BackupDir string `env:"PARTLIB_BACKUP_DIR" path:"true"`

	// DatabaseFile is the sqlite file name inside DataDir and BackupDir
	DatabaseFile string `env:"PARTLIB_DATABASE_FILE" default:"part_library.db"`

	// MappingFile is the column mapping document name inside DataDir
	MappingFile string `env:"PARTLIB_MAPPING_FILE" default:"part_column_config.json"`
}

// CSVConfig holds CSV parsing settings.
type CSVConfig struct {
	// FieldSeparator splits CSV lines (default: ","). Use "\t" or "tab" for tabs.
	// The value is taken verbatim, so a single space is a valid separator.
	FieldSeparator string `env:"PARTLIB_FIELD_SEPARATOR" default:"," raw:"true"`

	// ExportDir is the default output directory for merged exports (default: <DataDir>/export)
	ExportDir string `env:"PARTLIB_EXPORT_DIR" path:"true"`
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

// DatabasePath returns the live store file path.
func (c *StorageConfig) DatabasePath() string {
	return filepath.Join(c.DataDir, c.DatabaseFile)
}

// BackupPath returns the backup store file path.
func (c *StorageConfig) BackupPath() string {
	dir := c.BackupDir
	if dir == "" {
		dir = filepath.Join(c.DataDir, "backup")
	}
	return filepath.Join(dir, c.DatabaseFile)
}

// MappingPath returns the column mapping document path.
func (c *StorageConfig) MappingPath() string {
	return filepath.Join(c.DataDir, c.MappingFile)
}

// Separator returns the field separator with the tab aliases resolved.
func (c *CSVConfig) Separator() string {
	switch c.FieldSeparator {
	case `\t`, "tab", "TAB":
		return "\t"
	}
	return c.FieldSeparator
}

// ExportPath returns the default export directory.
func (c *Config) ExportPath() string {
	if c.CSV.ExportDir != "" {
		return c.CSV.ExportDir
	}
	return filepath.Join(c.Storage.DataDir, "export")
}
