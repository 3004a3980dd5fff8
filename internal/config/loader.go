package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Lookup reports the value of an environment variable and whether it is set.
// os.LookupEnv satisfies it.
type Lookup func(key string) (string, bool)

// Load reads configuration from the process environment and validates it.
func Load() (*Config, error) {
	return LoadFrom(os.LookupEnv)
}

// LoadFrom builds a Config from lookup. Struct fields name their variable
// with an env tag and may carry:
//
//	default:"..."  value used when the variable is unset or blank
//	path:"true"    expand a leading "~/" and $VAR references
//	raw:"true"     keep surrounding whitespace
//
// Every malformed variable is reported, not just the first.
func LoadFrom(lookup Lookup) (*Config, error) {
	cfg := &Config{}

	l := loader{lookup: lookup}
	l.fill(reflect.ValueOf(cfg).Elem())
	if err := errors.Join(l.errs...); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

type loader struct {
	lookup Lookup
	errs   []error
}

var durationType = reflect.TypeOf(time.Duration(0))

// fill walks the sections of Config and their tagged fields.
func (l *loader) fill(v reflect.Value) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		fv := v.Field(i)

		if f.Type.Kind() == reflect.Struct {
			l.fill(fv)
			continue
		}

		key := f.Tag.Get("env")
		if key == "" || !fv.CanSet() {
			continue
		}

		value, ok := l.lookup(key)
		if f.Tag.Get("raw") != "true" {
			value = strings.TrimSpace(value)
		}
		if !ok || value == "" {
			value = f.Tag.Get("default")
		}
		if value == "" {
			continue
		}

		if f.Tag.Get("path") == "true" {
			expanded, err := expandPath(value)
			if err != nil {
				l.errs = append(l.errs, fmt.Errorf("%s=%q: %w", key, value, err))
				continue
			}
			value = expanded
		}

		if err := assign(fv, value); err != nil {
			l.errs = append(l.errs, fmt.Errorf("%s=%q: %w", key, value, err))
		}
	}
}

// expandPath resolves "~/" against the home directory and expands $VAR
// references. Other paths are returned cleaned.
func expandPath(p string) (string, error) {
	p = os.ExpandEnv(p)
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand home directory: %w", err)
		}
		p = filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return filepath.Clean(p), nil
}

// assign parses value into a string, int, bool or time.Duration field.
func assign(fv reflect.Value, value string) error {
	switch {
	case fv.Type() == durationType:
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("not a duration: %w", err)
		}
		fv.SetInt(int64(d))
	case fv.Kind() == reflect.String:
		fv.SetString(value)
	case fv.Kind() == reflect.Int:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("not an integer: %w", err)
		}
		fv.SetInt(int64(n))
	case fv.Kind() == reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("not a boolean: %w", err)
		}
		fv.SetBool(b)
	default:
		return fmt.Errorf("unsupported field kind %s", fv.Kind())
	}
	return nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, "SERVER_REQUEST_TIMEOUT must be positive")
	}

	// Storage validation
	if strings.TrimSpace(c.Storage.DataDir) == "" {
		errs = append(errs, "PARTLIB_DATA_DIR must not be empty")
	}
	if c.Storage.DatabaseFile == "" || strings.ContainsAny(c.Storage.DatabaseFile, `/\`) {
		errs = append(errs, fmt.Sprintf("PARTLIB_DATABASE_FILE (%q) must be a bare file name", c.Storage.DatabaseFile))
	}
	if c.Storage.MappingFile == "" || strings.ContainsAny(c.Storage.MappingFile, `/\`) {
		errs = append(errs, fmt.Sprintf("PARTLIB_MAPPING_FILE (%q) must be a bare file name", c.Storage.MappingFile))
	}

	// CSV validation
	if c.CSV.Separator() == "" {
		errs = append(errs, "PARTLIB_FIELD_SEPARATOR must not be empty")
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a compact representation of the config for logging.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port))
	b.WriteString(fmt.Sprintf("Storage: {Database: %q, Backup: %q, Mapping: %q}, ",
		c.Storage.DatabasePath(), c.Storage.BackupPath(), c.Storage.MappingPath()))
	b.WriteString(fmt.Sprintf("CSV: {Separator: %q}, ", c.CSV.Separator()))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}
