// Package config loads the registry configuration from an optional YAML file,
// an optional .env file and SCHEMA_REGISTRY_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"

	"github.com/reglet-dev/reglet-schema-registry/logging"
	"github.com/reglet-dev/reglet-schema-registry/schema/repository"
)

// Environment variables that override file values.
const (
	EnvSchemaDir   = "SCHEMA_REGISTRY_DIR"
	EnvLogLevel    = "SCHEMA_REGISTRY_LOG_LEVEL"
	EnvLogFormat   = "SCHEMA_REGISTRY_LOG_FORMAT"
	EnvMetricsAddr = "SCHEMA_REGISTRY_METRICS_ADDR"
	EnvWatch       = "SCHEMA_REGISTRY_WATCH"
	EnvMaxSchema   = "SCHEMA_REGISTRY_MAX_SCHEMA_BYTES"
)

// Config is the process configuration.
type Config struct {
	SchemaDir      string        `yaml:"schema_dir"`
	MaxSchemaBytes int64         `yaml:"max_schema_bytes"`
	Log            LogConfig     `yaml:"log"`
	Metrics        MetricsConfig `yaml:"metrics"`
	Watch          bool          `yaml:"watch"`
}

// LogConfig selects log verbosity and encoding.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig configures the observability server. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the built-in configuration.
func Default() *Config {
	logCfg := logging.DefaultConfig()
	return &Config{
		SchemaDir:      repository.DefaultDir,
		MaxSchemaBytes: repository.DefaultMaxFileSize,
		Log: LogConfig{
			Level:  logCfg.Level,
			Format: logCfg.Format,
		},
	}
}

// Load builds the configuration: defaults, then .env, then the YAML file at
// path (skipped when path is empty), then environment overrides.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied config path
	if err != nil {
		return fmt.Errorf("read config %q: %w", path, err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data), yaml.DisallowUnknownField())
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decoding config YAML %q: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.SchemaDir = envOrDefault(EnvSchemaDir, c.SchemaDir)
	c.Log.Level = envOrDefault(EnvLogLevel, c.Log.Level)
	c.Log.Format = envOrDefault(EnvLogFormat, c.Log.Format)
	c.Metrics.Addr = envOrDefault(EnvMetricsAddr, c.Metrics.Addr)

	if v := os.Getenv(EnvWatch); v != "" {
		watch, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvWatch, v, err)
		}
		c.Watch = watch
	}

	if v := os.Getenv(EnvMaxSchema); v != "" {
		limit, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvMaxSchema, v, err)
		}
		c.MaxSchemaBytes = limit
	}
	return nil
}

// Validate checks the configuration for values the registry cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.SchemaDir) == "" {
		return errors.New("schema directory cannot be empty")
	}
	if c.MaxSchemaBytes <= 0 {
		return fmt.Errorf("max_schema_bytes must be positive, got %d", c.MaxSchemaBytes)
	}
	return logging.ValidateFormat(c.Log.Format)
}

// Logging converts the log section to a logging.Config.
func (c *Config) Logging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = strings.ToLower(c.Log.Level)
	cfg.Format = c.Log.Format
	return cfg
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
