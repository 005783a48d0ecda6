package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dyluth/contactbook/internal/auth"
)

// DefaultPath is where serve, list and watch look for configuration.
const DefaultPath = "contactbook.yml"

// Defaults applied when neither the file nor the environment sets a value.
const (
	DefaultAddr        = ":8000"
	DefaultDatabaseURL = "sqlite://contactbook.db"
	DefaultInstance    = "default"
	DefaultLogLevel    = "info"
)

// Environment variables. Credentials are only ever read from the environment.
const (
	EnvUsername    = "CONTACTBOOK_USERNAME"
	EnvPassword    = "CONTACTBOOK_PASSWORD"
	EnvAddr        = "CONTACTBOOK_ADDR"
	EnvDatabaseURL = "DATABASE_URL"
	EnvRedisURL    = "REDIS_URL"
	EnvInstance    = "CONTACTBOOK_INSTANCE"
	EnvLogLevel    = "CONTACTBOOK_LOG_LEVEL"
)

// ServerConfig controls the HTTP listener
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DatabaseConfig selects the storage engine via its connection string
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// EventsConfig enables the Redis change feed. An empty RedisURL disables it.
type EventsConfig struct {
	RedisURL string `yaml:"redis_url,omitempty"`
	Instance string `yaml:"instance,omitempty"`
}

// LogConfig controls the structured logger
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn or error
}

// Config represents contactbook.yml plus environment overrides
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Events   EventsConfig   `yaml:"events"`
	Log      LogConfig      `yaml:"log"`

	// Credentials guard the delete operation. Never read from the file.
	Credentials auth.Credentials `yaml:"-"`
}

// Default returns a Config with every default applied.
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Addr: DefaultAddr},
		Database: DatabaseConfig{URL: DefaultDatabaseURL},
		Events:   EventsConfig{Instance: DefaultInstance},
		Log:      LogConfig{Level: DefaultLogLevel},
	}
}

// Validate performs strict validation on the configuration
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}

	if c.Database.URL == "" {
		return fmt.Errorf("database.url is required")
	}

	if c.Events.RedisURL != "" && c.Events.Instance == "" {
		return fmt.Errorf("events.instance is required when events.redis_url is set")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log.level: %s (must be 'debug', 'info', 'warn', or 'error')", c.Log.Level)
	}

	return nil
}

// Load reads contactbook.yml from path, applies environment overrides and
// validates the result. A missing file is not an error: defaults and the
// environment are enough to run.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applyEnv overrides file values with any non-empty environment variable.
func (c *Config) applyEnv(getenv func(string) string) {
	override := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}

	override(&c.Server.Addr, EnvAddr)
	override(&c.Database.URL, EnvDatabaseURL)
	override(&c.Events.RedisURL, EnvRedisURL)
	override(&c.Events.Instance, EnvInstance)
	override(&c.Log.Level, EnvLogLevel)

	// Credentials are compared byte-for-byte, so they are not trimmed
	c.Credentials = auth.Credentials{
		Username: getenv(EnvUsername),
		Password: getenv(EnvPassword),
	}
}
