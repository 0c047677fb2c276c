// Package config defines the timeclock configuration value object. It is
// constructed once at startup and passed by reference into every component;
// no other package reads configuration files on its own.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/timeclock/internal/errors"
	"git.home.luguber.info/inful/timeclock/internal/retry"
)

// Config represents the application configuration
type Config struct {
	Database    DatabaseConfig    `yaml:"database"`
	Retry       RetryConfig       `yaml:"retry,omitempty"`
	Metrics     MetricsConfig     `yaml:"metrics,omitempty"`
	Events      EventsConfig      `yaml:"events,omitempty"`
	Maintenance MaintenanceConfig `yaml:"maintenance,omitempty"`
	Logging     LoggingConfig     `yaml:"logging,omitempty"`
}

// DatabaseConfig describes the backing SQLite store.
type DatabaseConfig struct {
	Path           string `yaml:"path"`
	BusyTimeout    string `yaml:"busy_timeout,omitempty"`    // lock wait before a write fails, default 10s
	AcquireTimeout string `yaml:"acquire_timeout,omitempty"` // per-attempt open+ping budget, default 30s
}

// RetryConfig controls connection acquisition retries.
type RetryConfig struct {
	Backoff      string `yaml:"backoff,omitempty"` // fixed|linear|exponential
	InitialDelay string `yaml:"initial_delay,omitempty"`
	MaxDelay     string `yaml:"max_delay,omitempty"`
	MaxAttempts  int    `yaml:"max_attempts,omitempty"`
}

// MetricsConfig controls the Prometheus exposer used by daemon mode.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	Listen  string `yaml:"listen,omitempty"`
}

// EventsConfig controls optional attendance event publishing over NATS.
type EventsConfig struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// MaintenanceConfig controls periodic store maintenance in daemon mode.
type MaintenanceConfig struct {
	Enabled  bool   `yaml:"enabled,omitempty"`
	Interval string `yaml:"interval,omitempty"`
}

// LoggingConfig controls slog output.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // debug|info|warn|error
}

// Load loads configuration from the specified file
func Load(configPath string) (*Config, error) {
	// Load .env/.env.local if present; process env always wins.
	for _, envPath := range []string{".env", ".env.local"} {
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			break
		}
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, errors.ConfigError(fmt.Sprintf("configuration file not found: %s", configPath))
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryConfig, errors.SeverityFatal, "failed to read config file")
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, errors.Wrap(err, errors.CategoryConfig, errors.SeverityFatal, "failed to unmarshal config")
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Database.Path == "" {
		c.Database.Path = "data/timeclock.db"
	}
	if c.Database.BusyTimeout == "" {
		c.Database.BusyTimeout = "10s"
	}
	if c.Database.AcquireTimeout == "" {
		c.Database.AcquireTimeout = "30s"
	}
	if c.Retry.Backoff == "" {
		c.Retry.Backoff = string(retry.BackoffLinear)
	}
	if c.Retry.InitialDelay == "" {
		c.Retry.InitialDelay = "1s"
	}
	if c.Retry.MaxDelay == "" {
		c.Retry.MaxDelay = "30s"
	}
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = 3
	}
	if c.Metrics.Listen == "" {
		c.Metrics.Listen = "127.0.0.1:9184"
	}
	if c.Events.Subject == "" {
		c.Events.Subject = "timeclock.attendance"
	}
	if c.Maintenance.Interval == "" {
		c.Maintenance.Interval = "1h"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks that durations parse and required fields are present.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.ConfigError("database.path is required")
	}
	for _, d := range []struct{ name, val string }{
		{"database.busy_timeout", c.Database.BusyTimeout},
		{"database.acquire_timeout", c.Database.AcquireTimeout},
		{"retry.initial_delay", c.Retry.InitialDelay},
		{"retry.max_delay", c.Retry.MaxDelay},
		{"maintenance.interval", c.Maintenance.Interval},
	} {
		if _, err := time.ParseDuration(d.val); err != nil {
			return errors.ConfigError(fmt.Sprintf("%s: invalid duration %q", d.name, d.val))
		}
	}
	if c.Retry.MaxAttempts < 1 {
		return errors.ConfigError("retry.max_attempts must be >= 1")
	}
	if c.Events.Enabled && c.Events.NATSURL == "" {
		return errors.ConfigError("events.nats_url is required when events are enabled")
	}
	return nil
}

// BusyTimeoutDuration returns the parsed lock-wait budget.
func (c *DatabaseConfig) BusyTimeoutDuration() time.Duration {
	return mustDuration(c.BusyTimeout, 10*time.Second)
}

// AcquireTimeoutDuration returns the parsed per-attempt acquisition budget.
func (c *DatabaseConfig) AcquireTimeoutDuration() time.Duration {
	return mustDuration(c.AcquireTimeout, 30*time.Second)
}

// IntervalDuration returns the parsed maintenance interval.
func (c *MaintenanceConfig) IntervalDuration() time.Duration {
	return mustDuration(c.Interval, time.Hour)
}

// Policy builds the connection retry policy from the retry section.
func (c *Config) Policy() retry.Policy {
	return retry.NewPolicy(
		retry.BackoffMode(c.Retry.Backoff),
		mustDuration(c.Retry.InitialDelay, time.Second),
		mustDuration(c.Retry.MaxDelay, 30*time.Second),
		c.Retry.MaxAttempts,
	)
}

func mustDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
