package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WriteExample writes a commented starter configuration to path. It refuses to
// overwrite an existing file unless force is set.
func WriteExample(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use force to overwrite)", path)
	}

	example := Config{
		Database: DatabaseConfig{
			Path:           "data/timeclock.db",
			BusyTimeout:    "10s",
			AcquireTimeout: "30s",
		},
		Retry: RetryConfig{
			Backoff:      "linear",
			InitialDelay: "1s",
			MaxDelay:     "30s",
			MaxAttempts:  3,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Listen:  "127.0.0.1:9184",
		},
		Events: EventsConfig{
			Enabled: false,
			NATSURL: "nats://127.0.0.1:4222",
			Subject: "timeclock.attendance",
		},
		Maintenance: MaintenanceConfig{
			Enabled:  true,
			Interval: "1h",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("failed to marshal example config: %w", err)
	}

	header := "# timeclock configuration\n# Environment variables are expanded (${VAR}); a .env file is honored.\n"
	if err := os.WriteFile(path, append([]byte(header), data...), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
