package config

import (
	"fmt"

	"github.com/rs/zerolog"
)

func validate(c *Config) error {
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be > 0")
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("rate limit must be >= 0")
	}
	if c.Workers < 0 || c.Workers > DefaultMaxWorkers {
		return fmt.Errorf("workers must be between 0 and %d", DefaultMaxWorkers)
	}
	if c.DownloadWorkers <= 0 {
		return fmt.Errorf("download workers must be > 0")
	}
	for name, d := range map[string]int64{
		"listing":    int64(c.Timeouts.Listing),
		"pagination": int64(c.Timeouts.Pagination),
		"detail":     int64(c.Timeouts.Detail),
		"section":    int64(c.Timeouts.Section),
		"click":      int64(c.Timeouts.Click),
	} {
		if d <= 0 {
			return fmt.Errorf("%s timeout must be > 0", name)
		}
	}
	if c.Output == "" {
		return fmt.Errorf("output path is required")
	}
	return nil
}
