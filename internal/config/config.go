// Package config defines the run configuration and how it is layered from
// defaults, an optional YAML file and CLUTCH_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/pable/go-clutch-metrics/internal/aggregator"
	"github.com/pable/go-clutch-metrics/internal/clock"
	"github.com/pable/go-clutch-metrics/internal/feb"
)

// Config contains process configuration.
type Config struct {
	// DBPath is the SQLite database file.
	DBPath string `koanf:"db_path" validate:"required"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel  string `koanf:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `koanf:"log_format" validate:"oneof=console json"`

	// Workers bounds concurrent browser sessions.
	Workers int `koanf:"workers" validate:"min=1,max=8"`

	// MaxRetries is the number of retries after the first attempt.
	MaxRetries     int           `koanf:"max_retries" validate:"min=0,max=10"`
	RetryBaseDelay time.Duration `koanf:"retry_base_delay" validate:"min=0"`

	FetchTimeout       time.Duration `koanf:"fetch_timeout" validate:"gt=0"`
	MinRequestInterval time.Duration `koanf:"min_request_interval" validate:"min=0"`
	Headless           bool          `koanf:"headless"`

	// Widget stability polling for the play-by-play table.
	WidgetMinRows      int           `koanf:"widget_min_rows" validate:"min=0"`
	WidgetStableCycles int           `koanf:"widget_stable_cycles" validate:"min=1"`
	WidgetPoll         time.Duration `koanf:"widget_poll" validate:"gt=0"`
	WidgetTimeout      time.Duration `koanf:"widget_timeout" validate:"gt=0"`

	// SnapshotDir keeps compressed raw HTML per game when set.
	SnapshotDir string `koanf:"snapshot_dir"`
	// MetricsAddr serves /metrics while a run is in progress when set.
	MetricsAddr string `koanf:"metrics_addr"`

	ClutchMargin      int `koanf:"clutch_margin" validate:"min=0"`
	ClutchLastSeconds int `koanf:"clutch_last_seconds" validate:"min=0,ltefield=RegulationSeconds"`
	RegulationSeconds int `koanf:"regulation_seconds" validate:"gt=0"`
	OvertimeSeconds   int `koanf:"overtime_seconds" validate:"gt=0"`
	RegulationPeriods int `koanf:"regulation_periods" validate:"gt=0"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		DBPath:             filepath.Join(userHome(), ".clutchmetrics", "metrics.db"),
		LogLevel:           "info",
		LogFormat:          "console",
		Workers:            2,
		MaxRetries:         2,
		RetryBaseDelay:     time.Second,
		FetchTimeout:       60 * time.Second,
		MinRequestInterval: 2 * time.Second,
		Headless:           true,
		WidgetMinRows:      10,
		WidgetStableCycles: 3,
		WidgetPoll:         600 * time.Millisecond,
		WidgetTimeout:      25 * time.Second,
		ClutchMargin:       5,
		ClutchLastSeconds:  300,
		RegulationSeconds:  600,
		OvertimeSeconds:    300,
		RegulationPeriods:  4,
	}
}

var validate = validator.New()

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Clock returns the period arithmetic for this configuration.
func (c *Config) Clock() clock.Config {
	return clock.Config{
		RegulationSeconds: c.RegulationSeconds,
		OvertimeSeconds:   c.OvertimeSeconds,
		RegulationPeriods: c.RegulationPeriods,
	}
}

// Engine returns the aggregator parameters for this configuration.
func (c *Config) Engine() aggregator.Config {
	cfg := aggregator.DefaultConfig()
	cfg.Clock = c.Clock()
	cfg.ClutchMargin = c.ClutchMargin
	cfg.ClutchLastSeconds = c.ClutchLastSeconds
	return cfg
}

// Browser returns the acquisition client options.
func (c *Config) Browser() feb.Options {
	return feb.Options{
		Headless:           c.Headless,
		FetchTimeout:       c.FetchTimeout,
		MinRequestInterval: c.MinRequestInterval,
		WidgetMinRows:      c.WidgetMinRows,
		WidgetStableCycles: c.WidgetStableCycles,
		WidgetPoll:         c.WidgetPoll,
		WidgetTimeout:      c.WidgetTimeout,
	}
}

// Retry returns the per-game retry policy.
func (c *Config) Retry() feb.RetryPolicy {
	return feb.RetryPolicy{MaxRetries: c.MaxRetries, BaseDelay: c.RetryBaseDelay}
}

func userHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
