// Package config loads med-reminder settings from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the root configuration.
type Config struct {
	DBPath       string        `env:"MED_REMINDER_DB"`
	PollInterval time.Duration `env:"MED_REMINDER_POLL_INTERVAL" envDefault:"30s"`
	TimeZone     string        `env:"MED_REMINDER_TZ"`
	Log          LogConfig
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `env:"MED_REMINDER_LOG_LEVEL" envDefault:"info"`
	Format string `env:"MED_REMINDER_LOG_FORMAT" envDefault:"text"`
}

// Load parses the environment and fills derived defaults.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DBPath == "" {
		home, _ := os.UserHomeDir()
		cfg.DBPath = filepath.Join(home, ".med-reminder", "medicine.db")
	}
	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("MED_REMINDER_POLL_INTERVAL must be positive, got %s", cfg.PollInterval)
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Location is the time zone reminders are scheduled in.
func (c *Config) Location() (*time.Location, error) {
	if c.TimeZone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("MED_REMINDER_TZ: %w", err)
	}
	return loc, nil
}
