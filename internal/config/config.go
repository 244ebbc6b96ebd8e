package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/FleetVision/FV-Backend/internal/fleet"
	"github.com/goccy/go-yaml"
)

// Config holds deploy-level tuning. Values come from an optional YAML file
// (CONFIG_PATH, default config.yaml) with environment overrides on top;
// every field has a default so the zero config runs.
type Config struct {
	Port     string `yaml:"port"`
	DataPath string `yaml:"data_path"` // base path for incoming sensor files

	SpeedLimits fleet.SpeedLimits `yaml:"speed_limits"`

	// Rate limit for the ingestion trigger endpoint.
	IngestRatePerSec float64 `yaml:"ingest_rate_per_sec"`
	IngestBurst      int     `yaml:"ingest_burst"`

	// Daily recompute scheduler.
	SchedulerEnabled bool `yaml:"scheduler_enabled"`
	SchedulerHours   int  `yaml:"scheduler_hours"` // tick interval
}

func defaults() Config {
	return Config{
		Port:             "5050",
		DataPath:         "./data",
		SpeedLimits:      fleet.DefaultSpeedLimits(),
		IngestRatePerSec: 1,
		IngestBurst:      5,
		SchedulerEnabled: true,
		SchedulerHours:   24,
	}
}

// Load builds the effective configuration.
func Load() Config {
	cfg := defaults()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Printf("[config] ignoring malformed %s: %v", path, err)
			cfg = defaults()
		} else {
			log.Printf("[config] loaded %s", path)
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DataPath = getEnv("DATA_PATH", cfg.DataPath)
	cfg.SpeedLimits.Park = getEnvFloat("SPEED_LIMIT_PARK", cfg.SpeedLimits.Park)
	cfg.SpeedLimits.Workshop = getEnvFloat("SPEED_LIMIT_WORKSHOP", cfg.SpeedLimits.Workshop)
	cfg.SpeedLimits.Sensitive = getEnvFloat("SPEED_LIMIT_SENSITIVE", cfg.SpeedLimits.Sensitive)
	cfg.SpeedLimits.Outside = getEnvFloat("SPEED_LIMIT_OUTSIDE", cfg.SpeedLimits.Outside)

	return cfg
}

// Validate rejects configurations that would make every sample a
// violation or disable ingestion entirely.
func (c Config) Validate() error {
	if c.SpeedLimits.Park <= 0 || c.SpeedLimits.Workshop <= 0 ||
		c.SpeedLimits.Sensitive <= 0 || c.SpeedLimits.Outside <= 0 {
		return fmt.Errorf("speed limits must be positive: %+v", c.SpeedLimits)
	}
	if c.IngestRatePerSec <= 0 {
		return fmt.Errorf("ingest_rate_per_sec must be positive, got %f", c.IngestRatePerSec)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
