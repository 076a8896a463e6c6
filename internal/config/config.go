// Package config loads runtime settings from an optional YAML file, a
// .env file, and environment variables, in increasing precedence.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// MetricsAddr is the listen address for the /metrics endpoint.
	// Empty disables the metrics server.
	MetricsAddr string `yaml:"metrics_addr"`
	// Shards is the number of concurrent account workers. Values below 2
	// select the sequential engine.
	Shards int `yaml:"shards"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

func defaults() *Config {
	return &Config{
		MetricsAddr: "",
		Shards:      1,
		LogLevel:    "info",
	}
}

// Load reads the YAML file named by path (skipped when empty), then a
// .env file from the current directory if present, then PROCESSOR_*
// environment variables on top.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// Ignore a missing .env; it is optional.
	_ = godotenv.Load()

	if v := os.Getenv("PROCESSOR_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv("PROCESSOR_SHARDS"); v != "" {
		shards, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PROCESSOR_SHARDS: %w", err)
		}
		cfg.Shards = shards
	}
	if v := os.Getenv("PROCESSOR_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	if cfg.Shards < 1 {
		cfg.Shards = 1
	}
	return cfg, nil
}
