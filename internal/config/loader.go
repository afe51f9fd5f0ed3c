// Package config provides configuration management for the Courtside prediction engine.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load reads and parses the configuration from file and environment variables.
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the configuration (${VAR} syntax)
	expanded := os.ExpandEnv(string(data))

	v := newViper()
	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for optional
// fields. A missing config file is not an error; defaults and environment
// variables still apply.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	v := newViper()
	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("COURTSIDE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "courtside")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.ttl_seconds", 600)
	v.SetDefault("cache.redis.prefix", "courtside")
	v.SetDefault("engine.weights.bayesian", 0.25)
	v.SetDefault("engine.weights.poisson", 0.25)
	v.SetDefault("engine.weights.monte_carlo", 0.25)
	v.SetDefault("engine.weights.regression", 0.25)
	v.SetDefault("engine.monte_carlo_trials", 10000)
	v.SetDefault("engine.min_regression_samples", 3)
	v.SetDefault("scanner.concurrency", 8)
	v.SetDefault("scanner.lookback_games", 20)
	v.SetDefault("scanner.upcoming_window_days", 7)
	v.SetDefault("scanner.stat_types", []string{"points", "rebounds", "assists", "threes"})
	v.SetDefault("scanner.default_line_enabled", true)
	v.SetDefault("aggregator.rate_limit", 50.0)
	v.SetDefault("aggregator.retry_attempts", 3)
	v.SetDefault("aggregator.retry_backoff_ms", 100)
	v.SetDefault("aggregator.timeout_seconds", 5)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.request_timeout_seconds", 30)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("scheduler.warm_spec", "*/10 * * * *")
	v.SetDefault("stream.send_buffer", 256)
}
