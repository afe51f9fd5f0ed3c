// Package config provides configuration management for the Courtside prediction engine.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	Cache      CacheConfig      `mapstructure:"cache" validate:"required"`
	Engine     EngineConfig     `mapstructure:"engine" validate:"required"`
	Scanner    ScannerConfig    `mapstructure:"scanner" validate:"required"`
	Aggregator AggregatorConfig `mapstructure:"aggregator" validate:"required"`
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Metrics    MetricsConfig    `mapstructure:"metrics" validate:"required"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	Stream     StreamConfig     `mapstructure:"stream"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host           string `mapstructure:"host" validate:"required"`
	Port           int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name           string `mapstructure:"name" validate:"required"`
	User           string `mapstructure:"user" validate:"required"`
	Password       string `mapstructure:"password" validate:"required"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"required,gt=0"`
}

// CacheConfig represents prediction cache configuration
type CacheConfig struct {
	Backend    string      `mapstructure:"backend" validate:"required,oneof=memory redis"`
	TTLSeconds int         `mapstructure:"ttl_seconds" validate:"required,gt=0"`
	Redis      RedisConfig `mapstructure:"redis"`
}

// RedisConfig represents the Redis cache backend configuration
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
	Prefix   string `mapstructure:"prefix"`
}

// EngineConfig represents statistical engine configuration
type EngineConfig struct {
	Weights              EnsembleWeights `mapstructure:"weights"`
	MonteCarloTrials     int             `mapstructure:"monte_carlo_trials" validate:"required,gt=0,lte=1000000"`
	MinRegressionSamples int             `mapstructure:"min_regression_samples" validate:"required,gte=2"`
}

// EnsembleWeights holds the relative weight of each calculator in the
// ensemble. Weights of failed calculators are re-normalized across the
// survivors at estimation time.
type EnsembleWeights struct {
	Bayesian   float64 `mapstructure:"bayesian" validate:"gte=0"`
	Poisson    float64 `mapstructure:"poisson" validate:"gte=0"`
	MonteCarlo float64 `mapstructure:"monte_carlo" validate:"gte=0"`
	Regression float64 `mapstructure:"regression" validate:"gte=0"`
}

// Sum returns the total of all ensemble weights
func (w EnsembleWeights) Sum() float64 {
	return w.Bayesian + w.Poisson + w.MonteCarlo + w.Regression
}

// ScannerConfig represents props scanner configuration
type ScannerConfig struct {
	Concurrency        int      `mapstructure:"concurrency" validate:"required,gt=0,lte=64"`
	LookbackGames      int      `mapstructure:"lookback_games" validate:"required,gt=0"`
	UpcomingWindowDays int      `mapstructure:"upcoming_window_days" validate:"required,gt=0"`
	StatTypes          []string `mapstructure:"stat_types" validate:"required,min=1,stattypes"`
	DefaultLineEnabled bool     `mapstructure:"default_line_enabled"`
}

// AggregatorConfig represents data aggregator configuration
type AggregatorConfig struct {
	RateLimit      float64 `mapstructure:"rate_limit" validate:"required,gt=0"`
	RetryAttempts  int     `mapstructure:"retry_attempts" validate:"required,gte=0"`
	RetryBackoffMS int     `mapstructure:"retry_backoff_ms" validate:"required,gt=0"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
}

// ServerConfig represents HTTP API server configuration
type ServerConfig struct {
	Port                  int      `mapstructure:"port" validate:"required,min=1,max=65535"`
	CORSOrigins           []string `mapstructure:"cors_origins"`
	RequestTimeoutSeconds int      `mapstructure:"request_timeout_seconds" validate:"required,gt=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required"`
}

// SchedulerConfig represents the cache warming scheduler configuration
type SchedulerConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	WarmSpec string `mapstructure:"warm_spec"`
}

// StreamConfig represents websocket stream configuration
type StreamConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	SendBuffer int  `mapstructure:"send_buffer" validate:"omitempty,gt=0"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// CacheTTL returns the prediction cache TTL as a duration
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// AggregatorTimeout returns the per-call aggregation timeout
func (c *Config) AggregatorTimeout() time.Duration {
	return time.Duration(c.Aggregator.TimeoutSeconds) * time.Second
}

// RetryBackoff returns the base backoff between aggregator retries
func (c *Config) RetryBackoff() time.Duration {
	return time.Duration(c.Aggregator.RetryBackoffMS) * time.Millisecond
}
