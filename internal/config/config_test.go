package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

const validYAML = `
app:
  name: courtside
  environment: development
  log_level: debug
database:
  host: localhost
  port: 5432
  name: courtside
  user: courtside
  password: secret
  ssl_mode: disable
  max_connections: 10
cache:
  backend: memory
  ttl_seconds: 300
engine:
  weights:
    bayesian: 0.25
    poisson: 0.25
    monte_carlo: 0.25
    regression: 0.25
  monte_carlo_trials: 5000
  min_regression_samples: 3
scanner:
  concurrency: 4
  lookback_games: 15
  upcoming_window_days: 7
  stat_types: [points, rebounds]
  default_line_enabled: true
aggregator:
  rate_limit: 25
  retry_attempts: 2
  retry_backoff_ms: 50
  timeout_seconds: 5
server:
  port: 8080
  request_timeout_seconds: 30
metrics:
  enabled: true
  path: /metrics
`

func TestLoadValidConfig(t *testing.T) {
	path := writeConfigFile(t, validYAML)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}

	if cfg.App.Name != "courtside" {
		t.Errorf("expected app name courtside, got %s", cfg.App.Name)
	}
	if cfg.Engine.MonteCarloTrials != 5000 {
		t.Errorf("expected 5000 monte carlo trials, got %d", cfg.Engine.MonteCarloTrials)
	}
	if cfg.CacheTTL().Seconds() != 300 {
		t.Errorf("expected 300s cache ttl, got %v", cfg.CacheTTL())
	}

	if err := Validate(cfg); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestLoadExpandsEnvironmentVariables(t *testing.T) {
	t.Setenv("COURTSIDE_TEST_DB_PASSWORD", "from-env")
	yaml := strings.Replace(validYAML, "password: secret", "password: ${COURTSIDE_TEST_DB_PASSWORD}", 1)
	path := writeConfigFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if cfg.Database.Password != "from-env" {
		t.Errorf("expected env expansion, got %s", cfg.Database.Password)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	cfg, err := LoadWithDefaults(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Engine.MonteCarloTrials != 10000 {
		t.Errorf("expected default 10000 trials, got %d", cfg.Engine.MonteCarloTrials)
	}
	if cfg.Scanner.Concurrency != 8 {
		t.Errorf("expected default concurrency 8, got %d", cfg.Scanner.Concurrency)
	}
	if cfg.Cache.Backend != "memory" {
		t.Errorf("expected default memory backend, got %s", cfg.Cache.Backend)
	}
}

func TestValidateRejectsBadEnvironment(t *testing.T) {
	path := writeConfigFile(t, validYAML)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}

	cfg.App.Environment = "sandbox"
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for unknown environment")
	}
}

func TestValidateRejectsUnknownStatType(t *testing.T) {
	path := writeConfigFile(t, validYAML)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}

	cfg.Scanner.StatTypes = []string{"points", "dunks"}
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for unknown stat type")
	}
}

func TestValidateRejectsZeroWeights(t *testing.T) {
	path := writeConfigFile(t, validYAML)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}

	cfg.Engine.Weights = EnsembleWeights{}
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for zero ensemble weights")
	}
}

func TestValidateRequiresRedisAddr(t *testing.T) {
	path := writeConfigFile(t, validYAML)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}

	cfg.Cache.Backend = "redis"
	cfg.Cache.Redis.Addr = ""
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for redis backend without addr")
	}
}
