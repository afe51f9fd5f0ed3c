// Package main provides the entry point for the prop prediction server.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/courtside/internal/aggregator"
	"github.com/yourusername/courtside/internal/analytics"
	"github.com/yourusername/courtside/internal/api"
	"github.com/yourusername/courtside/internal/cache"
	"github.com/yourusername/courtside/internal/config"
	"github.com/yourusername/courtside/internal/database"
	"github.com/yourusername/courtside/internal/engine"
	"github.com/yourusername/courtside/internal/logger"
	"github.com/yourusername/courtside/internal/metrics"
	"github.com/yourusername/courtside/internal/repository"
	"github.com/yourusername/courtside/internal/scanner"
	"github.com/yourusername/courtside/internal/scheduler"
	"github.com/yourusername/courtside/internal/stream"
)

func main() {
	cfg, err := config.LoadWithDefaults("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if os.Getenv("COURTSIDE_AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			log.Fatalf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when COURTSIDE_AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			log.Fatalf("Failed to load secrets: %v", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	appLog := logger.NewLogger(cfg.App.LogLevel)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"log_level":   cfg.App.LogLevel,
	}).Info("Courtside prop prediction server starting")

	metrics.InitRegistry()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.NewDB(ctx, &cfg.Database)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()
	appLog.Info("Database connection established")

	repos, err := repository.NewRepositories(db)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize repositories")
	}

	predictionCache, closeCache, err := buildCache(cfg)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize prediction cache")
	}
	defer closeCache()
	appLog.WithField("backend", cfg.Cache.Backend).Info("Prediction cache initialized")

	agg := aggregator.New(repos.StatLine, repos.Game, cfg.Aggregator, cfg.Scanner.LookbackGames, appLog)
	teamAnalytics := analytics.NewTeamAnalytics(agg, appLog)
	gameAnalytics := analytics.NewGameAnalytics(agg, appLog)
	playerAnalytics := analytics.NewPlayerAnalytics(agg, teamAnalytics, gameAnalytics, appLog)
	statEngine := engine.New(cfg.Engine, appLog)

	var hub *stream.Hub
	var broadcaster scanner.Broadcaster
	if cfg.Stream.Enabled {
		hub = stream.NewHub(cfg.Stream, appLog)
		go hub.Run(ctx)
		broadcaster = hub
		appLog.Info("Live stream hub started")
	}

	propsScanner, err := scanner.New(repos, playerAnalytics, statEngine, predictionCache, cfg.CacheTTL(), cfg.Scanner, broadcaster, appLog)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize props scanner")
	}

	if cfg.Scheduler.Enabled {
		warmScheduler, err := scheduler.New(cfg.Scheduler, propsScanner, appLog)
		if err != nil {
			appLog.WithError(err).Fatal("Failed to initialize scheduler")
		}
		warmScheduler.Start()
		defer warmScheduler.Stop()
	}

	handler := api.NewHandler(propsScanner, db, hub, appLog)
	server := api.NewServer(api.NewRouter(handler, cfg), cfg, appLog)
	server.Start()

	appLog.WithField("port", cfg.Server.Port).Info("Courtside prop prediction server ready")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	appLog.Info("Shutdown signal received")
	cancel()

	if err := server.Shutdown(); err != nil {
		appLog.WithError(err).Error("API server shutdown error")
	}
	appLog.Info("Courtside prop prediction server stopped")
}

// buildCache selects the configured cache backend
func buildCache(cfg *config.Config) (cache.Cache, func(), error) {
	switch cfg.Cache.Backend {
	case "redis":
		redisCache, err := cache.NewRedisCache(&cfg.Cache.Redis, cfg.CacheTTL())
		if err != nil {
			return nil, nil, err
		}
		return redisCache, func() { _ = redisCache.Close() }, nil
	default:
		return cache.NewMemoryCache(cfg.CacheTTL()), func() {}, nil
	}
}
