// Package main provides a CLI for running prop scans from the terminal.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/courtside/internal/aggregator"
	"github.com/yourusername/courtside/internal/analytics"
	"github.com/yourusername/courtside/internal/cache"
	"github.com/yourusername/courtside/internal/config"
	"github.com/yourusername/courtside/internal/database"
	"github.com/yourusername/courtside/internal/engine"
	"github.com/yourusername/courtside/internal/logger"
	"github.com/yourusername/courtside/internal/models"
	"github.com/yourusername/courtside/internal/repository"
	"github.com/yourusername/courtside/internal/scanner"
)

var (
	configFile string
	appLog     *logrus.Logger
	cfg        *config.Config
	db         *database.DB
	props      *scanner.PropsScanner
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.AddCommand(allCmd, playerCmd, gameCmd)
}

var rootCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run prop prediction scans",
	Long:  `Evaluates (player, game, stat type) tuples for upcoming games and prints prediction records as JSON.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			db.Close()
		}
	},
}

var allCmd = &cobra.Command{
	Use:   "all",
	Short: "Scan every eligible player in upcoming games",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
		defer cancel()
		records, err := props.ScanAll(ctx)
		if err != nil {
			return err
		}
		return printRecords(records)
	},
}

var playerCmd = &cobra.Command{
	Use:   "player [id]",
	Short: "Scan one player's upcoming games",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()
		records, err := props.ScanPlayer(ctx, id)
		if err != nil {
			return err
		}
		return printRecords(records)
	},
}

var gameCmd = &cobra.Command{
	Use:   "game [id]",
	Short: "Scan both rosters of one game",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()
		records, err := props.ScanGame(ctx, id)
		if err != nil {
			return err
		}
		return printRecords(records)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func setup() error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	appLog = logger.NewLogger(cfg.App.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err = database.NewDB(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	repos, err := repository.NewRepositories(db)
	if err != nil {
		return err
	}

	agg := aggregator.New(repos.StatLine, repos.Game, cfg.Aggregator, cfg.Scanner.LookbackGames, appLog)
	team := analytics.NewTeamAnalytics(agg, appLog)
	game := analytics.NewGameAnalytics(agg, appLog)
	player := analytics.NewPlayerAnalytics(agg, team, game, appLog)
	statEngine := engine.New(cfg.Engine, appLog)

	// One-shot scans always recompute, so a process-local cache suffices
	props, err = scanner.New(repos, player, statEngine, cache.NewMemoryCache(cfg.CacheTTL()), cfg.CacheTTL(), cfg.Scanner, nil, appLog)
	return err
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", models.ErrInvalidID, raw)
	}
	return id, nil
}

func printRecords(records []models.PredictionRecord) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{"data": records})
}
