// Package main provides a CLI for scoring past predictions against
// realized stat lines.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/courtside/internal/config"
	"github.com/yourusername/courtside/internal/database"
	"github.com/yourusername/courtside/internal/logger"
	"github.com/yourusername/courtside/internal/repository"
	"github.com/yourusername/courtside/internal/scanner"
	"github.com/yourusername/courtside/internal/stats"
	"github.com/yourusername/courtside/internal/validation"
)

var (
	configFile string
	batchFile  string
	appLog     *logrus.Logger
	cfg        *config.Config
	db         *database.DB
	repos      *repository.Repositories
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().StringVarP(&batchFile, "batch", "b", "", "Path to a JSON batch file produced by the scanner")
	rootCmd.MarkFlagRequired("batch")
}

var rootCmd = &cobra.Command{
	Use:   "validate",
	Short: "Score a prediction batch against realized stats",
	Long:  `Joins a saved prediction batch with the stat lines players actually produced and reports Brier score, hit rate and calibration bands.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			db.Close()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
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

	repos, err = repository.NewRepositories(db)
	return err
}

func run(ctx context.Context) error {
	data, err := os.ReadFile(batchFile)
	if err != nil {
		return fmt.Errorf("failed to read batch file: %w", err)
	}

	batch, err := scanner.DecodeBatch(data)
	if err != nil {
		return fmt.Errorf("failed to decode batch: %w", err)
	}

	validator := validation.New(repos.StatLine, stats.NewRegressionAnalyzer(cfg.Engine.MinRegressionSamples), appLog)

	runCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	report, err := validator.EvaluateBatch(runCtx, batch.Records)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
