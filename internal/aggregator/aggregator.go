// Package aggregator loads and shapes historical stat records for the
// analytics services and the statistical engine. Every repository call is
// rate limited, bounded by a timeout, and retried with backoff on transient
// failures so a flaky data layer degrades to an error instead of a hang.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/yourusername/courtside/internal/config"
	"github.com/yourusername/courtside/internal/metrics"
	"github.com/yourusername/courtside/internal/models"
	"github.com/yourusername/courtside/internal/repository"
)

// Aggregator provides windowed access to historical stat lines and games
type Aggregator struct {
	stats    repository.StatLineRepository
	games    repository.GameRepository
	limiter  *rate.Limiter
	cfg      config.AggregatorConfig
	lookback int
	logger   *logrus.Logger
	loads    atomic.Uint64
}

// New creates an aggregator over the given repositories
func New(stats repository.StatLineRepository, games repository.GameRepository, cfg config.AggregatorConfig, lookbackGames int, logger *logrus.Logger) *Aggregator {
	if lookbackGames <= 0 {
		lookbackGames = 20
	}
	return &Aggregator{
		stats:    stats,
		games:    games,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		cfg:      cfg,
		lookback: lookbackGames,
		logger:   logger,
	}
}

// RecentStats returns a player's stat lines before the cutoff,
// most-recent-first, bounded by the lookback window. An empty result is
// valid: a player with no history is handled downstream, not here.
func (a *Aggregator) RecentStats(ctx context.Context, playerID int64, before time.Time) ([]models.StatLine, error) {
	var lines []models.StatLine
	err := a.withRetry(ctx, "recent stats", func(callCtx context.Context) error {
		var err error
		lines, err = a.stats.ListRecentByPlayer(callCtx, playerID, before, a.lookback)
		return err
	})
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// OpponentStats returns recent stat lines recorded against a team,
// most-recent-first, for defensive adjustment
func (a *Aggregator) OpponentStats(ctx context.Context, team string, before time.Time) ([]models.StatLine, error) {
	var lines []models.StatLine
	err := a.withRetry(ctx, "opponent stats", func(callCtx context.Context) error {
		var err error
		lines, err = a.stats.ListRecentAgainstTeam(callCtx, team, before, a.lookback*4)
		return err
	})
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// RecentTeamGames returns a team's recent completed games, most-recent-first
func (a *Aggregator) RecentTeamGames(ctx context.Context, team string, before time.Time) ([]models.Game, error) {
	var games []models.Game
	err := a.withRetry(ctx, "recent team games", func(callCtx context.Context) error {
		var err error
		games, err = a.games.ListRecentByTeam(callCtx, team, before, a.lookback)
		return err
	})
	if err != nil {
		return nil, err
	}
	return games, nil
}

// RealizedStat returns the realized stat line for a played game, or
// models.ErrNotFound if the player did not record one
func (a *Aggregator) RealizedStat(ctx context.Context, playerID, gameID int64) (*models.StatLine, error) {
	var line *models.StatLine
	err := a.withRetry(ctx, "realized stat", func(callCtx context.Context) error {
		var err error
		line, err = a.stats.GetRealized(callCtx, playerID, gameID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return line, nil
}

// Loads returns the number of repository loads performed. Used by cache
// tests to verify that a warm cache short-circuits recomputation.
func (a *Aggregator) Loads() uint64 {
	return a.loads.Load()
}

// withRetry runs one repository call under the rate limiter with a
// per-call timeout, retrying transient failures with linear backoff.
// Exhausted retries surface as models.ErrTransientData.
func (a *Aggregator) withRetry(ctx context.Context, op string, call func(context.Context) error) error {
	if err := a.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}

	var lastErr error
	attempts := a.cfg.RetryAttempts + 1
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			metrics.AggregatorRetriesTotal.Inc()
			backoff := time.Duration(attempt) * time.Duration(a.cfg.RetryBackoffMS) * time.Millisecond
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, time.Duration(a.cfg.TimeoutSeconds)*time.Second)
		a.loads.Add(1)
		err := call(callCtx)
		cancel()

		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}

		lastErr = err
		if a.logger != nil {
			a.logger.WithError(err).WithField("operation", op).
				WithField("attempt", attempt+1).Debug("Transient aggregation failure, retrying")
		}
	}

	return fmt.Errorf("%w: %s after %d attempts: %v", models.ErrTransientData, op, attempts, lastErr)
}

// isRetryable classifies failures: entity misses and caller cancellation
// are final, everything else is assumed transient.
func isRetryable(err error) bool {
	if errors.Is(err, models.ErrNotFound) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return true
}
