// Package analytics derives contextual features (form, matchup, pace)
// layered onto raw historical aggregates before they reach the statistical
// engine. All services are pure functions of the aggregator's data and
// degrade to neutral factors on missing history.
package analytics

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/courtside/internal/aggregator"
	"github.com/yourusername/courtside/internal/engine"
	"github.com/yourusername/courtside/internal/models"
)

// formWindow is how many recent games define "current form"
const formWindow = 5

// PlayerAnalytics assembles the full feature vector for one
// (player, game, stat type) tuple
type PlayerAnalytics struct {
	agg    *aggregator.Aggregator
	team   *TeamAnalytics
	game   *GameAnalytics
	logger *logrus.Logger
}

// NewPlayerAnalytics creates a player analytics service
func NewPlayerAnalytics(agg *aggregator.Aggregator, team *TeamAnalytics, game *GameAnalytics, logger *logrus.Logger) *PlayerAnalytics {
	return &PlayerAnalytics{agg: agg, team: team, game: game, logger: logger}
}

// Features builds the feature vector for the player in the upcoming game.
// An empty history yields a zero-sample vector; the engine decides whether
// that is enough to estimate from.
func (pa *PlayerAnalytics) Features(ctx context.Context, player *models.Player, game *models.Game, statType models.StatType) (engine.FeatureVector, error) {
	lines, err := pa.agg.RecentStats(ctx, player.ID, game.StartsAt)
	if err != nil {
		return engine.FeatureVector{}, fmt.Errorf("failed to aggregate stats for player %d: %w", player.ID, err)
	}

	values := models.StatValues(lines, statType)
	mean, variance := meanVariance(values)

	fv := engine.FeatureVector{
		PlayerID:           player.ID,
		StatType:           statType,
		Values:             values,
		Mean:               mean,
		Variance:           variance,
		FormFactor:         formFactor(values, mean),
		OpponentAdjustment: 1,
		PaceFactor:         1,
		HomeAdvantage:      1,
		SampleSize:         len(values),
	}

	opponent := game.Opponent(player.Team)
	if opponent != "" {
		fv.OpponentAdjustment = pa.team.DefensiveFactor(ctx, opponent, statType, game.StartsAt)
		fv.PaceFactor = pa.team.PaceFactor(ctx, opponent, game.StartsAt)
	}

	gameCtx := pa.game.Context(ctx, game, player.Team)
	fv.Home = gameCtx.Home
	fv.HomeAdvantage = gameCtx.HomeAdvantage
	fv.RestDays = gameCtx.RestDays

	return fv, nil
}

// formFactor compares the recent-game average to the season mean.
// Neutral (1.0) when there is not enough history to tell.
func formFactor(values []float64, seasonMean float64) float64 {
	if len(values) < formWindow || seasonMean <= 0 {
		return 1
	}

	recentMean, _ := meanVariance(values[:formWindow])
	factor := recentMean / seasonMean

	// Cap so a short hot streak cannot swamp the season baseline
	return clampFactor(factor, 0.7, 1.3)
}

func meanVariance(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values))
	return mean, variance
}

func clampFactor(f, lo, hi float64) float64 {
	if f < lo {
		return lo
	}
	if f > hi {
		return hi
	}
	return f
}
