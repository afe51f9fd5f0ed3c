package analytics

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/courtside/internal/aggregator"
	"github.com/yourusername/courtside/internal/models"
)

// League-average per-game totals a single opponent allows, used as the
// baseline for defensive and pace adjustments
var leagueAllowedPerGame = map[models.StatType]float64{
	models.StatPoints:   82.0,
	models.StatRebounds: 33.0,
	models.StatAssists:  19.0,
	models.StatThrees:   7.5,
}

// TeamAnalytics derives opponent-level adjustments from what a team has
// allowed in its recent games
type TeamAnalytics struct {
	agg    *aggregator.Aggregator
	logger *logrus.Logger
}

// NewTeamAnalytics creates a team analytics service
func NewTeamAnalytics(agg *aggregator.Aggregator, logger *logrus.Logger) *TeamAnalytics {
	return &TeamAnalytics{agg: agg, logger: logger}
}

// DefensiveFactor compares what the team allows for the stat type against
// the league baseline. Above 1.0 means a favorable matchup for the player.
// Neutral on missing history or aggregation failure; matchup adjustments
// are a refinement, never a reason to drop a tuple.
func (ta *TeamAnalytics) DefensiveFactor(ctx context.Context, team string, statType models.StatType, before time.Time) float64 {
	allowed := ta.allowedPerGame(ctx, team, statType, before)
	baseline := leagueAllowedPerGame[statType]
	if allowed <= 0 || baseline <= 0 {
		return 1
	}
	return clampFactor(allowed/baseline, 0.85, 1.15)
}

// PaceFactor estimates the opponent's pace from the points it allows
// relative to league average. Fast teams concede more possessions, which
// lifts every counting stat.
func (ta *TeamAnalytics) PaceFactor(ctx context.Context, team string, before time.Time) float64 {
	allowed := ta.allowedPerGame(ctx, team, models.StatPoints, before)
	baseline := leagueAllowedPerGame[models.StatPoints]
	if allowed <= 0 || baseline <= 0 {
		return 1
	}
	return clampFactor(allowed/baseline, 0.92, 1.08)
}

// allowedPerGame sums opposing stat lines per game and averages across the
// team's recent games
func (ta *TeamAnalytics) allowedPerGame(ctx context.Context, team string, statType models.StatType, before time.Time) float64 {
	lines, err := ta.agg.OpponentStats(ctx, team, before)
	if err != nil {
		if ta.logger != nil {
			ta.logger.WithError(err).WithField("team", team).Debug("Opponent stats unavailable, using neutral factor")
		}
		return 0
	}
	if len(lines) == 0 {
		return 0
	}

	totals := make(map[int64]float64)
	for _, line := range lines {
		totals[line.GameID] += line.Value(statType)
	}

	sum := 0.0
	for _, total := range totals {
		sum += total
	}
	return sum / float64(len(totals))
}
