package analytics

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/courtside/internal/aggregator"
	"github.com/yourusername/courtside/internal/models"
)

// Home court lifts scoring a few percent league-wide; away trips cost
// about the same
const (
	homeAdvantage = 1.03
	awayPenalty   = 0.97
)

// GameContext holds per-game situational features for one team
type GameContext struct {
	Home          bool
	HomeAdvantage float64
	RestDays      int
}

// GameAnalytics derives situational context for an upcoming game
type GameAnalytics struct {
	agg    *aggregator.Aggregator
	logger *logrus.Logger
}

// NewGameAnalytics creates a game analytics service
func NewGameAnalytics(agg *aggregator.Aggregator, logger *logrus.Logger) *GameAnalytics {
	return &GameAnalytics{agg: agg, logger: logger}
}

// Context computes home/away and rest for the given team. Rest defaults
// to a full week when the team has no prior games on record.
func (ga *GameAnalytics) Context(ctx context.Context, game *models.Game, team string) GameContext {
	gc := GameContext{
		Home:          game.HomeTeam == team,
		HomeAdvantage: awayPenalty,
		RestDays:      7,
	}
	if gc.Home {
		gc.HomeAdvantage = homeAdvantage
	}

	recent, err := ga.agg.RecentTeamGames(ctx, team, game.StartsAt)
	if err != nil {
		if ga.logger != nil {
			ga.logger.WithError(err).WithField("team", team).Debug("Recent games unavailable, using default rest")
		}
		return gc
	}
	if len(recent) > 0 {
		days := int(game.StartsAt.Sub(recent[0].StartsAt).Hours() / 24)
		if days >= 0 {
			gc.RestDays = days
		}
	}

	return gc
}
