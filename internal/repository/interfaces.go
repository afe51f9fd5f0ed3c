// Package repository provides read access to the sports statistics tables.
// The prediction core never writes to the system of record; ingestion owns
// the schema and all mutations.
package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/courtside/internal/models"
)

// PlayerRepository provides access to player records
type PlayerRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Player, error)
	ListActiveByTeam(ctx context.Context, team string) ([]models.Player, error)
}

// GameRepository provides access to game records
type GameRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Game, error)
	ListUpcoming(ctx context.Context, from time.Time, within time.Duration) ([]models.Game, error)
	ListRecentByTeam(ctx context.Context, team string, before time.Time, limit int) ([]models.Game, error)
}

// StatLineRepository provides access to historical per-player per-game stats
type StatLineRepository interface {
	ListRecentByPlayer(ctx context.Context, playerID int64, before time.Time, limit int) ([]models.StatLine, error)
	ListRecentAgainstTeam(ctx context.Context, team string, before time.Time, limit int) ([]models.StatLine, error)
	GetRealized(ctx context.Context, playerID, gameID int64) (*models.StatLine, error)
}

// PropLineRepository provides access to offered over/under lines
type PropLineRepository interface {
	GetLine(ctx context.Context, playerID, gameID int64, statType models.StatType) (decimal.Decimal, error)
}
