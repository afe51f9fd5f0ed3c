package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/yourusername/courtside/internal/database"
	"github.com/yourusername/courtside/internal/models"
)

// PostgresPropLineRepository implements PropLineRepository for PostgreSQL
type PostgresPropLineRepository struct {
	db *database.DB
}

// NewPostgresPropLineRepository creates a new prop line repository
func NewPostgresPropLineRepository(db *database.DB) PropLineRepository {
	return &PostgresPropLineRepository{db: db}
}

// GetLine retrieves the offered line for a (player, game, stat type) tuple.
// Returns models.ErrNotFound when no line is offered.
func (r *PostgresPropLineRepository) GetLine(ctx context.Context, playerID, gameID int64, statType models.StatType) (decimal.Decimal, error) {
	query := `
		SELECT line
		FROM prop_lines
		WHERE player_id = $1 AND game_id = $2 AND stat_type = $3
	`

	var line decimal.Decimal
	err := r.db.GetPool().QueryRow(ctx, query, playerID, gameID, string(statType)).Scan(&line)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Decimal{}, models.ErrNotFound
	}
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("failed to get prop line: %w", err)
	}

	return line, nil
}
