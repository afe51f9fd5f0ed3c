package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/courtside/internal/database"
	"github.com/yourusername/courtside/internal/models"
)

const (
	errScanStatLine = "failed to scan stat line: %w"

	statLineColumns = `
		player_id, game_id, game_date, opponent, home, minutes,
		points, rebounds, assists, steals, blocks, turnovers, threes_made
	`
)

// PostgresStatLineRepository implements StatLineRepository for PostgreSQL
type PostgresStatLineRepository struct {
	db *database.DB
}

// NewPostgresStatLineRepository creates a new stat line repository
func NewPostgresStatLineRepository(db *database.DB) StatLineRepository {
	return &PostgresStatLineRepository{db: db}
}

// ListRecentByPlayer retrieves a player's most recent stat lines,
// most-recent-first, bounded by limit
func (r *PostgresStatLineRepository) ListRecentByPlayer(ctx context.Context, playerID int64, before time.Time, limit int) ([]models.StatLine, error) {
	query := `
		SELECT ` + statLineColumns + `
		FROM stat_lines
		WHERE player_id = $1 AND game_date < $2
		ORDER BY game_date DESC
		LIMIT $3
	`

	rows, err := r.db.GetPool().Query(ctx, query, playerID, before, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list stat lines for player %d: %w", playerID, err)
	}
	defer rows.Close()

	return scanStatLines(rows)
}

// ListRecentAgainstTeam retrieves recent stat lines recorded against the
// given team, most-recent-first. Used for opponent defensive adjustments.
func (r *PostgresStatLineRepository) ListRecentAgainstTeam(ctx context.Context, team string, before time.Time, limit int) ([]models.StatLine, error) {
	query := `
		SELECT ` + statLineColumns + `
		FROM stat_lines
		WHERE opponent = $1 AND game_date < $2
		ORDER BY game_date DESC
		LIMIT $3
	`

	rows, err := r.db.GetPool().Query(ctx, query, team, before, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list stat lines against team %s: %w", team, err)
	}
	defer rows.Close()

	return scanStatLines(rows)
}

// GetRealized retrieves the realized stat line for a played game
func (r *PostgresStatLineRepository) GetRealized(ctx context.Context, playerID, gameID int64) (*models.StatLine, error) {
	query := `
		SELECT ` + statLineColumns + `
		FROM stat_lines
		WHERE player_id = $1 AND game_id = $2
	`

	line := &models.StatLine{}
	err := r.db.GetPool().QueryRow(ctx, query, playerID, gameID).Scan(
		&line.PlayerID, &line.GameID, &line.GameDate, &line.Opponent, &line.Home,
		&line.Minutes, &line.Points, &line.Rebounds, &line.Assists,
		&line.Steals, &line.Blocks, &line.Turnovers, &line.ThreesMade,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get realized stat line: %w", err)
	}

	return line, nil
}

func scanStatLines(rows pgx.Rows) ([]models.StatLine, error) {
	var lines []models.StatLine
	for rows.Next() {
		var line models.StatLine
		if err := rows.Scan(
			&line.PlayerID, &line.GameID, &line.GameDate, &line.Opponent, &line.Home,
			&line.Minutes, &line.Points, &line.Rebounds, &line.Assists,
			&line.Steals, &line.Blocks, &line.Turnovers, &line.ThreesMade,
		); err != nil {
			return nil, fmt.Errorf(errScanStatLine, err)
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stat lines: %w", err)
	}

	return lines, nil
}
