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

const errScanGame = "failed to scan game: %w"

// PostgresGameRepository implements GameRepository for PostgreSQL
type PostgresGameRepository struct {
	db *database.DB
}

// NewPostgresGameRepository creates a new game repository
func NewPostgresGameRepository(db *database.DB) GameRepository {
	return &PostgresGameRepository{db: db}
}

// GetByID retrieves a game by ID
func (r *PostgresGameRepository) GetByID(ctx context.Context, id int64) (*models.Game, error) {
	query := `
		SELECT id, home_team, away_team, venue, starts_at, status, created_at, updated_at
		FROM games WHERE id = $1
	`

	game := &models.Game{}
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&game.ID, &game.HomeTeam, &game.AwayTeam, &game.Venue,
		&game.StartsAt, &game.Status, &game.CreatedAt, &game.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

// ListUpcoming retrieves scheduled games starting within the given window
func (r *PostgresGameRepository) ListUpcoming(ctx context.Context, from time.Time, within time.Duration) ([]models.Game, error) {
	query := `
		SELECT id, home_team, away_team, venue, starts_at, status, created_at, updated_at
		FROM games
		WHERE status = 'scheduled' AND starts_at > $1 AND starts_at <= $2
		ORDER BY starts_at
	`

	rows, err := r.db.GetPool().Query(ctx, query, from, from.Add(within))
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming games: %w", err)
	}
	defer rows.Close()

	return scanGames(rows)
}

// ListRecentByTeam retrieves a team's most recent completed games
func (r *PostgresGameRepository) ListRecentByTeam(ctx context.Context, team string, before time.Time, limit int) ([]models.Game, error) {
	query := `
		SELECT id, home_team, away_team, venue, starts_at, status, created_at, updated_at
		FROM games
		WHERE status = 'final' AND starts_at < $2 AND (home_team = $1 OR away_team = $1)
		ORDER BY starts_at DESC
		LIMIT $3
	`

	rows, err := r.db.GetPool().Query(ctx, query, team, before, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent games for team %s: %w", team, err)
	}
	defer rows.Close()

	return scanGames(rows)
}

func scanGames(rows pgx.Rows) ([]models.Game, error) {
	var games []models.Game
	for rows.Next() {
		var game models.Game
		if err := rows.Scan(
			&game.ID, &game.HomeTeam, &game.AwayTeam, &game.Venue,
			&game.StartsAt, &game.Status, &game.CreatedAt, &game.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf(errScanGame, err)
		}
		games = append(games, game)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate games: %w", err)
	}

	return games, nil
}
