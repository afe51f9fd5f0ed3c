package repository

import (
	"fmt"

	"github.com/yourusername/courtside/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Player   PlayerRepository
	Game     GameRepository
	StatLine StatLineRepository
	PropLine PropLineRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Player:   NewPostgresPlayerRepository(db),
		Game:     NewPostgresGameRepository(db),
		StatLine: NewPostgresStatLineRepository(db),
		PropLine: NewPostgresPropLineRepository(db),
	}, nil
}
