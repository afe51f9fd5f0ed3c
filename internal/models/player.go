package models

import "time"

// Player represents a WNBA player on an active roster
type Player struct {
	ID        int64     `db:"id" json:"id" validate:"required,gt=0"`
	Name      string    `db:"name" json:"name" validate:"required"`
	Team      string    `db:"team" json:"team" validate:"required"`
	Position  string    `db:"position" json:"position"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Game represents a scheduled or completed WNBA game
type Game struct {
	ID        int64     `db:"id" json:"id" validate:"required,gt=0"`
	HomeTeam  string    `db:"home_team" json:"home_team" validate:"required"`
	AwayTeam  string    `db:"away_team" json:"away_team" validate:"required"`
	Venue     string    `db:"venue" json:"venue"`
	StartsAt  time.Time `db:"starts_at" json:"starts_at" validate:"required"`
	Status    string    `db:"status" json:"status" validate:"required,oneof=scheduled live final postponed"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// IsUpcoming reports whether the game has not yet started
func (g *Game) IsUpcoming(now time.Time) bool {
	return g.Status == "scheduled" && g.StartsAt.After(now)
}

// Involves reports whether the given team plays in this game
func (g *Game) Involves(team string) bool {
	return g.HomeTeam == team || g.AwayTeam == team
}

// Opponent returns the opposing team for the given team, or empty string
// if the team is not playing in this game
func (g *Game) Opponent(team string) string {
	switch team {
	case g.HomeTeam:
		return g.AwayTeam
	case g.AwayTeam:
		return g.HomeTeam
	default:
		return ""
	}
}
