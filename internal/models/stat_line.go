package models

import (
	"fmt"
	"time"
)

// StatType identifies a statistical category being predicted
type StatType string

// Supported stat types
const (
	StatPoints   StatType = "points"
	StatRebounds StatType = "rebounds"
	StatAssists  StatType = "assists"
	StatThrees   StatType = "threes"
)

// AllStatTypes returns the stat types the scanner evaluates by default
func AllStatTypes() []StatType {
	return []StatType{StatPoints, StatRebounds, StatAssists, StatThrees}
}

// ParseStatType validates and normalizes a stat type string
func ParseStatType(s string) (StatType, error) {
	switch StatType(s) {
	case StatPoints, StatRebounds, StatAssists, StatThrees:
		return StatType(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatType, s)
	}
}

// StatLine is the immutable per-player per-game historical record.
// It is the source of truth for all estimation and is never mutated
// after ingestion.
type StatLine struct {
	PlayerID   int64     `db:"player_id" json:"player_id" validate:"required,gt=0"`
	GameID     int64     `db:"game_id" json:"game_id" validate:"required,gt=0"`
	GameDate   time.Time `db:"game_date" json:"game_date" validate:"required"`
	Opponent   string    `db:"opponent" json:"opponent"`
	Home       bool      `db:"home" json:"home"`
	Minutes    float64   `db:"minutes" json:"minutes" validate:"gte=0"`
	Points     float64   `db:"points" json:"points" validate:"gte=0"`
	Rebounds   float64   `db:"rebounds" json:"rebounds" validate:"gte=0"`
	Assists    float64   `db:"assists" json:"assists" validate:"gte=0"`
	Steals     float64   `db:"steals" json:"steals" validate:"gte=0"`
	Blocks     float64   `db:"blocks" json:"blocks" validate:"gte=0"`
	Turnovers  float64   `db:"turnovers" json:"turnovers" validate:"gte=0"`
	ThreesMade float64   `db:"threes_made" json:"threes_made" validate:"gte=0"`
}

// Value returns the recorded value for the given stat type
func (s StatLine) Value(t StatType) float64 {
	switch t {
	case StatPoints:
		return s.Points
	case StatRebounds:
		return s.Rebounds
	case StatAssists:
		return s.Assists
	case StatThrees:
		return s.ThreesMade
	default:
		return 0
	}
}

// StatValues extracts the values for one stat type from a sequence of
// stat lines, preserving order
func StatValues(lines []StatLine, t StatType) []float64 {
	values := make([]float64, len(lines))
	for i, line := range lines {
		values[i] = line.Value(t)
	}
	return values
}
