package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PropLine is an offered over/under threshold for a player stat in a
// specific game. Line values are stored as decimals so half-point lines
// survive round-trips exactly.
type PropLine struct {
	PlayerID int64           `db:"player_id" json:"player_id" validate:"required,gt=0"`
	GameID   int64           `db:"game_id" json:"game_id" validate:"required,gt=0"`
	StatType StatType        `db:"stat_type" json:"stat_type" validate:"required"`
	Line     decimal.Decimal `db:"line" json:"line"`
}

// Interval is a symmetric confidence interval around the expected value
type Interval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Contains reports whether the value falls inside the interval
func (iv Interval) Contains(v float64) bool {
	return v >= iv.Lower && v <= iv.Upper
}

// Width returns the interval width
func (iv Interval) Width() float64 {
	return iv.Upper - iv.Lower
}

// DistributionSummary is the combined output of the calculator ensemble
// for one stat type. Invariants: OverProbability in [0,1],
// StandardDeviation >= 0, confidence intervals nested by level.
type DistributionSummary struct {
	OverProbability     float64             `json:"over_probability" validate:"gte=0,lte=1"`
	ExpectedValue       float64             `json:"expected_value"`
	StandardDeviation   float64             `json:"standard_deviation" validate:"gte=0"`
	ConfidenceIntervals map[string]Interval `json:"confidence_intervals"`
}

// Confidence interval levels reported on every prediction
const (
	CI50 = "50%"
	CI80 = "80%"
	CI95 = "95%"
)

// PredictionRecord is the externally visible prediction for one
// (player, game, stat type, line) tuple. Records are immutable once
// produced within a cache window.
type PredictionRecord struct {
	PlayerID   int64               `json:"player_id"`
	PlayerName string              `json:"player_name"`
	GameID     int64               `json:"game_id"`
	GameDate   time.Time           `json:"game_date"`
	StatType   StatType            `json:"stat_type"`
	LineValue  decimal.Decimal     `json:"line_value"`
	Prediction DistributionSummary `json:"prediction"`
}
