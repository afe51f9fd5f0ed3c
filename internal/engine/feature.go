// Package engine composes the math primitives into per-stat-type
// distribution estimates via a weighted ensemble.
package engine

import (
	"github.com/yourusername/courtside/internal/models"
)

// FeatureVector is the transient per-(player, game, stat type) input to the
// statistical engine, produced by the analytics services and discarded after
// estimation.
type FeatureVector struct {
	PlayerID int64
	StatType models.StatType

	// Values holds realized stat values, most-recent-first
	Values   []float64
	Mean     float64
	Variance float64

	// Contextual multipliers; 1.0 is neutral
	FormFactor         float64
	OpponentAdjustment float64
	PaceFactor         float64
	HomeAdvantage      float64

	Home       bool
	RestDays   int
	SampleSize int
}

// formWeight controls how much recent form shifts the season mean
const formWeight = 0.5

// AdjustedMean applies the contextual multipliers to the raw historical
// mean. Unset (zero) factors are treated as neutral.
func (fv FeatureVector) AdjustedMean() float64 {
	m := fv.Mean
	if fv.FormFactor > 0 {
		m *= 1 + formWeight*(fv.FormFactor-1)
	}
	if fv.OpponentAdjustment > 0 {
		m *= fv.OpponentAdjustment
	}
	if fv.PaceFactor > 0 {
		m *= fv.PaceFactor
	}
	if fv.HomeAdvantage > 0 {
		m *= fv.HomeAdvantage
	}
	if m < 0 {
		m = 0
	}
	return m
}

// ChronologicalValues returns the realized values oldest-first, the order
// regression fitting expects
func (fv FeatureVector) ChronologicalValues() []float64 {
	out := make([]float64, len(fv.Values))
	for i, v := range fv.Values {
		out[len(fv.Values)-1-i] = v
	}
	return out
}
