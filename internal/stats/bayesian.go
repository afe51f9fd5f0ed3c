package stats

import (
	"github.com/yourusername/courtside/internal/models"
)

// BayesianCalculator performs conjugate-normal updating of a prior belief
// about a player's per-game rate with observed stat values.
type BayesianCalculator struct{}

// NewBayesianCalculator creates a new Bayesian calculator
func NewBayesianCalculator() *BayesianCalculator {
	return &BayesianCalculator{}
}

// Update combines a prior Normal with observations and returns the
// posterior. Fails with models.ErrInsufficientData when there are no
// observations; priors alone carry no player-specific signal.
func (c *BayesianCalculator) Update(prior Normal, observations []float64) (Normal, error) {
	if len(observations) == 0 {
		return Normal{}, models.ErrInsufficientData
	}

	sampleMean, sampleVariance := MeanVariance(observations)
	n := float64(len(observations))

	// A single observation has zero sample variance; fall back to the
	// prior's spread so the likelihood precision stays finite.
	if sampleVariance <= 0 {
		sampleVariance = prior.Variance
	}
	if sampleVariance <= 0 {
		sampleVariance = 1
	}

	priorVariance := prior.Variance
	if priorVariance <= 0 {
		priorVariance = sampleVariance
	}

	// Conjugate-normal update with known observation variance:
	// posterior precision is the sum of prior and data precision.
	priorPrecision := 1 / priorVariance
	dataPrecision := n / sampleVariance

	posteriorVariance := 1 / (priorPrecision + dataPrecision)
	posteriorMean := posteriorVariance * (prior.Mean*priorPrecision + sampleMean*dataPrecision)

	return Normal{Mean: posteriorMean, Variance: posteriorVariance}, nil
}

// PredictiveDistribution returns the posterior predictive for the next
// observation: posterior uncertainty plus observation noise.
func (c *BayesianCalculator) PredictiveDistribution(posterior Normal, observationVariance float64) Normal {
	if observationVariance < 0 {
		observationVariance = 0
	}
	return Normal{
		Mean:     posterior.Mean,
		Variance: posterior.Variance + observationVariance,
	}
}
