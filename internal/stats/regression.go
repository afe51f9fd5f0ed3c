package stats

import (
	"fmt"
	"math"

	"github.com/yourusername/courtside/internal/models"
)

// RegressionAnalyzer fits trend models over recent-game feature/outcome
// pairs. Linear fits project the next-game stat value; logistic fits are
// used by model validation for calibration checks.
type RegressionAnalyzer struct {
	minSamples int
}

// LinearFit holds the result of a least-squares linear fit
type LinearFit struct {
	Slope          float64
	Intercept      float64
	ResidualStdDev float64
	N              int
}

// Predict evaluates the fitted line at x
func (f LinearFit) Predict(x float64) float64 {
	return f.Intercept + f.Slope*x
}

// LogisticFit holds the result of a logistic fit of outcome on one feature
type LogisticFit struct {
	Slope     float64
	Intercept float64
	N         int
}

// Predict returns the fitted probability at x
func (f LogisticFit) Predict(x float64) float64 {
	return sigmoid(f.Intercept + f.Slope*x)
}

// NewRegressionAnalyzer creates an analyzer; minSamples below 2 is raised
// to the default of 3.
func NewRegressionAnalyzer(minSamples int) *RegressionAnalyzer {
	if minSamples < 2 {
		minSamples = 3
	}
	return &RegressionAnalyzer{minSamples: minSamples}
}

// FitLinear fits y = intercept + slope*x by ordinary least squares.
// Fails with models.ErrInsufficientData below the minimum sample size.
func (r *RegressionAnalyzer) FitLinear(xs, ys []float64) (LinearFit, error) {
	if len(xs) != len(ys) {
		return LinearFit{}, fmt.Errorf("mismatched sample lengths: %d vs %d", len(xs), len(ys))
	}
	if len(xs) < r.minSamples {
		return LinearFit{}, models.ErrInsufficientData
	}

	n := float64(len(xs))
	var sumX, sumY, sumXY, sumXX float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumXX += xs[i] * xs[i]
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return LinearFit{}, models.ErrInsufficientData
	}

	slope := (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n

	var residualSS float64
	for i := range xs {
		resid := ys[i] - (intercept + slope*xs[i])
		residualSS += resid * resid
	}
	residualStdDev := math.Sqrt(residualSS / n)

	return LinearFit{
		Slope:          slope,
		Intercept:      intercept,
		ResidualStdDev: residualStdDev,
		N:              len(xs),
	}, nil
}

// FitLogistic fits a one-feature logistic model by gradient descent.
// Outcomes must be 0 or 1. Fails with models.ErrInsufficientData below
// the minimum sample size.
func (r *RegressionAnalyzer) FitLogistic(xs, outcomes []float64) (LogisticFit, error) {
	if len(xs) != len(outcomes) {
		return LogisticFit{}, fmt.Errorf("mismatched sample lengths: %d vs %d", len(xs), len(outcomes))
	}
	if len(xs) < r.minSamples {
		return LogisticFit{}, models.ErrInsufficientData
	}

	const (
		learningRate = 0.1
		iterations   = 2000
	)

	var slope, intercept float64
	n := float64(len(xs))

	for iter := 0; iter < iterations; iter++ {
		var gradSlope, gradIntercept float64
		for i := range xs {
			pred := sigmoid(intercept + slope*xs[i])
			err := pred - outcomes[i]
			gradSlope += err * xs[i]
			gradIntercept += err
		}
		slope -= learningRate * gradSlope / n
		intercept -= learningRate * gradIntercept / n
	}

	return LogisticFit{Slope: slope, Intercept: intercept, N: len(xs)}, nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
