// Package stats provides the stateless numerical calculators composed by the
// statistical engine: Bayesian updating, Poisson tail probabilities, Monte
// Carlo simulation and regression fitting.
package stats

import "math"

// Normal is a normal distribution parameterized by mean and variance
type Normal struct {
	Mean     float64
	Variance float64
}

// StdDev returns the standard deviation
func (n Normal) StdDev() float64 {
	if n.Variance <= 0 {
		return 0
	}
	return math.Sqrt(n.Variance)
}

// CDF returns P(X <= x)
func (n Normal) CDF(x float64) float64 {
	sd := n.StdDev()
	if sd == 0 {
		if x < n.Mean {
			return 0
		}
		return 1
	}
	return 0.5 * math.Erfc((n.Mean-x)/(sd*math.Sqrt2))
}

// TailProbability returns P(X > x)
func (n Normal) TailProbability(x float64) float64 {
	return 1 - n.CDF(x)
}

// MeanVariance computes the sample mean and (population) variance
func MeanVariance(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values))
	return mean, variance
}

func clampProbability(p float64) float64 {
	return math.Min(1, math.Max(0, p))
}
