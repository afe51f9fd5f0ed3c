package stats

import (
	"fmt"
	"math"
)

// PoissonCalculator models discrete counting stats with a Poisson
// distribution parameterized by the historical per-game rate.
type PoissonCalculator struct{}

// NewPoissonCalculator creates a new Poisson calculator
func NewPoissonCalculator() *PoissonCalculator {
	return &PoissonCalculator{}
}

// OverProbability returns P(X > line) for rate lambda. Non-integer lines
// are valid: going over a 7.5 line means scoring floor(7.5)+1 = 8 or more.
func (c *PoissonCalculator) OverProbability(lambda, line float64) (float64, error) {
	if lambda < 0 {
		return 0, fmt.Errorf("lambda must be non-negative, got %f", lambda)
	}
	threshold := int(math.Floor(line)) + 1
	if threshold <= 0 {
		return 1, nil
	}
	if lambda == 0 {
		return 0, nil
	}

	// P(X >= threshold) = 1 - sum of PMF below the threshold
	sum := 0.0
	for k := 0; k < threshold; k++ {
		sum += pmf(k, lambda)
	}
	return clampProbability(1 - sum), nil
}

// pmf computes the Poisson P(X = k) in log space to avoid overflow for
// large rates
func pmf(k int, lambda float64) float64 {
	if k < 0 || lambda <= 0 {
		return 0
	}
	logProb := -lambda + float64(k)*math.Log(lambda) - logFactorial(k)
	return math.Exp(logProb)
}

func logFactorial(n int) float64 {
	if n <= 1 {
		return 0
	}
	result := 0.0
	for i := 2; i <= n; i++ {
		result += math.Log(float64(i))
	}
	return result
}
