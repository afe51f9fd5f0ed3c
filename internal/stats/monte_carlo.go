package stats

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"
)

// MonteCarloConfig configures the simulator
type MonteCarloConfig struct {
	Trials int
	Seed   int64
}

// MonteCarloSimulator draws repeated samples from a truncated normal
// sampling distribution to produce an empirical over-probability and
// confidence intervals. Non-deterministic by default; inject a seed for
// reproducible runs.
type MonteCarloSimulator struct {
	cfg MonteCarloConfig
}

// SimResult holds the empirical outcome of one simulation
type SimResult struct {
	Trials          int
	OverProbability float64
	Mean            float64
	StdDev          float64
	samples         []float64
}

// NewMonteCarloSimulator creates a simulator; Trials <= 0 falls back to
// 10,000 and Seed == 0 seeds from the wall clock.
func NewMonteCarloSimulator(cfg MonteCarloConfig) *MonteCarloSimulator {
	if cfg.Trials <= 0 {
		cfg.Trials = 10000
	}
	return &MonteCarloSimulator{cfg: cfg}
}

// Simulate draws from Normal(mean, stddev) truncated at zero (stat counts
// are non-negative) and returns the empirical distribution summary against
// the line.
func (s *MonteCarloSimulator) Simulate(dist Normal, line float64) (SimResult, error) {
	if dist.Variance < 0 {
		return SimResult{}, fmt.Errorf("variance must be non-negative, got %f", dist.Variance)
	}

	seed := s.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	sd := dist.StdDev()
	samples := make([]float64, s.cfg.Trials)
	over := 0
	for i := 0; i < s.cfg.Trials; i++ {
		draw := dist.Mean + rng.NormFloat64()*sd
		if draw < 0 {
			draw = 0
		}
		samples[i] = draw
		if draw > line {
			over++
		}
	}

	mean, variance := MeanVariance(samples)
	sort.Float64s(samples)

	return SimResult{
		Trials:          s.cfg.Trials,
		OverProbability: float64(over) / float64(s.cfg.Trials),
		Mean:            mean,
		StdDev:          math.Sqrt(variance),
		samples:         samples,
	}, nil
}

// Percentile returns the empirical p-quantile of the simulated samples
func (r SimResult) Percentile(p float64) float64 {
	if len(r.samples) == 0 {
		return 0
	}
	idx := int(math.Floor(p * float64(len(r.samples)-1)))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(r.samples) {
		idx = len(r.samples) - 1
	}
	return r.samples[idx]
}

// Interval returns the central interval covering the given level,
// e.g. level 0.95 spans the 2.5th to 97.5th percentile.
func (r SimResult) Interval(level float64) (float64, float64) {
	p := (1 - level) / 2
	return r.Percentile(p), r.Percentile(1 - p)
}
