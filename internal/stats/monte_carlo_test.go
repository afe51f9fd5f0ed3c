package stats

import (
	"math"
	"testing"
)

func TestMonteCarloSeededDeterminism(t *testing.T) {
	dist := Normal{Mean: 15, Variance: 16}

	first, err := NewMonteCarloSimulator(MonteCarloConfig{Trials: 5000, Seed: 42}).Simulate(dist, 14.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := NewMonteCarloSimulator(MonteCarloConfig{Trials: 5000, Seed: 42}).Simulate(dist, 14.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.OverProbability != second.OverProbability {
		t.Fatalf("seeded runs must agree: %f vs %f", first.OverProbability, second.OverProbability)
	}
	if first.Mean != second.Mean {
		t.Fatalf("seeded runs must agree on mean: %f vs %f", first.Mean, second.Mean)
	}
}

func TestMonteCarloOverProbabilityNearNormalTail(t *testing.T) {
	dist := Normal{Mean: 20, Variance: 25}
	sim := NewMonteCarloSimulator(MonteCarloConfig{Trials: 50000, Seed: 7})

	result, err := sim.Simulate(dist, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Line at the mean: empirical over-probability should be close to 0.5
	if math.Abs(result.OverProbability-0.5) > 0.02 {
		t.Fatalf("expected ~0.5 over the mean line, got %f", result.OverProbability)
	}
	if result.OverProbability < 0 || result.OverProbability > 1 {
		t.Fatalf("probability out of bounds: %f", result.OverProbability)
	}
}

func TestMonteCarloTruncatesAtZero(t *testing.T) {
	dist := Normal{Mean: 1, Variance: 25}
	sim := NewMonteCarloSimulator(MonteCarloConfig{Trials: 10000, Seed: 3})

	result, err := sim.Simulate(dist, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Percentile(0.001) < 0 {
		t.Fatalf("samples must be truncated at zero, got %f", result.Percentile(0.001))
	}
}

func TestMonteCarloIntervalsNested(t *testing.T) {
	dist := Normal{Mean: 12, Variance: 9}
	sim := NewMonteCarloSimulator(MonteCarloConfig{Trials: 20000, Seed: 11})

	result, err := sim.Simulate(dist, 11.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lo50, hi50 := result.Interval(0.50)
	lo80, hi80 := result.Interval(0.80)
	lo95, hi95 := result.Interval(0.95)

	if lo50 < lo80 || lo80 < lo95 {
		t.Fatalf("lower bounds must widen with level: %f %f %f", lo50, lo80, lo95)
	}
	if hi50 > hi80 || hi80 > hi95 {
		t.Fatalf("upper bounds must widen with level: %f %f %f", hi50, hi80, hi95)
	}
}

func TestMonteCarloDefaultTrials(t *testing.T) {
	sim := NewMonteCarloSimulator(MonteCarloConfig{Seed: 1})
	result, err := sim.Simulate(Normal{Mean: 5, Variance: 4}, 4.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Trials != 10000 {
		t.Fatalf("expected default 10000 trials, got %d", result.Trials)
	}
}

func TestMonteCarloNegativeVariance(t *testing.T) {
	sim := NewMonteCarloSimulator(MonteCarloConfig{Trials: 100, Seed: 1})
	if _, err := sim.Simulate(Normal{Mean: 5, Variance: -1}, 4.5); err == nil {
		t.Fatal("expected error for negative variance")
	}
}
