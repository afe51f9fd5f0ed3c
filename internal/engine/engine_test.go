package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/yourusername/courtside/internal/config"
	"github.com/yourusername/courtside/internal/models"
)

func testEngineConfig() config.EngineConfig {
	return config.EngineConfig{
		Weights: config.EnsembleWeights{
			Bayesian:   0.25,
			Poisson:    0.25,
			MonteCarlo: 0.25,
			Regression: 0.25,
		},
		MonteCarloTrials:     5000,
		MinRegressionSamples: 3,
	}
}

func featureVectorFor(values []float64) FeatureVector {
	mean, variance := 0.0, 0.0
	for _, v := range values {
		mean += v
	}
	if len(values) > 0 {
		mean /= float64(len(values))
	}
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	if len(values) > 0 {
		variance /= float64(len(values))
	}
	return FeatureVector{
		PlayerID:           1,
		StatType:           models.StatPoints,
		Values:             values,
		Mean:               mean,
		Variance:           variance,
		FormFactor:         1,
		OpponentAdjustment: 1,
		PaceFactor:         1,
		HomeAdvantage:      1,
		SampleSize:         len(values),
	}
}

func TestEstimateInvariants(t *testing.T) {
	eng := New(testEngineConfig(), nil)
	eng.SetSeed(42)

	fv := featureVectorFor([]float64{18, 22, 15, 20, 17, 25, 19})
	summary, err := eng.Estimate(context.Background(), fv, 18.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.OverProbability < 0 || summary.OverProbability > 1 {
		t.Fatalf("over probability out of [0,1]: %f", summary.OverProbability)
	}
	if summary.StandardDeviation < 0 {
		t.Fatalf("negative standard deviation: %f", summary.StandardDeviation)
	}
	if len(summary.ConfidenceIntervals) != 3 {
		t.Fatalf("expected 3 confidence bands, got %d", len(summary.ConfidenceIntervals))
	}
}

func TestEstimateConfidenceIntervalsNested(t *testing.T) {
	eng := New(testEngineConfig(), nil)
	eng.SetSeed(7)

	fv := featureVectorFor([]float64{8, 12, 10, 9, 11, 14, 7, 10})
	summary, err := eng.Estimate(context.Background(), fv, 9.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ci50 := summary.ConfidenceIntervals[models.CI50]
	ci80 := summary.ConfidenceIntervals[models.CI80]
	ci95 := summary.ConfidenceIntervals[models.CI95]

	if ci50.Lower < ci80.Lower || ci80.Lower < ci95.Lower {
		t.Fatalf("lower bounds must widen with level: %+v %+v %+v", ci50, ci80, ci95)
	}
	if ci50.Upper > ci80.Upper || ci80.Upper > ci95.Upper {
		t.Fatalf("upper bounds must widen with level: %+v %+v %+v", ci50, ci80, ci95)
	}
}

func TestEstimateExpectedValueNearHistoricalMean(t *testing.T) {
	eng := New(testEngineConfig(), nil)
	eng.SetSeed(1)

	// Five identical 15-point games: expected value should sit near 15
	fv := featureVectorFor([]float64{15, 15, 15, 15, 15})
	summary, err := eng.Estimate(context.Background(), fv, 14.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.ExpectedValue < 13 || summary.ExpectedValue > 17 {
		t.Fatalf("expected value should be near 15, got %f", summary.ExpectedValue)
	}
}

func TestEstimateEmptyHistoryFails(t *testing.T) {
	eng := New(testEngineConfig(), nil)

	_, err := eng.Estimate(context.Background(), featureVectorFor(nil), 10.5)
	if !errors.Is(err, models.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestEstimateSingleGameRenormalizesWeights(t *testing.T) {
	eng := New(testEngineConfig(), nil)
	eng.SetSeed(5)

	// One game: Monte Carlo and regression fail, Bayesian and Poisson
	// survive with re-normalized weights. The estimate must still be valid.
	fv := featureVectorFor([]float64{12})
	summary, err := eng.Estimate(context.Background(), fv, 11.5)
	if err != nil {
		t.Fatalf("expected surviving calculators to carry the estimate: %v", err)
	}

	if summary.OverProbability < 0 || summary.OverProbability > 1 {
		t.Fatalf("over probability out of [0,1]: %f", summary.OverProbability)
	}
	if summary.ExpectedValue <= 0 {
		t.Fatalf("expected positive expected value, got %f", summary.ExpectedValue)
	}
}

func TestEstimateHighLineLowProbability(t *testing.T) {
	eng := New(testEngineConfig(), nil)
	eng.SetSeed(9)

	fv := featureVectorFor([]float64{5, 6, 4, 5, 7, 5})
	summary, err := eng.Estimate(context.Background(), fv, 30.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.OverProbability > 0.05 {
		t.Fatalf("a line far above the mean should be a heavy under, got %f", summary.OverProbability)
	}
}

func TestEstimateRespectsCancellation(t *testing.T) {
	eng := New(testEngineConfig(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := eng.Estimate(ctx, featureVectorFor([]float64{10, 11, 12}), 10.5)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestAdjustedMeanAppliesFactors(t *testing.T) {
	fv := FeatureVector{
		Mean:               10,
		FormFactor:         1.2,
		OpponentAdjustment: 0.9,
		PaceFactor:         1.05,
		HomeAdvantage:      1.03,
	}

	adjusted := fv.AdjustedMean()
	if adjusted <= 9 || adjusted >= 12 {
		t.Fatalf("adjusted mean out of expected range: %f", adjusted)
	}

	neutral := FeatureVector{Mean: 10, FormFactor: 1, OpponentAdjustment: 1, PaceFactor: 1, HomeAdvantage: 1}
	if neutral.AdjustedMean() != 10 {
		t.Fatalf("neutral factors must not move the mean, got %f", neutral.AdjustedMean())
	}
}
