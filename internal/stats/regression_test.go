package stats

import (
	"errors"
	"math"
	"testing"

	"github.com/yourusername/courtside/internal/models"
)

func TestFitLinearRecoversPerfectLine(t *testing.T) {
	analyzer := NewRegressionAnalyzer(3)
	xs := []float64{0, 1, 2, 3, 4}
	ys := []float64{10, 12, 14, 16, 18}

	fit, err := analyzer.FitLinear(xs, ys)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(fit.Slope-2) > 1e-9 {
		t.Fatalf("expected slope 2, got %f", fit.Slope)
	}
	if math.Abs(fit.Intercept-10) > 1e-9 {
		t.Fatalf("expected intercept 10, got %f", fit.Intercept)
	}
	if fit.ResidualStdDev > 1e-9 {
		t.Fatalf("perfect fit should have zero residual spread, got %f", fit.ResidualStdDev)
	}
	if math.Abs(fit.Predict(5)-20) > 1e-9 {
		t.Fatalf("expected projection 20, got %f", fit.Predict(5))
	}
}

func TestFitLinearInsufficientSamples(t *testing.T) {
	analyzer := NewRegressionAnalyzer(3)

	_, err := analyzer.FitLinear([]float64{0, 1}, []float64{5, 6})
	if !errors.Is(err, models.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestFitLinearMismatchedLengths(t *testing.T) {
	analyzer := NewRegressionAnalyzer(3)
	if _, err := analyzer.FitLinear([]float64{0, 1, 2}, []float64{5, 6}); err == nil {
		t.Fatal("expected error for mismatched sample lengths")
	}
}

func TestFitLinearConstantX(t *testing.T) {
	analyzer := NewRegressionAnalyzer(3)
	_, err := analyzer.FitLinear([]float64{2, 2, 2, 2}, []float64{5, 6, 7, 8})
	if !errors.Is(err, models.ErrInsufficientData) {
		t.Fatalf("degenerate design should be insufficient data, got %v", err)
	}
}

func TestFitLogisticSeparatesClasses(t *testing.T) {
	analyzer := NewRegressionAnalyzer(3)

	xs := []float64{-3, -2.5, -2, -1.5, 1.5, 2, 2.5, 3}
	outcomes := []float64{0, 0, 0, 0, 1, 1, 1, 1}

	fit, err := analyzer.FitLogistic(xs, outcomes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if fit.Slope <= 0 {
		t.Fatalf("expected positive slope for separated classes, got %f", fit.Slope)
	}
	if fit.Predict(-3) > 0.2 {
		t.Fatalf("expected low probability for negative class, got %f", fit.Predict(-3))
	}
	if fit.Predict(3) < 0.8 {
		t.Fatalf("expected high probability for positive class, got %f", fit.Predict(3))
	}
}

func TestFitLogisticInsufficientSamples(t *testing.T) {
	analyzer := NewRegressionAnalyzer(5)
	_, err := analyzer.FitLogistic([]float64{1, 2}, []float64{0, 1})
	if !errors.Is(err, models.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestNormalCDF(t *testing.T) {
	n := Normal{Mean: 0, Variance: 1}

	if math.Abs(n.CDF(0)-0.5) > 1e-9 {
		t.Fatalf("standard normal CDF at 0 should be 0.5, got %f", n.CDF(0))
	}
	if math.Abs(n.CDF(1.96)-0.975) > 0.001 {
		t.Fatalf("standard normal CDF at 1.96 should be ~0.975, got %f", n.CDF(1.96))
	}
	if p := n.TailProbability(0); math.Abs(p-0.5) > 1e-9 {
		t.Fatalf("tail probability at the mean should be 0.5, got %f", p)
	}
}
