package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/courtside/internal/config"
	"github.com/yourusername/courtside/internal/metrics"
	"github.com/yourusername/courtside/internal/models"
	"github.com/yourusername/courtside/internal/stats"
)

// Calculator names used in logs and metrics
const (
	calcBayesian   = "bayesian"
	calcPoisson    = "poisson"
	calcMonteCarlo = "monte_carlo"
	calcRegression = "regression"
)

// leaguePriors are per-game league-average rates used as Bayesian priors.
// Wide prior variance keeps them weakly informative; a handful of player
// games dominates the posterior.
var leaguePriors = map[models.StatType]stats.Normal{
	models.StatPoints:   {Mean: 11.0, Variance: 36},
	models.StatRebounds: {Mean: 4.5, Variance: 9},
	models.StatAssists:  {Mean: 2.5, Variance: 6},
	models.StatThrees:   {Mean: 1.0, Variance: 2},
}

// StatisticalEngine combines the four calculators into one distribution
// summary per (player, game, stat type, line) tuple.
type StatisticalEngine struct {
	bayesian   *stats.BayesianCalculator
	poisson    *stats.PoissonCalculator
	regression *stats.RegressionAnalyzer
	mcTrials   int
	mcSeed     int64
	weights    config.EnsembleWeights
	logger     *logrus.Logger
}

// estimate is one calculator's contribution to the ensemble
type estimate struct {
	overProbability float64
	mean            float64
	stdDev          float64
	weight          float64
}

// New creates a statistical engine from configuration
func New(cfg config.EngineConfig, logger *logrus.Logger) *StatisticalEngine {
	weights := cfg.Weights
	if weights.Sum() <= 0 {
		weights = config.EnsembleWeights{Bayesian: 0.25, Poisson: 0.25, MonteCarlo: 0.25, Regression: 0.25}
	}
	return &StatisticalEngine{
		bayesian:   stats.NewBayesianCalculator(),
		poisson:    stats.NewPoissonCalculator(),
		regression: stats.NewRegressionAnalyzer(cfg.MinRegressionSamples),
		mcTrials:   cfg.MonteCarloTrials,
		weights:    weights,
		logger:     logger,
	}
}

// SetSeed fixes the Monte Carlo seed. Intended for tests; production runs
// stay non-deterministic.
func (e *StatisticalEngine) SetSeed(seed int64) {
	e.mcSeed = seed
}

// Estimate runs all four calculators over the feature vector and combines
// their outputs into one DistributionSummary. Calculators failing with
// ErrInsufficientData are excluded and the remaining weights re-normalized;
// if every calculator fails the tuple itself is insufficient and the caller
// must skip it.
func (e *StatisticalEngine) Estimate(ctx context.Context, fv FeatureVector, line float64) (models.DistributionSummary, error) {
	start := time.Now()
	defer func() {
		metrics.EngineEstimateDuration.Observe(time.Since(start).Seconds())
	}()

	if fv.SampleSize == 0 || len(fv.Values) == 0 {
		return models.DistributionSummary{}, models.ErrInsufficientData
	}

	var (
		estimates []estimate
		mcResult  *stats.SimResult
	)

	if err := ctx.Err(); err != nil {
		return models.DistributionSummary{}, err
	}
	if est, err := e.runBayesian(fv, line); err == nil {
		estimates = append(estimates, est)
	} else {
		e.recordFailure(calcBayesian, fv, err)
	}

	if err := ctx.Err(); err != nil {
		return models.DistributionSummary{}, err
	}
	if est, err := e.runPoisson(fv, line); err == nil {
		estimates = append(estimates, est)
	} else {
		e.recordFailure(calcPoisson, fv, err)
	}

	if err := ctx.Err(); err != nil {
		return models.DistributionSummary{}, err
	}
	if est, result, err := e.runMonteCarlo(fv, line); err == nil {
		estimates = append(estimates, est)
		mcResult = result
	} else {
		e.recordFailure(calcMonteCarlo, fv, err)
	}

	if err := ctx.Err(); err != nil {
		return models.DistributionSummary{}, err
	}
	if est, err := e.runRegression(fv, line); err == nil {
		estimates = append(estimates, est)
	} else {
		e.recordFailure(calcRegression, fv, err)
	}

	if len(estimates) == 0 {
		return models.DistributionSummary{}, models.ErrInsufficientData
	}

	return e.combine(estimates, mcResult), nil
}

func (e *StatisticalEngine) runBayesian(fv FeatureVector, line float64) (estimate, error) {
	prior, ok := leaguePriors[fv.StatType]
	if !ok {
		prior = stats.Normal{Mean: fv.Mean, Variance: math.Max(fv.Variance, 1)}
	}

	posterior, err := e.bayesian.Update(prior, fv.Values)
	if err != nil {
		return estimate{}, err
	}

	predictive := e.bayesian.PredictiveDistribution(posterior, fv.Variance)

	// Shift the predictive mean by the same contextual adjustment applied
	// to the raw mean so all calculators see the same matchup.
	if fv.Mean > 0 {
		predictive.Mean *= fv.AdjustedMean() / fv.Mean
	}

	return estimate{
		overProbability: predictive.TailProbability(line),
		mean:            predictive.Mean,
		stdDev:          predictive.StdDev(),
		weight:          e.weights.Bayesian,
	}, nil
}

func (e *StatisticalEngine) runPoisson(fv FeatureVector, line float64) (estimate, error) {
	lambda := fv.AdjustedMean()
	if lambda <= 0 {
		return estimate{}, models.ErrInsufficientData
	}

	p, err := e.poisson.OverProbability(lambda, line)
	if err != nil {
		return estimate{}, err
	}

	return estimate{
		overProbability: p,
		mean:            lambda,
		stdDev:          math.Sqrt(lambda),
		weight:          e.weights.Poisson,
	}, nil
}

func (e *StatisticalEngine) runMonteCarlo(fv FeatureVector, line float64) (estimate, *stats.SimResult, error) {
	if fv.SampleSize < 2 {
		// A single game gives no spread to sample from
		return estimate{}, nil, models.ErrInsufficientData
	}

	sim := stats.NewMonteCarloSimulator(stats.MonteCarloConfig{Trials: e.mcTrials, Seed: e.mcSeed})
	result, err := sim.Simulate(stats.Normal{Mean: fv.AdjustedMean(), Variance: fv.Variance}, line)
	if err != nil {
		return estimate{}, nil, err
	}

	return estimate{
		overProbability: result.OverProbability,
		mean:            result.Mean,
		stdDev:          result.StdDev,
		weight:          e.weights.MonteCarlo,
	}, &result, nil
}

func (e *StatisticalEngine) runRegression(fv FeatureVector, line float64) (estimate, error) {
	ys := fv.ChronologicalValues()
	xs := make([]float64, len(ys))
	for i := range xs {
		xs[i] = float64(i)
	}

	fit, err := e.regression.FitLinear(xs, ys)
	if err != nil {
		return estimate{}, err
	}

	projection := fit.Predict(float64(len(ys)))
	if fv.Mean > 0 {
		projection *= fv.AdjustedMean() / fv.Mean
	}
	if projection < 0 {
		projection = 0
	}

	residual := fit.ResidualStdDev
	if residual <= 0 {
		residual = math.Sqrt(math.Max(fv.Variance, 1))
	}
	dist := stats.Normal{Mean: projection, Variance: residual * residual}

	return estimate{
		overProbability: dist.TailProbability(line),
		mean:            projection,
		stdDev:          residual,
		weight:          e.weights.Regression,
	}, nil
}

// combine merges surviving calculator estimates with re-normalized weights
// and derives the confidence bands, preferring the Monte Carlo empirical
// distribution when it is available.
func (e *StatisticalEngine) combine(estimates []estimate, mcResult *stats.SimResult) models.DistributionSummary {
	totalWeight := 0.0
	for _, est := range estimates {
		totalWeight += est.weight
	}
	if totalWeight <= 0 {
		// Every surviving calculator is zero-weighted; fall back to equal shares
		for i := range estimates {
			estimates[i].weight = 1
		}
		totalWeight = float64(len(estimates))
	}

	var prob, mean, sd float64
	for _, est := range estimates {
		w := est.weight / totalWeight
		prob += w * est.overProbability
		mean += w * est.mean
		sd += w * est.stdDev
	}

	prob = math.Min(1, math.Max(0, prob))
	if sd < 0 {
		sd = 0
	}

	return models.DistributionSummary{
		OverProbability:     prob,
		ExpectedValue:       mean,
		StandardDeviation:   sd,
		ConfidenceIntervals: confidenceIntervals(mean, sd, mcResult),
	}
}

// confidenceIntervals builds the nested 50/80/95 bands
func confidenceIntervals(mean, sd float64, mcResult *stats.SimResult) map[string]models.Interval {
	intervals := make(map[string]models.Interval, 3)

	if mcResult != nil {
		for level, label := range map[float64]string{0.50: models.CI50, 0.80: models.CI80, 0.95: models.CI95} {
			lo, hi := mcResult.Interval(level)
			intervals[label] = models.Interval{Lower: math.Max(0, lo), Upper: hi}
		}
		return intervals
	}

	for z, label := range map[float64]string{0.6745: models.CI50, 1.2816: models.CI80, 1.9600: models.CI95} {
		intervals[label] = models.Interval{
			Lower: math.Max(0, mean-z*sd),
			Upper: mean + z*sd,
		}
	}
	return intervals
}

func (e *StatisticalEngine) recordFailure(name string, fv FeatureVector, err error) {
	metrics.RecordCalculatorFailure(name)
	if e.logger != nil {
		e.logger.WithFields(logrus.Fields{
			"calculator": name,
			"player_id":  fv.PlayerID,
			"stat_type":  fv.StatType,
		}).WithError(err).Debug("Calculator excluded from ensemble")
	}
}

// String describes the engine configuration for startup logging
func (e *StatisticalEngine) String() string {
	return fmt.Sprintf("ensemble{bayesian=%.2f poisson=%.2f monte_carlo=%.2f regression=%.2f trials=%d}",
		e.weights.Bayesian, e.weights.Poisson, e.weights.MonteCarlo, e.weights.Regression, e.mcTrials)
}
