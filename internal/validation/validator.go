// Package validation scores past prediction batches against realized stat
// lines. It is strictly read-only: reports inform operators and never feed
// back into the engine's weights or priors.
package validation

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/courtside/internal/models"
	"github.com/yourusername/courtside/internal/repository"
	"github.com/yourusername/courtside/internal/stats"
)

// calibrationDeciles is the number of probability bands in a report
const calibrationDeciles = 10

// ScoredPrediction pairs a prediction with the stat value the player
// actually produced in that game.
type ScoredPrediction struct {
	Record   models.PredictionRecord
	Realized float64
}

// Over reports whether the realized value cleared the line
func (s ScoredPrediction) Over() bool {
	line, _ := s.Record.LineValue.Float64()
	return s.Realized > line
}

// CalibrationBand buckets predictions whose over-probability fell in
// [Lo, Hi) and compares the mean predicted probability against the
// observed over rate.
type CalibrationBand struct {
	Lo        float64 `json:"lo"`
	Hi        float64 `json:"hi"`
	Predicted float64 `json:"predicted"`
	Observed  float64 `json:"observed"`
	Count     int     `json:"count"`
}

// Report summarizes predictive accuracy over a set of scored predictions
type Report struct {
	BrierScore float64           `json:"brier_score"`
	HitRate    float64           `json:"hit_rate"`
	Bands      []CalibrationBand `json:"bands"`
	SampleSize int               `json:"sample_size"`
}

// ModelValidator scores prediction batches against the stat line tables
type ModelValidator struct {
	statLines  repository.StatLineRepository
	regression *stats.RegressionAnalyzer
	logger     *logrus.Logger
}

// New creates a model validator
func New(statLines repository.StatLineRepository, regression *stats.RegressionAnalyzer, logger *logrus.Logger) *ModelValidator {
	if regression == nil {
		regression = stats.NewRegressionAnalyzer(0)
	}
	return &ModelValidator{statLines: statLines, regression: regression, logger: logger}
}

// Evaluate scores an already-joined set of predictions. An empty set fails
// with models.ErrInsufficientData rather than reporting vacuous perfection.
func (v *ModelValidator) Evaluate(preds []ScoredPrediction) (*Report, error) {
	if len(preds) == 0 {
		return nil, fmt.Errorf("%w: no scored predictions to evaluate", models.ErrInsufficientData)
	}

	var (
		brierSum  float64
		hits      int
		bandProb  [calibrationDeciles]float64
		bandOvers [calibrationDeciles]int
		bandCount [calibrationDeciles]int
	)

	for _, pred := range preds {
		p := pred.Record.Prediction.OverProbability
		outcome := 0.0
		if pred.Over() {
			outcome = 1.0
		}

		diff := p - outcome
		brierSum += diff * diff

		// The call is "over" at p >= 0.5; a hit is a correct call
		if (p >= 0.5) == (outcome == 1.0) {
			hits++
		}

		band := decile(p)
		bandProb[band] += p
		bandOvers[band] += int(outcome)
		bandCount[band]++
	}

	bands := make([]CalibrationBand, 0, calibrationDeciles)
	for i := 0; i < calibrationDeciles; i++ {
		band := CalibrationBand{
			Lo:    float64(i) / calibrationDeciles,
			Hi:    float64(i+1) / calibrationDeciles,
			Count: bandCount[i],
		}
		if bandCount[i] > 0 {
			band.Predicted = bandProb[i] / float64(bandCount[i])
			band.Observed = float64(bandOvers[i]) / float64(bandCount[i])
		}
		bands = append(bands, band)
	}

	n := float64(len(preds))
	return &Report{
		BrierScore: brierSum / n,
		HitRate:    float64(hits) / n,
		Bands:      bands,
		SampleSize: len(preds),
	}, nil
}

// EvaluateBatch joins a prediction batch with realized stat lines and
// scores whatever has resolved. Predictions for unplayed games are
// skipped, not failed.
func (v *ModelValidator) EvaluateBatch(ctx context.Context, records []models.PredictionRecord) (*Report, error) {
	scored := make([]ScoredPrediction, 0, len(records))
	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		line, err := v.statLines.GetRealized(ctx, record.PlayerID, record.GameID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to load realized stats for player %d game %d: %w", record.PlayerID, record.GameID, err)
		}

		scored = append(scored, ScoredPrediction{
			Record:   record,
			Realized: line.Value(record.StatType),
		})
	}

	if v.logger != nil {
		v.logger.WithFields(logrus.Fields{
			"records":  len(records),
			"resolved": len(scored),
		}).Info("Joined prediction batch with realized stats")
	}

	return v.Evaluate(scored)
}

// Calibration fits observed outcomes on predicted probabilities. A slope
// near 1 and intercept near 0 (in log-odds space a steep positive slope)
// indicate the reported probabilities can be taken at face value.
func (v *ModelValidator) Calibration(preds []ScoredPrediction) (stats.LogisticFit, error) {
	if len(preds) == 0 {
		return stats.LogisticFit{}, fmt.Errorf("%w: no scored predictions to calibrate", models.ErrInsufficientData)
	}

	xs := make([]float64, len(preds))
	outcomes := make([]float64, len(preds))
	for i, pred := range preds {
		xs[i] = pred.Record.Prediction.OverProbability
		if pred.Over() {
			outcomes[i] = 1
		}
	}

	return v.regression.FitLogistic(xs, outcomes)
}

// decile maps a probability to its calibration band index
func decile(p float64) int {
	band := int(p * calibrationDeciles)
	if band >= calibrationDeciles {
		band = calibrationDeciles - 1
	}
	if band < 0 {
		band = 0
	}
	return band
}
