package scanner

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/courtside/internal/analytics"
	"github.com/yourusername/courtside/internal/cache"
	"github.com/yourusername/courtside/internal/config"
	"github.com/yourusername/courtside/internal/engine"
	"github.com/yourusername/courtside/internal/metrics"
	"github.com/yourusername/courtside/internal/models"
	"github.com/yourusername/courtside/internal/repository"
)

// Broadcaster pushes freshly computed batches to live subscribers
type Broadcaster interface {
	Broadcast(batch Batch)
}

// tuple is one unit of scan work
type tuple struct {
	player   models.Player
	game     models.Game
	statType models.StatType
}

// PropsScanner produces prediction batches for a scope. Concurrent scans
// of the same cold scope compute independently and the last write wins;
// recomputation is idempotent within a cache window so no cross-request
// coordination is needed.
type PropsScanner struct {
	players   repository.PlayerRepository
	games     repository.GameRepository
	props     repository.PropLineRepository
	analytics *analytics.PlayerAnalytics
	engine    *engine.StatisticalEngine
	cache     cache.Cache
	ttl       time.Duration
	cfg       config.ScannerConfig
	statTypes []models.StatType
	broadcast Broadcaster
	logger    *logrus.Logger
	now       func() time.Time
}

// New creates a props scanner. The broadcaster may be nil when the live
// stream is disabled.
func New(
	repos *repository.Repositories,
	playerAnalytics *analytics.PlayerAnalytics,
	eng *engine.StatisticalEngine,
	predictionCache cache.Cache,
	ttl time.Duration,
	cfg config.ScannerConfig,
	broadcast Broadcaster,
	logger *logrus.Logger,
) (*PropsScanner, error) {
	statTypes := make([]models.StatType, 0, len(cfg.StatTypes))
	for _, s := range cfg.StatTypes {
		statType, err := models.ParseStatType(s)
		if err != nil {
			return nil, fmt.Errorf("invalid scanner stat type: %w", err)
		}
		statTypes = append(statTypes, statType)
	}
	if len(statTypes) == 0 {
		statTypes = models.AllStatTypes()
	}

	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 8
	}

	return &PropsScanner{
		players:   repos.Player,
		games:     repos.Game,
		props:     repos.PropLine,
		analytics: playerAnalytics,
		engine:    eng,
		cache:     predictionCache,
		ttl:       ttl,
		cfg:       cfg,
		statTypes: statTypes,
		broadcast: broadcast,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// SetClock overrides the scanner's clock. Intended for tests.
func (s *PropsScanner) SetClock(now func() time.Time) {
	s.now = now
}

// ScanAll scans every eligible (player, upcoming game) pair. No upcoming
// games is a valid empty result, never an error.
func (s *PropsScanner) ScanAll(ctx context.Context) ([]models.PredictionRecord, error) {
	return s.scan(ctx, cache.ScopeAll, 0, func(ctx context.Context) ([]tuple, error) {
		games, err := s.games.ListUpcoming(ctx, s.now(), s.upcomingWindow())
		if err != nil {
			return nil, fmt.Errorf("failed to list upcoming games: %w", err)
		}

		var tuples []tuple
		for _, game := range games {
			gameTuples, err := s.tuplesForGame(ctx, game)
			if err != nil {
				return nil, err
			}
			tuples = append(tuples, gameTuples...)
		}
		return tuples, nil
	})
}

// ScanPlayer scans one player's upcoming games. Unknown players surface
// models.ErrNotFound.
func (s *PropsScanner) ScanPlayer(ctx context.Context, playerID int64) ([]models.PredictionRecord, error) {
	player, err := s.players.GetByID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	return s.scan(ctx, cache.ScopePlayer, playerID, func(ctx context.Context) ([]tuple, error) {
		games, err := s.games.ListUpcoming(ctx, s.now(), s.upcomingWindow())
		if err != nil {
			return nil, fmt.Errorf("failed to list upcoming games: %w", err)
		}

		var tuples []tuple
		for _, game := range games {
			if !game.Involves(player.Team) {
				continue
			}
			for _, statType := range s.statTypes {
				tuples = append(tuples, tuple{player: *player, game: game, statType: statType})
			}
		}
		return tuples, nil
	})
}

// ScanGame scans both rosters of one game. Unknown games surface
// models.ErrNotFound.
func (s *PropsScanner) ScanGame(ctx context.Context, gameID int64) ([]models.PredictionRecord, error) {
	game, err := s.games.GetByID(ctx, gameID)
	if err != nil {
		return nil, err
	}

	return s.scan(ctx, cache.ScopeGame, gameID, func(ctx context.Context) ([]tuple, error) {
		return s.tuplesForGame(ctx, *game)
	})
}

// InvalidateScope busts cached batches for a scope, forcing the next scan
// to recompute. Called when new stats are ingested.
func (s *PropsScanner) InvalidateScope(ctx context.Context, scope cache.Scope) error {
	return s.cache.Invalidate(ctx, scope)
}

func (s *PropsScanner) upcomingWindow() time.Duration {
	days := s.cfg.UpcomingWindowDays
	if days <= 0 {
		days = 7
	}
	return time.Duration(days) * 24 * time.Hour
}

func (s *PropsScanner) tuplesForGame(ctx context.Context, game models.Game) ([]tuple, error) {
	var tuples []tuple
	for _, team := range []string{game.HomeTeam, game.AwayTeam} {
		roster, err := s.players.ListActiveByTeam(ctx, team)
		if err != nil {
			return nil, fmt.Errorf("failed to load roster for %s: %w", team, err)
		}
		for _, player := range roster {
			for _, statType := range s.statTypes {
				tuples = append(tuples, tuple{player: player, game: game, statType: statType})
			}
		}
	}
	return tuples, nil
}

// scan is the shared cache-check / compute / cache-store path
func (s *PropsScanner) scan(ctx context.Context, scope cache.Scope, id int64, enumerate func(context.Context) ([]tuple, error)) ([]models.PredictionRecord, error) {
	start := s.now()
	key := cache.Key(scope, id)

	if data, found := s.cache.Get(ctx, key); found {
		if batch, err := DecodeBatch(data); err == nil {
			return batch.Records, nil
		}
		// A corrupt entry falls through to recomputation
		if s.logger != nil {
			s.logger.WithField("key", key).Warn("Discarding undecodable cache entry")
		}
	}

	tuples, err := enumerate(ctx)
	if err != nil {
		return nil, err
	}

	records, err := s.runTuples(ctx, tuples)
	if err != nil {
		return nil, err
	}

	sortRecords(records)

	batch := Batch{
		ID:          uuid.New(),
		Scope:       key,
		GeneratedAt: s.now(),
		Records:     records,
	}

	if data, err := batch.Encode(); err == nil {
		if err := s.cache.Put(ctx, key, data, s.ttl); err != nil && s.logger != nil {
			s.logger.WithError(err).WithField("key", key).Warn("Failed to cache scan batch")
		}
	}

	if s.broadcast != nil {
		s.broadcast.Broadcast(batch)
	}

	metrics.RecordScan(string(scope), len(records), s.now().Sub(start).Seconds())
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"scope":   key,
			"tuples":  len(tuples),
			"records": len(records),
		}).Info("Scan completed")
	}

	return records, nil
}

// runTuples evaluates tuples on a bounded worker pool. Tuples failing with
// ErrInsufficientData are silently omitted; any infrastructure failure
// aborts the whole scan.
func (s *PropsScanner) runTuples(ctx context.Context, tuples []tuple) ([]models.PredictionRecord, error) {
	records := make([]models.PredictionRecord, 0, len(tuples))
	if len(tuples) == 0 {
		return records, nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan tuple)
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	workers := s.cfg.Concurrency
	if workers > len(tuples) {
		workers = len(tuples)
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				record, err := s.evaluate(workerCtx, job)
				if err != nil {
					if errors.Is(err, models.ErrInsufficientData) {
						metrics.TuplesSkippedTotal.Inc()
						continue
					}
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					cancel()
					return
				}
				if record == nil {
					continue
				}
				mu.Lock()
				records = append(records, *record)
				mu.Unlock()
			}
		}()
	}

	for _, job := range tuples {
		select {
		case jobs <- job:
		case <-workerCtx.Done():
		}
		if workerCtx.Err() != nil {
			break
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// evaluate runs the per-tuple pipeline: aggregate, analyze, estimate.
// A nil record with nil error means the tuple had no line to evaluate.
func (s *PropsScanner) evaluate(ctx context.Context, job tuple) (*models.PredictionRecord, error) {
	metrics.TuplesEvaluatedTotal.Inc()

	fv, err := s.analytics.Features(ctx, &job.player, &job.game, job.statType)
	if err != nil {
		return nil, err
	}

	line, err := s.resolveLine(ctx, job, fv)
	if err != nil {
		return nil, err
	}
	if line == nil {
		return nil, nil
	}

	lineValue, _ := line.Float64()
	summary, err := s.engine.Estimate(ctx, fv, lineValue)
	if err != nil {
		return nil, err
	}

	return &models.PredictionRecord{
		PlayerID:   job.player.ID,
		PlayerName: job.player.Name,
		GameID:     job.game.ID,
		GameDate:   job.game.StartsAt,
		StatType:   job.statType,
		LineValue:  *line,
		Prediction: summary,
	}, nil
}

// resolveLine returns the stored prop line, or a half-point line derived
// from the adjusted mean when no book line exists and defaults are
// enabled. A nil line means the tuple should be skipped.
func (s *PropsScanner) resolveLine(ctx context.Context, job tuple, fv engine.FeatureVector) (*decimal.Decimal, error) {
	line, err := s.props.GetLine(ctx, job.player.ID, job.game.ID, job.statType)
	if err == nil {
		return &line, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	if !s.cfg.DefaultLineEnabled || fv.SampleSize == 0 {
		return nil, nil
	}

	derived := decimal.NewFromFloat(math.Floor(fv.AdjustedMean()) + 0.5)
	return &derived, nil
}

func sortRecords(records []models.PredictionRecord) {
	sort.Slice(records, func(i, j int) bool {
		if !records[i].GameDate.Equal(records[j].GameDate) {
			return records[i].GameDate.Before(records[j].GameDate)
		}
		if records[i].PlayerID != records[j].PlayerID {
			return records[i].PlayerID < records[j].PlayerID
		}
		return records[i].StatType < records[j].StatType
	})
}
