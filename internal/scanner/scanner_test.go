package scanner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/courtside/internal/aggregator"
	"github.com/yourusername/courtside/internal/analytics"
	"github.com/yourusername/courtside/internal/cache"
	"github.com/yourusername/courtside/internal/config"
	"github.com/yourusername/courtside/internal/engine"
	"github.com/yourusername/courtside/internal/models"
	"github.com/yourusername/courtside/internal/repository"
)

var scanClock = time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)

type fakePlayerRepo struct {
	players map[int64]*models.Player
	rosters map[string][]models.Player
}

func (f *fakePlayerRepo) GetByID(ctx context.Context, id int64) (*models.Player, error) {
	if p, ok := f.players[id]; ok {
		return p, nil
	}
	return nil, models.ErrNotFound
}

func (f *fakePlayerRepo) ListActiveByTeam(ctx context.Context, team string) ([]models.Player, error) {
	return f.rosters[team], nil
}

type fakeGameRepo struct {
	upcoming []models.Game
}

func (f *fakeGameRepo) GetByID(ctx context.Context, id int64) (*models.Game, error) {
	for i := range f.upcoming {
		if f.upcoming[i].ID == id {
			return &f.upcoming[i], nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeGameRepo) ListUpcoming(ctx context.Context, from time.Time, within time.Duration) ([]models.Game, error) {
	return f.upcoming, nil
}

func (f *fakeGameRepo) ListRecentByTeam(ctx context.Context, team string, before time.Time, limit int) ([]models.Game, error) {
	return nil, nil
}

type fakeStatRepo struct {
	mu          sync.Mutex
	byPlayer    map[int64][]models.StatLine
	failErr     error
	playerCalls int
}

func (f *fakeStatRepo) ListRecentByPlayer(ctx context.Context, playerID int64, before time.Time, limit int) ([]models.StatLine, error) {
	f.mu.Lock()
	f.playerCalls++
	f.mu.Unlock()
	if f.failErr != nil {
		return nil, f.failErr
	}
	lines := f.byPlayer[playerID]
	if limit < len(lines) {
		lines = lines[:limit]
	}
	return lines, nil
}

func (f *fakeStatRepo) ListRecentAgainstTeam(ctx context.Context, team string, before time.Time, limit int) ([]models.StatLine, error) {
	if f.failErr != nil {
		return nil, f.failErr
	}
	return nil, nil
}

func (f *fakeStatRepo) GetRealized(ctx context.Context, playerID, gameID int64) (*models.StatLine, error) {
	return nil, models.ErrNotFound
}

func (f *fakeStatRepo) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.playerCalls
}

type fakePropRepo struct {
	lines map[string]decimal.Decimal
}

func (f *fakePropRepo) GetLine(ctx context.Context, playerID, gameID int64, statType models.StatType) (decimal.Decimal, error) {
	if line, ok := f.lines[fmt.Sprintf("%d:%d:%s", playerID, gameID, statType)]; ok {
		return line, nil
	}
	return decimal.Decimal{}, models.ErrNotFound
}

type captureBroadcaster struct {
	mu      sync.Mutex
	batches []Batch
}

func (c *captureBroadcaster) Broadcast(batch Batch) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batches = append(c.batches, batch)
}

type scanEnv struct {
	scanner   *PropsScanner
	stats     *fakeStatRepo
	games     *fakeGameRepo
	players   *fakePlayerRepo
	broadcast *captureBroadcaster
}

func history(playerID int64, points ...float64) []models.StatLine {
	lines := make([]models.StatLine, len(points))
	for i, p := range points {
		lines[i] = models.StatLine{
			PlayerID: playerID,
			GameID:   int64(900 - i),
			GameDate: scanClock.AddDate(0, 0, -i-1),
			Points:   p,
			Rebounds: 6,
			Assists:  4,
		}
	}
	return lines
}

func newScanEnv(t *testing.T, cfg config.ScannerConfig) *scanEnv {
	t.Helper()

	players := &fakePlayerRepo{
		players: map[int64]*models.Player{
			1: {ID: 1, Name: "A. Wilson", Team: "LVA", Position: "F", Active: true},
			2: {ID: 2, Name: "B. Stewart", Team: "NYL", Position: "F", Active: true},
		},
		rosters: map[string][]models.Player{
			"LVA": {{ID: 1, Name: "A. Wilson", Team: "LVA", Position: "F", Active: true}},
			"NYL": {{ID: 2, Name: "B. Stewart", Team: "NYL", Position: "F", Active: true}},
		},
	}
	games := &fakeGameRepo{
		upcoming: []models.Game{
			{ID: 100, HomeTeam: "LVA", AwayTeam: "NYL", StartsAt: scanClock.Add(24 * time.Hour), Status: "scheduled"},
		},
	}
	stats := &fakeStatRepo{
		byPlayer: map[int64][]models.StatLine{
			1: history(1, 22, 18, 25, 20, 19, 24),
			2: history(2, 17, 21, 16, 20, 18, 19),
		},
	}
	props := &fakePropRepo{lines: map[string]decimal.Decimal{}}

	aggCfg := config.AggregatorConfig{RateLimit: 1000, RetryAttempts: 1, RetryBackoffMS: 1, TimeoutSeconds: 1}
	agg := aggregator.New(stats, games, aggCfg, cfg.LookbackGames, nil)
	team := analytics.NewTeamAnalytics(agg, nil)
	gameAn := analytics.NewGameAnalytics(agg, nil)
	playerAn := analytics.NewPlayerAnalytics(agg, team, gameAn, nil)

	eng := engine.New(config.EngineConfig{MonteCarloTrials: 2000, MinRegressionSamples: 3}, nil)
	eng.SetSeed(42)

	broadcast := &captureBroadcaster{}
	repos := &repository.Repositories{Player: players, Game: games, StatLine: stats, PropLine: props}

	s, err := New(repos, playerAn, eng, cache.NewMemoryCache(time.Minute), time.Minute, cfg, broadcast, nil)
	require.NoError(t, err)
	s.SetClock(func() time.Time { return scanClock })

	return &scanEnv{scanner: s, stats: stats, games: games, players: players, broadcast: broadcast}
}

func defaultScanConfig() config.ScannerConfig {
	return config.ScannerConfig{
		Concurrency:        2,
		LookbackGames:      10,
		UpcomingWindowDays: 7,
		StatTypes:          []string{"points"},
		DefaultLineEnabled: true,
	}
}

func TestNewRejectsUnknownStatType(t *testing.T) {
	cfg := defaultScanConfig()
	cfg.StatTypes = []string{"points", "triple-doubles"}

	env := &fakePlayerRepo{}
	repos := &repository.Repositories{Player: env, Game: &fakeGameRepo{}, StatLine: &fakeStatRepo{}, PropLine: &fakePropRepo{}}

	_, err := New(repos, nil, nil, cache.NewMemoryCache(time.Minute), time.Minute, cfg, nil, nil)
	assert.ErrorIs(t, err, models.ErrInvalidStatType)
}

func TestScanAllProducesRecordsForBothRosters(t *testing.T) {
	env := newScanEnv(t, defaultScanConfig())

	records, err := env.scanner.ScanAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	for _, record := range records {
		assert.Equal(t, int64(100), record.GameID)
		assert.Equal(t, models.StatPoints, record.StatType)
		assert.Greater(t, record.Prediction.ExpectedValue, 0.0)
		assert.GreaterOrEqual(t, record.Prediction.OverProbability, 0.0)
		assert.LessOrEqual(t, record.Prediction.OverProbability, 1.0)
		line, _ := record.LineValue.Float64()
		assert.Equal(t, 0.5, line-float64(int(line)), "derived line must sit on the half point")
	}
}

func TestScanAllSecondCallServedFromCache(t *testing.T) {
	env := newScanEnv(t, defaultScanConfig())

	first, err := env.scanner.ScanAll(context.Background())
	require.NoError(t, err)
	callsAfterFirst := env.stats.calls()
	assert.Greater(t, callsAfterFirst, 0)

	second, err := env.scanner.ScanAll(context.Background())
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].PlayerID, second[i].PlayerID)
		assert.Equal(t, first[i].StatType, second[i].StatType)
		assert.InDelta(t, first[i].Prediction.OverProbability, second[i].Prediction.OverProbability, 1e-12)
		assert.True(t, first[i].LineValue.Equal(second[i].LineValue))
	}
	assert.Equal(t, callsAfterFirst, env.stats.calls(), "cache hit must not touch the data layer")
}

func TestInvalidateScopeForcesRecompute(t *testing.T) {
	env := newScanEnv(t, defaultScanConfig())
	ctx := context.Background()

	_, err := env.scanner.ScanAll(ctx)
	require.NoError(t, err)
	callsAfterFirst := env.stats.calls()

	require.NoError(t, env.scanner.InvalidateScope(ctx, cache.ScopeAll))

	_, err = env.scanner.ScanAll(ctx)
	require.NoError(t, err)
	assert.Greater(t, env.stats.calls(), callsAfterFirst)
}

func TestScanAllNoUpcomingGames(t *testing.T) {
	env := newScanEnv(t, defaultScanConfig())
	env.games.upcoming = nil

	records, err := env.scanner.ScanAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestScanPlayerUnknownPlayer(t *testing.T) {
	env := newScanEnv(t, defaultScanConfig())

	_, err := env.scanner.ScanPlayer(context.Background(), 999)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestScanGameUnknownGame(t *testing.T) {
	env := newScanEnv(t, defaultScanConfig())

	_, err := env.scanner.ScanGame(context.Background(), 999)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestScanPlayerLimitedToThatPlayer(t *testing.T) {
	env := newScanEnv(t, defaultScanConfig())

	records, err := env.scanner.ScanPlayer(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(1), records[0].PlayerID)
	assert.Equal(t, "A. Wilson", records[0].PlayerName)
}

func TestScanSkipsPlayersWithoutHistory(t *testing.T) {
	env := newScanEnv(t, defaultScanConfig())
	env.stats.byPlayer[2] = nil

	records, err := env.scanner.ScanAll(context.Background())
	require.NoError(t, err, "an unevaluable tuple must not fail the scan")
	require.Len(t, records, 1)
	assert.Equal(t, int64(1), records[0].PlayerID)
}

func TestScanRecordsSortedByDatePlayerStat(t *testing.T) {
	cfg := defaultScanConfig()
	cfg.StatTypes = []string{"rebounds", "points"}
	env := newScanEnv(t, cfg)
	env.games.upcoming = append(env.games.upcoming, models.Game{
		ID: 99, HomeTeam: "NYL", AwayTeam: "LVA", StartsAt: scanClock.Add(2 * time.Hour), Status: "scheduled",
	})

	records, err := env.scanner.ScanAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 8)

	for i := 1; i < len(records); i++ {
		prev, cur := records[i-1], records[i]
		if prev.GameDate.Before(cur.GameDate) {
			continue
		}
		require.True(t, prev.GameDate.Equal(cur.GameDate))
		if prev.PlayerID < cur.PlayerID {
			continue
		}
		require.Equal(t, prev.PlayerID, cur.PlayerID)
		assert.Less(t, string(prev.StatType), string(cur.StatType))
	}
	assert.Equal(t, int64(99), records[0].GameID, "earlier game must sort first")
}

func TestScanAbortsOnTransientFailure(t *testing.T) {
	env := newScanEnv(t, defaultScanConfig())
	env.stats.failErr = errors.New("connection reset")

	records, err := env.scanner.ScanAll(context.Background())
	assert.ErrorIs(t, err, models.ErrTransientData)
	assert.Nil(t, records)
}

func TestScanBroadcastsFreshBatches(t *testing.T) {
	env := newScanEnv(t, defaultScanConfig())
	ctx := context.Background()

	_, err := env.scanner.ScanAll(ctx)
	require.NoError(t, err)
	_, err = env.scanner.ScanAll(ctx)
	require.NoError(t, err)

	env.broadcast.mu.Lock()
	defer env.broadcast.mu.Unlock()
	require.Len(t, env.broadcast.batches, 1, "cache hits must not rebroadcast")
	assert.Equal(t, cache.AllScanKey, env.broadcast.batches[0].Scope)
	assert.Len(t, env.broadcast.batches[0].Records, 2)
}
