package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"solar-prediction-api/logger"
	"solar-prediction-api/models"
	"solar-prediction-api/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stepClock hands out strictly increasing timestamps.
type stepClock struct {
	mu   sync.Mutex
	next time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.next
	c.next = c.next.Add(time.Minute)
	return t
}

func newTestStore(t *testing.T) (*PredictionStore, *stepClock) {
	t.Helper()
	clock := &stepClock{next: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)}
	s := NewPredictionStore(testutil.OpenDB(t), logger.Nop()).WithClock(clock.Now)
	return s, clock
}

func result(power float64) models.PredictionResult {
	return models.PredictionResult{
		PredictedPowerGenerated: power,
		InputParameters: models.FeatureSet{
			PanelArea: 50, Tilt: 30, Azimuth: 180, GHI: 800, DNI: 600,
			Temperature: 25, Humidity: 60, WindSpeed: 3, CloudCover: "Thin high clouds",
		},
		ModelInfo: models.ModelInfo{
			ModelType:       "FallbackCalculation",
			PredictionUnits: "kW",
			DatasetSource:   "Fallback Calculation",
		},
	}
}

func snapshot() models.InputSnapshot {
	return models.InputSnapshot{Location: "Gandhinagar", PanelArea: "50.0", Tilt: "30.0", Azimuth: "180.0"}
}

func TestCreateThenLatest(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	id, ok := s.Create(ctx, "owner-a", snapshot(), result(7.52))
	require.True(t, ok)
	require.NotEmpty(t, id)

	latest, ok := s.Latest(ctx, "owner-a")
	require.True(t, ok)
	assert.Equal(t, id, latest.ID)
	assert.Equal(t, "owner-a", latest.OwnerID)
	assert.InDelta(t, 7.52, latest.Prediction.Data().PredictedPowerGenerated, 1e-9)
	assert.Equal(t, "Gandhinagar", latest.InputSnapshot.Data().Location)
	assert.Equal(t, "Thin high clouds", latest.Prediction.Data().InputParameters.CloudCover)
	assert.True(t, latest.CreatedAt.Equal(latest.UpdatedAt))
}

func TestLatestPicksNewest(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	s.Create(ctx, "owner-a", snapshot(), result(1))
	s.Create(ctx, "owner-a", snapshot(), result(2))
	newest, _ := s.Create(ctx, "owner-a", snapshot(), result(3))

	latest, ok := s.Latest(ctx, "owner-a")
	require.True(t, ok)
	assert.Equal(t, newest, latest.ID)
}

func TestLatestEmptyOwner(t *testing.T) {
	s, _ := newTestStore(t)

	latest, ok := s.Latest(context.Background(), "nobody")
	assert.False(t, ok)
	assert.Nil(t, latest)
}

func TestListNewestFirstWithPagination(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	var ids []string
	for i := 1; i <= 5; i++ {
		id, ok := s.Create(ctx, "owner-a", snapshot(), result(float64(i)))
		require.True(t, ok)
		ids = append(ids, id)
	}

	all := s.List(ctx, "owner-a", 10, 0)
	require.Len(t, all, 5)
	assert.Equal(t, ids[4], all[0].ID)
	assert.Equal(t, ids[0], all[4].ID)

	page := s.List(ctx, "owner-a", 2, 1)
	require.Len(t, page, 2)
	assert.Equal(t, ids[3], page[0].ID)
	assert.Equal(t, ids[2], page[1].ID)

	assert.Empty(t, s.List(ctx, "owner-a", 10, 10))
	assert.Len(t, s.List(ctx, "owner-a", 0, 0), 5)
}

func TestListNeverLeaksOtherOwners(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	s.Create(ctx, "owner-a", snapshot(), result(1))
	s.Create(ctx, "owner-b", snapshot(), result(2))
	s.Create(ctx, "owner-a", snapshot(), result(3))

	for _, rec := range s.List(ctx, "owner-a", 10, 0) {
		assert.Equal(t, "owner-a", rec.OwnerID)
	}
	assert.Len(t, s.List(ctx, "owner-b", 10, 0), 1)

	empty := s.List(ctx, "owner-c", 10, 0)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestDeleteIsOwnerScoped(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	id, ok := s.Create(ctx, "owner-b", snapshot(), result(4))
	require.True(t, ok)

	assert.False(t, s.Delete(ctx, id, "owner-a"))
	require.Len(t, s.List(ctx, "owner-b", 10, 0), 1)

	assert.False(t, s.Delete(ctx, "does-not-exist", "owner-b"))

	assert.True(t, s.Delete(ctx, id, "owner-b"))
	assert.Empty(t, s.List(ctx, "owner-b", 10, 0))
	assert.False(t, s.Delete(ctx, id, "owner-b"))
}

func TestStats(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	for _, p := range []float64{1.0, 2.0, 6.0} {
		_, ok := s.Create(ctx, "owner-a", snapshot(), result(p))
		require.True(t, ok)
	}
	s.Create(ctx, "owner-b", snapshot(), result(100))

	stats := s.Stats(ctx, "owner-a")
	assert.Equal(t, int64(3), stats.TotalPredictions)
	assert.Equal(t, 3.0, stats.AveragePower)
	assert.Equal(t, 6.0, stats.MaxPower)
	assert.Equal(t, 1.0, stats.MinPower)
	require.NotNil(t, stats.LatestPredictionDate)
	assert.True(t, stats.LatestPredictionDate.Equal(time.Date(2025, 6, 1, 8, 2, 0, 0, time.UTC)))
}

func TestStatsRoundsToTwoDecimals(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	for _, p := range []float64{1.0, 1.0, 2.0} {
		s.Create(ctx, "owner-a", snapshot(), result(p))
	}
	stats := s.Stats(ctx, "owner-a")
	assert.Equal(t, 1.33, stats.AveragePower)
}

func TestStatsEmptyOwnerIsZeroed(t *testing.T) {
	s, _ := newTestStore(t)

	stats := s.Stats(context.Background(), "nobody")
	assert.Equal(t, models.AggregateStats{}, stats)
	assert.Nil(t, stats.LatestPredictionDate)
}

func TestReadsAreIdempotent(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	for _, p := range []float64{2.5, 3.5} {
		s.Create(ctx, "owner-a", snapshot(), result(p))
	}

	assert.Equal(t, s.Stats(ctx, "owner-a"), s.Stats(ctx, "owner-a"))
	assert.Equal(t, s.List(ctx, "owner-a", 10, 0), s.List(ctx, "owner-a", 10, 0))
}

func TestStorageFaultDegrades(t *testing.T) {
	db := testutil.OpenDB(t)
	s := NewPredictionStore(db, logger.Nop())
	ctx := context.Background()

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	id, ok := s.Create(ctx, "owner-a", snapshot(), result(1))
	assert.False(t, ok)
	assert.Empty(t, id)

	assert.Empty(t, s.List(ctx, "owner-a", 10, 0))
	_, found := s.Latest(ctx, "owner-a")
	assert.False(t, found)
	assert.False(t, s.Delete(ctx, "x", "owner-a"))
	assert.Equal(t, models.AggregateStats{}, s.Stats(ctx, "owner-a"))
}

func TestConcurrentCreatesAreIndependent(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(p float64) {
			defer wg.Done()
			s.Create(ctx, "owner-a", snapshot(), result(p))
		}(float64(i))
	}
	wg.Wait()

	assert.Equal(t, int64(8), s.Stats(ctx, "owner-a").TotalPredictions)
}
