package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"solar-prediction-api/apperr"
	"solar-prediction-api/estimator"
	"solar-prediction-api/logger"
	"solar-prediction-api/models"
	"solar-prediction-api/store"
	"solar-prediction-api/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func predictInput(overrides map[string]interface{}) map[string]interface{} {
	raw := map[string]interface{}{
		"panel_area":  50.0,
		"tilt":        30.0,
		"azimuth":     180.0,
		"ghi":         800.0,
		"dni":         600.0,
		"temperature": 25.0,
		"humidity":    60.0,
		"wind_speed":  3.0,
		"cloud_cover": "Thin high clouds",
		"location":    "Ahmedabad",
		"date":        "2025-06-01",
		"time":        "13:30",
	}
	for k, v := range overrides {
		raw[k] = v
	}
	return raw
}

func newTestPredictionService(t *testing.T, est *estimator.Estimator) *PredictionService {
	t.Helper()
	ts := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		ts = ts.Add(time.Minute)
		return ts
	}
	repo := store.NewPredictionStore(testutil.OpenDB(t), logger.Nop()).WithClock(clock)
	return NewPredictionService(est, repo, NewCacheServiceWithClient(nil, logger.Nop()), logger.Nop())
}

func TestPredictPersistsFallbackEstimate(t *testing.T) {
	svc := newTestPredictionService(t, estimator.New(nil, true))
	ctx := context.Background()

	got, err := svc.Predict(ctx, "owner-1", predictInput(nil))
	require.NoError(t, err)

	assert.InDelta(t, 7.52, got.Result.PredictedPowerGenerated, 1e-9)
	assert.Equal(t, estimator.FallbackModelType, got.Result.ModelInfo.ModelType)
	assert.NotEmpty(t, got.PredictionID)

	latest, ok := svc.Latest(ctx, "owner-1")
	require.True(t, ok)
	assert.Equal(t, got.PredictionID, latest.ID)

	snap := latest.InputSnapshot.Data()
	assert.Equal(t, "Ahmedabad", snap.Location)
	assert.Equal(t, "13:30", snap.Time)
	assert.Equal(t, "800.0", snap.SolarIrradiance)
}

func TestPredictReturnsEstimateWhenStoreFails(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := store.NewPredictionStore(db, logger.Nop())
	svc := NewPredictionService(estimator.New(nil, true), repo, NewCacheServiceWithClient(nil, logger.Nop()), logger.Nop())

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	got, err := svc.Predict(context.Background(), "owner-1", predictInput(nil))
	require.NoError(t, err)
	assert.InDelta(t, 7.52, got.Result.PredictedPowerGenerated, 1e-9)
	assert.Equal(t, estimator.FallbackModelType, got.Result.ModelInfo.ModelType)
	assert.Empty(t, got.PredictionID)
}

func TestPredictRejectsInvalidInputWithoutWriting(t *testing.T) {
	svc := newTestPredictionService(t, estimator.New(nil, true))
	ctx := context.Background()

	_, err := svc.Predict(ctx, "owner-1", predictInput(map[string]interface{}{"humidity": 150.0}))
	assert.True(t, errors.Is(err, apperr.ErrInvalidParameter))

	raw := predictInput(nil)
	delete(raw, "ghi")
	_, err = svc.Predict(ctx, "owner-1", raw)
	assert.True(t, errors.Is(err, apperr.ErrMissingParameter))

	assert.Empty(t, svc.List(ctx, "owner-1", 0, 0))
}

func TestPredictUnavailableEstimator(t *testing.T) {
	svc := newTestPredictionService(t, estimator.New(nil, false))

	_, err := svc.Predict(context.Background(), "owner-1", predictInput(nil))
	assert.True(t, errors.Is(err, apperr.ErrEstimationUnavailable))
}

func TestPredictWithoutOwnerIsNotStored(t *testing.T) {
	svc := newTestPredictionService(t, estimator.New(nil, true))

	got, err := svc.Predict(context.Background(), "", predictInput(nil))
	require.NoError(t, err)
	assert.Empty(t, got.PredictionID)
}

func TestStatsAndDeleteThroughService(t *testing.T) {
	svc := newTestPredictionService(t, estimator.New(nil, true))
	ctx := context.Background()

	var ids []string
	for _, area := range []float64{10, 20, 60} {
		p, err := svc.Predict(ctx, "owner-1", predictInput(map[string]interface{}{"panel_area": area}))
		require.NoError(t, err)
		ids = append(ids, p.PredictionID)
	}

	stats := svc.Stats(ctx, "owner-1")
	assert.Equal(t, int64(3), stats.TotalPredictions)
	assert.Equal(t, 9.02, stats.MaxPower)
	assert.Equal(t, 1.5, stats.MinPower)

	assert.False(t, svc.Delete(ctx, ids[0], "owner-2"))
	assert.True(t, svc.Delete(ctx, ids[0], "owner-1"))
	assert.False(t, svc.Delete(ctx, ids[0], "owner-1"))

	assert.Equal(t, int64(2), svc.Stats(ctx, "owner-1").TotalPredictions)
}

func TestRecommendationsFollowLatestPrediction(t *testing.T) {
	svc := newTestPredictionService(t, estimator.New(nil, true))
	ctx := context.Background()

	items := svc.Recommendations(ctx, "owner-1")
	require.Len(t, items, 1)
	assert.Equal(t, "No Prediction Data", items[0].Title)

	_, err := svc.Predict(ctx, "owner-1", predictInput(map[string]interface{}{
		"panel_area": 10.0, "tilt": 32.0, "humidity": 50.0, "temperature": 20.0,
	}))
	require.NoError(t, err)

	items = svc.Recommendations(ctx, "owner-1")
	require.Len(t, items, 1)
	assert.Equal(t, "Increase Panel Area", items[0].Title)
}

func TestCacheWithoutRedisIsNoop(t *testing.T) {
	cache := NewCacheServiceWithClient(nil, logger.Nop())
	ctx := context.Background()

	assert.False(t, cache.Available())
	assert.NoError(t, cache.Set(ctx, "k", 1, time.Second))
	var v models.AggregateStats
	found, err := cache.Get(ctx, "k", &v)
	assert.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, cache.Publish(ctx, "ch", "msg"))
	assert.Nil(t, cache.Subscribe(ctx, "ch"))
	assert.NoError(t, cache.Close())
}

func TestInProcessRevocationExpires(t *testing.T) {
	cache := NewCacheServiceWithClient(nil, logger.Nop())
	ctx := context.Background()

	require.NoError(t, cache.Revoke(ctx, "jti-1", time.Hour))
	revoked, err := cache.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	cache.revoked.Store("jti-2", time.Now().Add(-time.Second))
	revoked, err = cache.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)

	revoked, _ = cache.IsRevoked(ctx, "unknown")
	assert.False(t, revoked)
}
