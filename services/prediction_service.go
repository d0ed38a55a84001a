package services

import (
	"context"
	"time"

	"solar-prediction-api/estimator"
	"solar-prediction-api/features"
	"solar-prediction-api/logger"
	"solar-prediction-api/metrics"
	"solar-prediction-api/models"
	"solar-prediction-api/recommend"
)

type PredictionRepository interface {
	Create(ctx context.Context, ownerID string, snapshot models.InputSnapshot, result models.PredictionResult) (string, bool)
	List(ctx context.Context, ownerID string, limit, skip int) []models.PredictionRecord
	Latest(ctx context.Context, ownerID string) (*models.PredictionRecord, bool)
	Delete(ctx context.Context, id, ownerID string) bool
	Stats(ctx context.Context, ownerID string) models.AggregateStats
}

// PredictionCache is the slice of CacheService the prediction flow depends on.
type PredictionCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	StatsGeneration(ctx context.Context, ownerID string) (int64, error)
	BumpStatsGeneration(ctx context.Context, ownerID string) error
	Publish(ctx context.Context, channel string, message interface{}) error
}

type Prediction struct {
	Result       models.PredictionResult
	PredictionID string
}

// LiveEvent is what subscribers of an owner's prediction channel receive.
type LiveEvent struct {
	Type       string                   `json:"type"`
	Prediction *models.PredictionRecord `json:"prediction,omitempty"`
	DeletedID  string                   `json:"deleted_id,omitempty"`
}

type PredictionService struct {
	est   *estimator.Estimator
	repo  PredictionRepository
	cache PredictionCache
	log   *logger.Logger
}

func NewPredictionService(est *estimator.Estimator, repo PredictionRepository, cache PredictionCache, log *logger.Logger) *PredictionService {
	return &PredictionService{
		est:   est,
		repo:  repo,
		cache: cache,
		log:   log.With("service", "predictions"),
	}
}

func (s *PredictionService) Estimator() *estimator.Estimator {
	return s.est
}

// Predict validates raw input, estimates power and stores the result for the owner.
// A storage failure is logged and the estimate is still returned without an id.
func (s *PredictionService) Predict(ctx context.Context, ownerID string, raw map[string]interface{}) (Prediction, error) {
	fs, err := features.Validate(raw)
	if err != nil {
		return Prediction{}, err
	}

	result, err := s.est.Estimate(fs, estimator.ContextFromRaw(raw))
	if err != nil {
		s.log.Error("Estimation failed", "user_id", ownerID, "error", err)
		return Prediction{}, err
	}
	metrics.PredictionsTotal.WithLabelValues(s.mode()).Inc()

	out := Prediction{Result: result}
	if ownerID == "" {
		return out, nil
	}

	id, ok := s.repo.Create(ctx, ownerID, features.Snapshot(raw, fs), result)
	if !ok {
		s.log.Warn("Prediction returned without being stored", "user_id", ownerID)
		return out, nil
	}
	out.PredictionID = id

	s.invalidateStats(ownerID)
	if rec, found := s.repo.Latest(ctx, ownerID); found && rec.ID == id {
		s.publish(ownerID, LiveEvent{Type: "prediction.created", Prediction: rec})
	}
	return out, nil
}

func (s *PredictionService) List(ctx context.Context, ownerID string, limit, skip int) []models.PredictionRecord {
	return s.repo.List(ctx, ownerID, limit, skip)
}

func (s *PredictionService) Latest(ctx context.Context, ownerID string) (*models.PredictionRecord, bool) {
	return s.repo.Latest(ctx, ownerID)
}

func (s *PredictionService) Delete(ctx context.Context, id, ownerID string) bool {
	if !s.repo.Delete(ctx, id, ownerID) {
		return false
	}
	s.invalidateStats(ownerID)
	s.publish(ownerID, LiveEvent{Type: "prediction.deleted", DeletedID: id})
	return true
}

// Stats reads through the short-lived stats cache. The generation is read before
// the database so a concurrent write always moves readers past this entry.
func (s *PredictionService) Stats(ctx context.Context, ownerID string) models.AggregateStats {
	gen, err := s.cache.StatsGeneration(ctx, ownerID)
	if err != nil {
		s.log.Warn("Stats generation read failed", "user_id", ownerID, "error", err)
		return s.repo.Stats(ctx, ownerID)
	}
	key := StatsKey(ownerID, gen)

	var cached models.AggregateStats
	if found, err := s.cache.Get(ctx, key, &cached); err == nil && found {
		return cached
	} else if err != nil {
		s.log.Warn("Stats cache read failed", "user_id", ownerID, "error", err)
	}

	stats := s.repo.Stats(ctx, ownerID)
	cctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.cache.Set(cctx, key, stats, StatsTTL); err != nil {
		s.log.Warn("Stats cache write failed", "user_id", ownerID, "error", err)
	}
	return stats
}

func (s *PredictionService) Recommendations(ctx context.Context, ownerID string) []recommend.Item {
	latest, ok := s.repo.Latest(ctx, ownerID)
	if !ok {
		return recommend.Evaluate(nil)
	}
	return recommend.Evaluate(recommend.SnapshotOf(latest))
}

func (s *PredictionService) mode() string {
	if s.est.Available() {
		return "model"
	}
	return "fallback"
}

func (s *PredictionService) invalidateStats(ownerID string) {
	cctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.cache.BumpStatsGeneration(cctx, ownerID); err != nil {
		s.log.Warn("Stats cache invalidation failed", "user_id", ownerID, "error", err)
	}
}

func (s *PredictionService) publish(ownerID string, ev LiveEvent) {
	go func() {
		cctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.cache.Publish(cctx, PredictionChannel(ownerID), ev); err != nil {
			s.log.Warn("Failed to publish prediction event", "user_id", ownerID, "error", err)
		}
	}()
}
