package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"solar-prediction-api/apperr"
	"solar-prediction-api/logger"
	"solar-prediction-api/metrics"
	"solar-prediction-api/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ExportLimit bounds how much history a single report reads.
const ExportLimit = 1000

// PredictionStore persists prediction records. Every query is scoped to one owner.
// Faults never propagate: writes report "not created", reads degrade to empty.
type PredictionStore struct {
	db  *gorm.DB
	log *logger.Logger
	now func() time.Time
}

func NewPredictionStore(db *gorm.DB, log *logger.Logger) *PredictionStore {
	return &PredictionStore{
		db:  db,
		log: log.With("component", "PredictionStore"),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the timestamp source.
func (s *PredictionStore) WithClock(now func() time.Time) *PredictionStore {
	s.now = now
	return s
}

func (s *PredictionStore) Create(ctx context.Context, ownerID string, snapshot models.InputSnapshot, result models.PredictionResult) (string, bool) {
	ts := s.now().UTC()
	rec := models.PredictionRecord{
		ID:             uuid.NewString(),
		OwnerID:        ownerID,
		InputSnapshot:  datatypes.NewJSONType(snapshot),
		Prediction:     datatypes.NewJSONType(result),
		PredictedPower: result.PredictedPowerGenerated,
		CreatedAt:      ts,
		UpdatedAt:      ts,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		metrics.PersistFailures.Inc()
		s.log.Error("Failed to create prediction", "user_id", ownerID, "error", storageFault(err))
		return "", false
	}
	metrics.PredictionsStored.Inc()
	s.log.Info("Prediction created", "user_id", ownerID, "prediction_id", rec.ID)
	return rec.ID, true
}

// List returns the owner's records newest first. A non-positive limit means no limit.
func (s *PredictionStore) List(ctx context.Context, ownerID string, limit, skip int) []models.PredictionRecord {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = math.MaxInt32
	}
	var rows []models.PredictionRecord
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Order("id DESC").
		Offset(skip).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		metrics.StoreReadFailures.WithLabelValues("list").Inc()
		s.log.Error("Failed to get predictions", "user_id", ownerID, "error", storageFault(err))
		return []models.PredictionRecord{}
	}
	if rows == nil {
		rows = []models.PredictionRecord{}
	}
	return rows
}

func (s *PredictionStore) History(ctx context.Context, ownerID string) []models.PredictionRecord {
	return s.List(ctx, ownerID, ExportLimit, 0)
}

func (s *PredictionStore) Latest(ctx context.Context, ownerID string) (*models.PredictionRecord, bool) {
	var rows []models.PredictionRecord
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(1).
		Find(&rows).Error
	if err != nil {
		metrics.StoreReadFailures.WithLabelValues("latest").Inc()
		s.log.Error("Failed to get latest prediction", "user_id", ownerID, "error", storageFault(err))
		return nil, false
	}
	if len(rows) == 0 {
		return nil, false
	}
	return &rows[0], true
}

// Delete removes a record only when it belongs to ownerID. Missing and foreign
// records are reported the same way.
func (s *PredictionStore) Delete(ctx context.Context, id, ownerID string) bool {
	res := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&models.PredictionRecord{})
	if res.Error != nil {
		s.log.Error("Failed to delete prediction", "prediction_id", id, "user_id", ownerID, "error", storageFault(res.Error))
		return false
	}
	if res.RowsAffected == 0 {
		s.log.Warn("Prediction not found or not owned by user", "prediction_id", id, "user_id", ownerID)
		return false
	}
	s.log.Info("Prediction deleted", "prediction_id", id, "user_id", ownerID)
	return true
}

func (s *PredictionStore) Stats(ctx context.Context, ownerID string) models.AggregateStats {
	var agg struct {
		Total    int64
		AvgPower sql.NullFloat64
		MaxPower sql.NullFloat64
		MinPower sql.NullFloat64
	}
	err := s.db.WithContext(ctx).
		Model(&models.PredictionRecord{}).
		Select("COUNT(*) AS total, AVG(predicted_power) AS avg_power, MAX(predicted_power) AS max_power, MIN(predicted_power) AS min_power").
		Where("owner_id = ?", ownerID).
		Scan(&agg).Error
	if err != nil {
		metrics.StoreReadFailures.WithLabelValues("stats").Inc()
		s.log.Error("Failed to get prediction stats", "user_id", ownerID, "error", storageFault(err))
		return models.AggregateStats{}
	}
	if agg.Total == 0 {
		return models.AggregateStats{}
	}

	stats := models.AggregateStats{
		TotalPredictions: agg.Total,
		AveragePower:     round2(agg.AvgPower.Float64),
		MaxPower:         round2(agg.MaxPower.Float64),
		MinPower:         round2(agg.MinPower.Float64),
	}
	if latest, ok := s.Latest(ctx, ownerID); ok {
		created := latest.CreatedAt.UTC()
		stats.LatestPredictionDate = &created
	}
	return stats
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func storageFault(err error) error {
	return fmt.Errorf("%w: %v", apperr.ErrStorageFault, err)
}
