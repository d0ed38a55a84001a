package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"solar-prediction-api/logger"
	"solar-prediction-api/metrics"
	"solar-prediction-api/models"

	"gorm.io/gorm"
)

type DirectoryWriter interface {
	UpsertUser(ctx context.Context, u models.User) error
}

type SyncResult struct {
	Processed int
	Succeeded int
	Failed    int
}

// UserSyncer drains the user outbox into the directory copy. It is the only writer
// of that copy; failed events stay in the outbox and are retried up to maxAttempts.
type UserSyncer struct {
	db          *gorm.DB
	dir         DirectoryWriter
	log         *logger.Logger
	batchSize   int
	maxAttempts int
	now         func() time.Time
}

func NewUserSyncer(db *gorm.DB, dir DirectoryWriter, batchSize, maxAttempts int, log *logger.Logger) *UserSyncer {
	if batchSize <= 0 {
		batchSize = 100
	}
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &UserSyncer{
		db:          db,
		dir:         dir,
		log:         log.With("service", "user-sync"),
		batchSize:   batchSize,
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

// RunOnce processes one batch of pending events, oldest first.
func (s *UserSyncer) RunOnce(ctx context.Context) (SyncResult, error) {
	start := time.Now()
	defer func() {
		metrics.UserSyncCycleDuration.Observe(time.Since(start).Seconds())
	}()

	var events []models.UserSyncEvent
	err := s.db.WithContext(ctx).
		Where("status = ? AND attempts < ?", models.SyncStatusPending, s.maxAttempts).
		Order("id ASC").
		Limit(s.batchSize).
		Find(&events).Error
	if err != nil {
		return SyncResult{}, fmt.Errorf("load pending sync events: %w", err)
	}

	var res SyncResult
	for _, ev := range events {
		if ctx.Err() != nil {
			break
		}
		res.Processed++
		if err := s.apply(ctx, ev); err != nil {
			res.Failed++
			s.recordFailure(ctx, ev, err)
			continue
		}
		res.Succeeded++
		s.recordSuccess(ctx, ev)
	}

	if res.Processed > 0 {
		s.log.Info("User sync cycle complete",
			"processed", res.Processed, "succeeded", res.Succeeded, "failed", res.Failed)
	}
	return res, nil
}

func (s *UserSyncer) apply(ctx context.Context, ev models.UserSyncEvent) error {
	if ev.Op != models.SyncOpUpsert {
		return fmt.Errorf("unsupported op %q", ev.Op)
	}
	var u models.User
	if err := json.Unmarshal(ev.Payload, &u); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	if u.ID == "" {
		u.ID = ev.UserID
	}
	return s.dir.UpsertUser(ctx, u)
}

func (s *UserSyncer) recordSuccess(ctx context.Context, ev models.UserSyncEvent) {
	now := s.now().UTC()
	err := s.db.WithContext(ctx).Model(&models.UserSyncEvent{}).
		Where("id = ?", ev.ID).
		Updates(map[string]interface{}{
			"status":       models.SyncStatusDone,
			"attempts":     ev.Attempts + 1,
			"last_error":   "",
			"processed_at": now,
		}).Error
	if err != nil {
		s.log.Error("Failed to mark sync event done", "event_id", ev.ID, "error", err)
	}
	metrics.UserSyncEvents.WithLabelValues(models.SyncStatusDone).Inc()
}

func (s *UserSyncer) recordFailure(ctx context.Context, ev models.UserSyncEvent, cause error) {
	attempts := ev.Attempts + 1
	status := models.SyncStatusPending
	if attempts >= s.maxAttempts {
		status = models.SyncStatusFailed
	}
	err := s.db.WithContext(ctx).Model(&models.UserSyncEvent{}).
		Where("id = ?", ev.ID).
		Updates(map[string]interface{}{
			"status":     status,
			"attempts":   attempts,
			"last_error": cause.Error(),
		}).Error
	if err != nil {
		s.log.Error("Failed to record sync failure", "event_id", ev.ID, "error", err)
	}
	s.log.Warn("User sync event failed",
		"event_id", ev.ID, "user_id", ev.UserID, "attempts", attempts, "status", status, "error", cause)
	metrics.UserSyncEvents.WithLabelValues(status).Inc()
}
