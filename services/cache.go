package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"solar-prediction-api/config"
	"solar-prediction-api/logger"
	"solar-prediction-api/models"

	"github.com/redis/go-redis/v9"
)

const (
	StatsTTL          = 30 * time.Second
	StatsGenTTL       = 24 * time.Hour
	GenerationChannel = "solar:generation:live"
)

var ErrCacheUnavailable = errors.New("redis unavailable")

func StatsKey(ownerID string, gen int64) string {
	return "stats:" + ownerID + ":" + strconv.FormatInt(gen, 10)
}

func StatsGenKey(ownerID string) string       { return "stats_gen:" + ownerID }
func PredictionChannel(ownerID string) string { return "solar:predictions:" + ownerID }
func RevokedKey(jti string) string            { return "auth:revoked:" + jti }
func UserKey(userID string) string            { return "solar:users:" + userID }

// CacheService wraps redis. With a nil client every operation degrades to a no-op,
// except revocations which fall back to process memory.
type CacheService struct {
	client  *redis.Client
	log     *logger.Logger
	revoked sync.Map // jti -> expiry, used only without redis
}

func NewCacheService(cfg config.RedisConfig, log *logger.Logger) (*CacheService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Retry up to 10 times (covers sidecar startup delay)
	var lastErr error
	for i := 0; i < 10; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		lastErr = client.Ping(ctx).Err()
		cancel()
		if lastErr == nil {
			return &CacheService{client: client, log: log}, nil
		}
		log.Warn("Redis ping failed", "attempt", i+1, "max_attempts", 10, "error", lastErr)
		time.Sleep(2 * time.Second)
	}

	_ = client.Close()
	return &CacheService{log: log}, fmt.Errorf("redis ping failed after 10 attempts: %w", lastErr)
}

func NewCacheServiceWithClient(client *redis.Client, log *logger.Logger) *CacheService {
	return &CacheService{client: client, log: log}
}

func (s *CacheService) Client() *redis.Client {
	return s.client
}

func (s *CacheService) Available() bool {
	return s.client != nil
}

// Get decodes the cached value into dest and reports whether the key was present.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if s.client == nil {
		return false, nil
	}
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, err
	}
	return true, nil
}

func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if s.client == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

func (s *CacheService) Delete(ctx context.Context, key string) error {
	if s.client == nil {
		return nil
	}
	return s.client.Del(ctx, key).Err()
}

// StatsGeneration returns the owner's current stats generation. Cached stats are
// keyed by generation, so a write computed before an invalidation lands on a key
// nobody reads any more.
func (s *CacheService) StatsGeneration(ctx context.Context, ownerID string) (int64, error) {
	if s.client == nil {
		return 0, nil
	}
	gen, err := s.client.Get(ctx, StatsGenKey(ownerID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (s *CacheService) BumpStatsGeneration(ctx context.Context, ownerID string) error {
	if s.client == nil {
		return nil
	}
	pipe := s.client.TxPipeline()
	pipe.Incr(ctx, StatsGenKey(ownerID))
	pipe.Expire(ctx, StatsGenKey(ownerID), StatsGenTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *CacheService) Publish(ctx context.Context, channel string, message interface{}) error {
	if s.client == nil {
		return nil
	}
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return s.client.Publish(ctx, channel, data).Err()
}

func (s *CacheService) Subscribe(ctx context.Context, channel string) *redis.PubSub {
	if s.client == nil {
		return nil
	}
	return s.client.Subscribe(ctx, channel)
}

func (s *CacheService) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if s.client == nil {
		s.revoked.Store(jti, time.Now().Add(ttl))
		return nil
	}
	return s.client.Set(ctx, RevokedKey(jti), "1", ttl).Err()
}

func (s *CacheService) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if s.client == nil {
		v, ok := s.revoked.Load(jti)
		if !ok {
			return false, nil
		}
		if time.Now().After(v.(time.Time)) {
			s.revoked.Delete(jti)
			return false, nil
		}
		return true, nil
	}
	n, err := s.client.Exists(ctx, RevokedKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// UpsertUser writes the directory copy of a user. Repeating it with the same user is a no-op.
func (s *CacheService) UpsertUser(ctx context.Context, u models.User) error {
	if s.client == nil {
		return ErrCacheUnavailable
	}
	return s.client.HSet(ctx, UserKey(u.ID), map[string]interface{}{
		"id":         u.ID,
		"email":      u.Email,
		"name":       u.Name,
		"is_active":  u.IsActive,
		"created_at": u.CreatedAt.UTC().Format(time.RFC3339),
	}).Err()
}

func (s *CacheService) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
