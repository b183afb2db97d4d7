package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"airbnb-insights/config"
	"airbnb-insights/models"
	"airbnb-insights/utils"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const snapshotKeyPrefix = "airbnb:dataset"

type cmdable interface {
	Get(context.Context, string) *redis.StringCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Del(context.Context, ...string) *redis.IntCmd
}

type snapshotPayload struct {
	RunID     string            `json:"run_id"`
	CreatedAt time.Time         `json:"created_at"`
	Listings  []*models.Listing `json:"listings"`
}

// RedisSnapshotStore shares the consolidated dataset through Redis so that
// several processes reuse one download
type RedisSnapshotStore struct {
	store  cmdable
	raw    *redis.Client
	key    string
	ttl    time.Duration
	logger *utils.Logger
}

// NewRedisSnapshotStore connects to Redis and verifies connectivity
func NewRedisSnapshotStore(ctx context.Context, url string, sources []config.CitySource, ttl time.Duration, logger *utils.Logger) (*RedisSnapshotStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	logger.Info("Connected to Redis snapshot cache")
	return &RedisSnapshotStore{
		store:  raw,
		raw:    raw,
		key:    SnapshotKey(sources),
		ttl:    ttl,
		logger: logger,
	}, nil
}

// SnapshotKey derives the cache key from the city mapping, so a changed
// mapping never serves a stale dataset
func SnapshotKey(sources []config.CitySource) string {
	parts := make([]string, 0, len(sources))
	for _, s := range sources {
		parts = append(parts, s.City+"="+s.FileID)
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, ";")))
	return snapshotKeyPrefix + ":" + hex.EncodeToString(sum[:])[:16]
}

// LoadSnapshot returns the cached dataset; ok is false on a cache miss
func (s *RedisSnapshotStore) LoadSnapshot(ctx context.Context) (*models.Dataset, bool, error) {
	data, err := s.store.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var payload snapshotPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, false, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	s.logger.Debug("Snapshot %s from %s hit", payload.RunID, payload.CreatedAt.Format(time.RFC3339))
	return &models.Dataset{Listings: payload.Listings}, true, nil
}

// SaveSnapshot stores the dataset with the configured TTL
func (s *RedisSnapshotStore) SaveSnapshot(ctx context.Context, ds *models.Dataset) error {
	payload := snapshotPayload{
		RunID:     uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Listings:  ds.Listings,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := s.store.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	s.logger.Info("Stored dataset snapshot %s (%d listings)", payload.RunID, len(payload.Listings))
	return nil
}

// Invalidate deletes the cached dataset
func (s *RedisSnapshotStore) Invalidate(ctx context.Context) error {
	if err := s.store.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

// Close shuts down the underlying client
func (s *RedisSnapshotStore) Close() error {
	if s.raw == nil {
		return nil
	}
	return s.raw.Close()
}
