package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Episodes are kept for a day; they exist for post-run inspection, not as a
// system of record.
const episodeTTL = 24 * time.Hour

// RedisStore implements Store using Redis
type RedisStore struct {
	client *redis.Client
	logger *slog.Logger
}

// Ensure RedisStore implements Store interface
var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a new Redis-backed episode store
func NewRedisStore(redisURL string, logger *slog.Logger) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisURL,
	})

	return &RedisStore{
		client: rdb,
		logger: logger,
	}
}

func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

func episodeKey(id uuid.UUID) string {
	return "episode:" + id.String()
}

func (r *RedisStore) SaveEpisode(ctx context.Context, ep *Episode) error {
	data, err := json.Marshal(ep)
	if err != nil {
		r.logger.Error("Failed to marshal episode", "id", ep.ID, "error", err)
		return fmt.Errorf("failed to marshal episode: %w", err)
	}

	if err := r.client.Set(ctx, episodeKey(ep.ID), data, episodeTTL).Err(); err != nil {
		r.logger.Error("Failed to save episode", "id", ep.ID, "error", err)
		return fmt.Errorf("failed to save episode: %w", err)
	}
	return nil
}

func (r *RedisStore) LoadEpisode(ctx context.Context, id uuid.UUID) (*Episode, error) {
	data, err := r.client.Get(ctx, episodeKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Warn("Episode not found", "id", id)
			return nil, nil
		}
		r.logger.Error("Failed to load episode", "id", id, "error", err)
		return nil, fmt.Errorf("failed to load episode: %w", err)
	}

	var ep Episode
	if err := json.Unmarshal([]byte(data), &ep); err != nil {
		r.logger.Error("Failed to unmarshal episode", "id", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal episode: %w", err)
	}
	return &ep, nil
}

func (r *RedisStore) DeleteEpisode(ctx context.Context, id uuid.UUID) error {
	if err := r.client.Del(ctx, episodeKey(id)).Err(); err != nil {
		r.logger.Error("Failed to delete episode", "id", id, "error", err)
		return fmt.Errorf("failed to delete episode: %w", err)
	}
	return nil
}
