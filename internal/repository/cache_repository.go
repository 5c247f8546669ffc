package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/examdesk/examdesk-api/pkg/errors"
)

// CacheRepository stores JSON aggregate snapshots in Redis.
type CacheRepository struct {
	client *redis.Client
}

// NewCacheRepository constructs the repository.
func NewCacheRepository(client *redis.Client) *CacheRepository {
	return &CacheRepository{client: client}
}

// Get unmarshals the cached value into out, or returns ErrCacheMiss.
func (r *CacheRepository) Get(ctx context.Context, key string, out interface{}) error {
	payload, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return apperrors.ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("cache decode %s: %w", key, err)
	}
	return nil
}

// Set marshals value and stores it under key with the given TTL.
func (r *CacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := r.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// DeleteByPattern removes all keys matching the glob pattern. Used to mark
// aggregates stale after a batch mutation.
func (r *CacheRepository) DeleteByPattern(ctx context.Context, pattern string) error {
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	keys := make([]string, 0, 16)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache scan %s: %w", pattern, err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache delete %s: %w", pattern, err)
	}
	return nil
}
