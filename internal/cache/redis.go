// ABOUTME: Redis implementation of the persistent cache tier.
// ABOUTME: Values live under a key prefix with TTL; tags are Redis sets of member keys.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyValue = "tribe:cache:%s"
	keyTag   = "tribe:tag:%s"
)

// NewRedis connects to Redis and verifies the connection.
func NewRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return rdb, nil
}

// RedisBackend stores cache envelopes in Redis.
type RedisBackend struct {
	rdb *redis.Client
}

var _ Backend = (*RedisBackend)(nil)

// NewRedisBackend wraps an existing client.
func NewRedisBackend(rdb *redis.Client) *RedisBackend {
	return &RedisBackend{rdb: rdb}
}

// Get fetches the envelope and its remaining TTL.
func (r *RedisBackend) Get(ctx context.Context, key string) ([]byte, time.Duration, bool, error) {
	k := fmt.Sprintf(keyValue, key)

	pipe := r.rdb.Pipeline()
	getCmd := pipe.Get(ctx, k)
	ttlCmd := pipe.PTTL(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	data, err := getCmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, 0, false, nil
	}
	if err != nil {
		return nil, 0, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	return data, ttlCmd.Val(), true, nil
}

// Set writes the envelope with TTL and records tag membership.
func (r *RedisBackend) Set(ctx context.Context, key string, data []byte, ttl time.Duration, tags []string) error {
	k := fmt.Sprintf(keyValue, key)

	pipe := r.rdb.TxPipeline()
	pipe.Set(ctx, k, data, ttl)
	for _, tag := range tags {
		pipe.SAdd(ctx, fmt.Sprintf(keyTag, tag), k)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes a single key.
func (r *RedisBackend) Delete(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, fmt.Sprintf(keyValue, key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// InvalidateTag deletes every key that was tagged, then the tag set itself.
func (r *RedisBackend) InvalidateTag(ctx context.Context, tag string) error {
	tk := fmt.Sprintf(keyTag, tag)

	members, err := r.rdb.SMembers(ctx, tk).Result()
	if err != nil {
		return fmt.Errorf("redis smembers %s: %w", tag, err)
	}

	keys := append(members, tk)
	if err := r.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis invalidate %s: %w", tag, err)
	}
	return nil
}

// Close closes the underlying client.
func (r *RedisBackend) Close() error {
	return r.rdb.Close()
}
