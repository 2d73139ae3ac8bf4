package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewRedisClient creates and verifies a Redis client from a redis:// URL.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return rdb, nil
}

// RedisStore is the production Store backed by a shared Redis instance.
// Per-key atomicity of SET and SETNX is the only mutual exclusion it relies
// on.
type RedisStore struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisStore(client *redis.Client, log *zap.Logger) *RedisStore {
	return &RedisStore{client: client, logger: log}
}

func (s *RedisStore) Lookup(ctx context.Context, fingerprint string, dest any) (bool, error) {
	data, err := s.client.Get(ctx, decisionKey(fingerprint)).Result()
	if err == nil {
		if err := json.Unmarshal([]byte(data), dest); err != nil {
			// A corrupt entry behaves like a miss so the message is
			// simply recomputed.
			s.logger.Warn("dropping undecodable cache entry",
				zap.String("fingerprint", fingerprint), zap.Error(err))
			_ = s.client.Del(ctx, decisionKey(fingerprint)).Err()
			return false, nil
		}
		return true, nil
	}
	if err != redis.Nil {
		return false, fmt.Errorf("cache lookup: %w", err)
	}

	inflight, err := s.client.Exists(ctx, inflightKey(fingerprint)).Result()
	if err != nil {
		return false, fmt.Errorf("cache lookup: %w", err)
	}
	if inflight > 0 {
		return false, ErrInProgress
	}

	return false, nil
}

func (s *RedisStore) Begin(ctx context.Context, fingerprint string) (bool, error) {
	ok, err := s.client.SetNX(ctx, inflightKey(fingerprint), "1", markerTTL).Result()
	if err != nil {
		return false, fmt.Errorf("cache begin: %w", err)
	}
	return ok, nil
}

func (s *RedisStore) Store(ctx context.Context, fingerprint string, decision any, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	data, err := json.Marshal(decision)
	if err != nil {
		return fmt.Errorf("cache store: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, decisionKey(fingerprint), data, ttl)
	pipe.Del(ctx, inflightKey(fingerprint))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache store: %w", err)
	}
	return nil
}

// Invalidate scans out every decision key. Inflight markers go with them
// since they share the prefix.
func (s *RedisStore) Invalidate(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, decisionPrefix+"*", 100).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}

	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}

	s.logger.Info("invalidated cached decisions", zap.Int("count", len(keys)))
	return nil
}
