package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisStore implements Store on Redis. This is the shared backend: every
// client session sees the same namespace.
type RedisStore struct {
	rdb  *redis.Client
	keys *KeyBuilder
	log  *zap.Logger
}

// NewRedisStore creates a Redis-backed store and verifies the connection.
func NewRedisStore(redisURL, environment string, log *zap.Logger) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opts.PoolSize = 50
	opts.MinIdleConns = 5
	opts.MaxRetries = 3
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{
		rdb:  rdb,
		keys: NewKeyBuilder(environment),
		log:  log,
	}, nil
}

// Get retrieves a value. A missing key returns ErrNotFound.
func (s *RedisStore) Get(ctx context.Context, key string, scope Scope) (string, error) {
	start := time.Now()
	val, err := s.rdb.Get(ctx, s.keys.Build(key, scope)).Result()
	dur := time.Since(start)
	if err == redis.Nil {
		s.log.Debug("store_get_miss",
			zap.String("key_prefix", prefixForLog(key)),
			zap.Duration("duration", dur))
		return "", ErrNotFound
	}
	if err != nil {
		s.log.Info("store_get",
			zap.String("key_prefix", prefixForLog(key)),
			zap.Duration("duration", dur),
			zap.Error(err))
		return "", fmt.Errorf("redis get: %w", err)
	}
	s.log.Debug("store_get",
		zap.String("key_prefix", prefixForLog(key)),
		zap.Duration("duration", dur))
	return val, nil
}

// Set stores a value without expiry. Failures propagate to the caller.
func (s *RedisStore) Set(ctx context.Context, key, value string, scope Scope) error {
	start := time.Now()
	err := s.rdb.Set(ctx, s.keys.Build(key, scope), value, 0).Err()
	dur := time.Since(start)
	if err != nil {
		s.log.Info("store_set",
			zap.String("key_prefix", prefixForLog(key)),
			zap.Duration("duration", dur),
			zap.Error(err))
		return fmt.Errorf("redis set: %w", err)
	}
	s.log.Debug("store_set",
		zap.String("key_prefix", prefixForLog(key)),
		zap.Duration("duration", dur))
	return nil
}

// Delete removes a key. Deleting a missing key is not an error.
func (s *RedisStore) Delete(ctx context.Context, key string, scope Scope) error {
	start := time.Now()
	err := s.rdb.Del(ctx, s.keys.Build(key, scope)).Err()
	s.log.Debug("store_del",
		zap.String("key_prefix", prefixForLog(key)),
		zap.Duration("duration", time.Since(start)),
		zap.Error(err))
	if err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// List returns all keys with the given prefix, with the namespace stripped.
func (s *RedisStore) List(ctx context.Context, prefix string, scope Scope) ([]string, error) {
	start := time.Now()
	match := s.keys.Build(prefix, scope) + "*"

	var keys []string
	iter := s.rdb.Scan(ctx, 0, match, 100).Iterator()
	for iter.Next(ctx) {
		if key, ok := s.keys.Strip(iter.Val(), scope); ok {
			keys = append(keys, key)
		}
	}
	dur := time.Since(start)
	if err := iter.Err(); err != nil {
		s.log.Info("store_list",
			zap.String("prefix", prefix),
			zap.Duration("duration", dur),
			zap.Error(err))
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	s.log.Debug("store_list",
		zap.String("prefix", prefix),
		zap.Int("keys", len(keys)),
		zap.Duration("duration", dur))
	return keys, nil
}

// Health checks the Redis connection.
func (s *RedisStore) Health(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
