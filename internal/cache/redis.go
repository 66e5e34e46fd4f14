// Package cache provides the Redis-backed cache for analysis reports.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	// AnalysisKeyPrefix prefixes cached analysis reports
	AnalysisKeyPrefix = "analysis:"
	// DefaultTTL is the fallback cache lifetime
	DefaultTTL = 5 * time.Minute
)

// ErrCacheMiss is returned when a key is absent
var ErrCacheMiss = errors.New("cache miss")

// RedisCache wraps a Redis client for report caching
type RedisCache struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisCache connects to Redis and verifies the connection
func NewRedisCache(addr, password string, db int) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     50,
		MinIdleConns: 5,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx := context.Background()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{
		client: client,
		ctx:    ctx,
	}, nil
}

// AnalysisKey builds the cache key for a patient analysis report
func AnalysisKey(patientID uint, days int) string {
	return fmt.Sprintf("%s%d:%d", AnalysisKeyPrefix, patientID, days)
}

// SetWithTTL stores a JSON-encoded value under key
func (r *RedisCache) SetWithTTL(key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(r.ctx, key, data, ttl).Err()
}

// Get loads a JSON-encoded value into dest
func (r *RedisCache) Get(key string, dest interface{}) error {
	data, err := r.client.Get(r.ctx, key).Bytes()
	if err == redis.Nil {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// Invalidate removes keys matching the patient's analysis entries
func (r *RedisCache) Invalidate(patientID uint) error {
	pattern := fmt.Sprintf("%s%d:*", AnalysisKeyPrefix, patientID)
	keys, err := r.client.Keys(r.ctx, pattern).Result()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(r.ctx, keys...).Err()
}

// Ping checks the Redis connection
func (r *RedisCache) Ping() error {
	return r.client.Ping(r.ctx).Err()
}

// Close closes the connection
func (r *RedisCache) Close() error {
	return r.client.Close()
}
