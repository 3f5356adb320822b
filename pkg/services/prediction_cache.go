package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const predictionCachePrefix = "sales:prediction:"

// PredictionCache stores rounded predictions. Implementations must treat
// backend errors as misses.
type PredictionCache interface {
	Get(ctx context.Context, key string) (float64, bool)
	Set(ctx context.Context, key string, value float64)
}

// RedisPredictionCache はRedisを使った予測結果キャッシュです。
type RedisPredictionCache struct {
	client *redis.Client
	ttl    time.Duration
	logger logrus.FieldLogger
}

// NewRedisPredictionCache creates a cache on an existing client.
func NewRedisPredictionCache(client *redis.Client, ttl time.Duration, logger logrus.FieldLogger) *RedisPredictionCache {
	return &RedisPredictionCache{
		client: client,
		ttl:    ttl,
		logger: logger.WithField("component", "prediction_cache"),
	}
}

// Get returns the cached value for key.
func (c *RedisPredictionCache) Get(ctx context.Context, key string) (float64, bool) {
	raw, err := c.client.Get(ctx, predictionCachePrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false
	}
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Redis error reading cached prediction")
		return 0, false
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Discarding malformed cached prediction")
		return 0, false
	}
	return value, true
}

// Set stores value under key with the configured TTL.
func (c *RedisPredictionCache) Set(ctx context.Context, key string, value float64) {
	encoded := strconv.FormatFloat(value, 'f', -1, 64)
	if err := c.client.Set(ctx, predictionCachePrefix+key, encoded, c.ttl).Err(); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Redis error caching prediction")
	}
}

// NewRedisClient connects to addr and verifies the connection with PING.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
