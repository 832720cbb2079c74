package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/dalfonso89/gbp-rates-service/internal/config"
	"github.com/dalfonso89/gbp-rates-service/internal/models"
)

const redisKeyPrefix = "gbp-rates:"

// Redis is a Cache shared between service instances. Values are stored as JSON
// with the TTL as the key expiry. Backend failures are logged and read as misses.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	logger *logrus.Entry
}

// NewRedis connects to Redis and verifies the connection with a ping
func NewRedis(ctx context.Context, cfg config.RedisConfig, ttl time.Duration, logger *logrus.Logger) (*Redis, error) {
	options, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(options)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", options.Addr, err)
	}

	return &Redis{
		client: client,
		ttl:    ttl,
		logger: logger.WithField("module", "cache.redis"),
	}, nil
}

func redisOptions(cfg config.RedisConfig) (*redis.Options, error) {
	if strings.HasPrefix(cfg.URL, "redis://") || strings.HasPrefix(cfg.URL, "rediss://") {
		options, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("redis.ParseURL: %w", err)
		}
		if cfg.Password != "" {
			options.Password = cfg.Password
		}
		return options, nil
	}

	return &redis.Options{
		Addr:     cfg.URL,
		Password: cfg.Password,
		DB:       cfg.DB,
	}, nil
}

// Get returns the value stored under key
func (redisCache *Redis) Get(ctx context.Context, key string) (models.RatesResult, bool) {
	data, err := redisCache.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			redisCache.logger.Warnf("redis get %s: %v", key, err)
		}
		return models.RatesResult{}, false
	}

	var result models.RatesResult
	if err := json.Unmarshal(data, &result); err != nil {
		redisCache.logger.Warnf("decode cached %s: %v", key, err)
		return models.RatesResult{}, false
	}
	return result, true
}

// Set stores value under key with the TTL as expiry
func (redisCache *Redis) Set(ctx context.Context, key string, value models.RatesResult) {
	data, err := json.Marshal(value)
	if err != nil {
		redisCache.logger.Warnf("encode %s: %v", key, err)
		return
	}

	if err := redisCache.client.Set(ctx, redisKeyPrefix+key, data, redisCache.ttl).Err(); err != nil {
		redisCache.logger.Warnf("redis set %s: %v", key, err)
	}
}

// Delete removes key
func (redisCache *Redis) Delete(ctx context.Context, key string) {
	if err := redisCache.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		redisCache.logger.Warnf("redis del %s: %v", key, err)
	}
}

// Flush removes every key written by this service, leaving the rest of the database alone
func (redisCache *Redis) Flush(ctx context.Context) {
	iter := redisCache.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		redisCache.logger.Warnf("redis scan: %v", err)
		return
	}
	if len(keys) == 0 {
		return
	}

	if err := redisCache.client.Del(ctx, keys...).Err(); err != nil {
		redisCache.logger.Warnf("redis flush: %v", err)
	}
}

// Close releases the connection pool
func (redisCache *Redis) Close() error {
	return redisCache.client.Close()
}
