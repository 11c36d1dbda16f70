package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/railbooking/railbooking/config"
	"github.com/railbooking/railbooking/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisCache keeps train listings in one hash, one field per filter, so a
// single DEL drops every cached listing after an inventory change.
type RedisCache struct {
	client    redis.Cmdable
	trainsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, trainsTTL time.Duration) *RedisCache {
	return NewRedisCacheWithClient(
		redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		trainsTTL,
	)
}

func NewRedisCacheWithClient(client redis.Cmdable, trainsTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, trainsTTL: trainsTTL}
}

// GetTrains returns nil, nil on a miss.
func (c *RedisCache) GetTrains(ctx context.Context, filter domain.TrainFilter) ([]domain.Train, error) {
	data, err := c.client.HGet(ctx, trainsKey(), filter.Key()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var trains []domain.Train
	if err := json.Unmarshal(data, &trains); err != nil {
		return nil, err
	}
	return trains, nil
}

func (c *RedisCache) SetTrains(ctx context.Context, filter domain.TrainFilter, trains []domain.Train) error {
	payload, err := json.Marshal(trains)
	if err != nil {
		return err
	}
	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, trainsKey(), filter.Key(), payload)
	// Only the first write after an invalidation sets the expiry, so
	// listings never outlive the TTL of the oldest entry.
	pipe.ExpireNX(ctx, trainsKey(), c.trainsTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (c *RedisCache) InvalidateTrains(ctx context.Context) error {
	return c.client.Del(ctx, trainsKey()).Err()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func trainsKey() string {
	return "cache:trains"
}
