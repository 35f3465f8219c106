package cache

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/mentormatch/mentormatch/core"
)

type redisCache struct {
	client *redis.Client
}

var _ core.Cache = (*redisCache)(nil)

// NewRedisClient connects to redis and checks the connection.
func NewRedisClient(ctx context.Context, conf *core.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Addr,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "pinging redis")
	}
	return client, nil
}

func NewRedisCache(client *redis.Client) core.Cache {
	return &redisCache{client: client}
}

// New returns a redis Cache when redis is configured, a no-op one otherwise.
// The returned func releases the connection.
func New(ctx context.Context, conf *core.Config) (core.Cache, func() error, error) {
	if conf.Redis.Addr == "" {
		return core.NewNoopCache(), func() error { return nil }, nil
	}
	client, err := NewRedisClient(ctx, conf)
	if err != nil {
		return nil, nil, err
	}
	return NewRedisCache(client), client.Close, nil
}

func (c *redisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, core.ErrCacheMiss
		}
		return nil, errors.Wrap(err, "redis get")
	}
	return val, nil
}

func (c *redisCache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return errors.Wrap(c.client.Set(ctx, key, val, ttl).Err(), "redis set")
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return errors.Wrap(c.client.Del(ctx, keys...).Err(), "redis del")
}

func (c *redisCache) Incr(ctx context.Context, key string) (int64, error) {
	n, err := c.client.Incr(ctx, key).Result()
	return n, errors.Wrap(err, "redis incr")
}
