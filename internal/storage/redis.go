package storage

import (
	"context"

	"github.com/go-redis/redis/v8"
)

// DefaultRedisPrefix namespaces client state keys in a shared Redis.
const DefaultRedisPrefix = "catalog:state:"

type redisStore struct {
	client *redis.Client
	prefix string
}

// NewRedis stores each key as a plain string under prefix+key.
func NewRedis(client *redis.Client, prefix string) KV {
	return &redisStore{client: client, prefix: prefix}
}

func (s *redisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.prefix+key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *redisStore) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, s.prefix+key, value, 0).Err()
}

func (s *redisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
