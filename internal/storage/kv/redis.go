package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	redisapp "photo_studio/internal/storage/redis"

	"github.com/redis/go-redis/v9"
)

type Redis struct {
	client *redisapp.Client
	prefix string
}

func NewRedis(client *redisapp.Client, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) key(k string) string {
	return r.prefix + k
}

func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	const op = "kv.Redis.Get"

	val, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return val, nil
}

func (r *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	const op = "kv.Redis.Set"

	if err := r.client.Set(ctx, r.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	const op = "kv.Redis.Delete"

	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *Redis) Expire(ctx context.Context, key string, ttl time.Duration) error {
	const op = "kv.Redis.Expire"

	ok, err := r.client.Expire(ctx, r.key(key), ttl).Result()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return ErrNotFound
	}

	return nil
}

func (r *Redis) Incr(ctx context.Context, key string) (int64, error) {
	const op = "kv.Redis.Incr"

	n, err := r.client.Incr(ctx, r.key(key)).Result()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return n, nil
}
