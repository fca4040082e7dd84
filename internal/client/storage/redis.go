package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisNamespace prefixes every key written by RedisStorage.
const DefaultRedisNamespace = "foodfinder:"

// RedisStorage keeps items as plain string keys under a namespace.
type RedisStorage struct {
	rdb       redis.UniversalClient
	namespace string
}

func NewRedisStorage(rdb redis.UniversalClient, namespace string) *RedisStorage {
	if namespace == "" {
		namespace = DefaultRedisNamespace
	}
	return &RedisStorage{rdb: rdb, namespace: namespace}
}

// OpenRedisStorage connects to addr and verifies the connection with PING.
func OpenRedisStorage(ctx context.Context, addr string) (*RedisStorage, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return NewRedisStorage(rdb, DefaultRedisNamespace), nil
}

func (r *RedisStorage) key(k string) string {
	return r.namespace + k
}

func (r *RedisStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	v, err := r.rdb.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, true, nil
}

func (r *RedisStorage) SetItem(ctx context.Context, key string, value string) error {
	if err := r.rdb.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *RedisStorage) RemoveItem(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	return r.rdb.Close()
}
