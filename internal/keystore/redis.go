package keystore

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps values as plain redis strings under a common prefix.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) key(name string) string {
	return s.prefix + name
}

func (s *RedisStore) Get(ctx context.Context, name string) (string, bool, error) {
	res, err := s.rdb.Get(ctx, s.key(name)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return res, true, nil
}

// Set stores a value without expiry; the key survives until cleared.
func (s *RedisStore) Set(ctx context.Context, name, value string) error {
	return s.rdb.Set(ctx, s.key(name), value, 0).Err()
}

func (s *RedisStore) Delete(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		return nil
	}
	keys := make([]string, 0, len(names))
	for _, n := range names {
		keys = append(keys, s.key(n))
	}
	return s.rdb.Del(ctx, keys...).Err()
}
