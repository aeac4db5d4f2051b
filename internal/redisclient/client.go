package redisclient

import (
	"blogger-lister/internal/config"

	"github.com/redis/go-redis/v9"
)

// New creates a Redis client for the key store backend.
func New(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}
