package cache

import (
	"context"
	"fmt"

	"clinic-booking-saga/config"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient opens the connection backing the quota arbiter's Lua
// scripts (internal/saga/quota.go) — the single serialization point for
// the daily discount-quota cap.
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return client, nil
}
