package config

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis opens a pooled client and pings it. The client is returned
// even when the ping fails so callers can keep running degraded.
func ConnectRedis(ctx context.Context, e Env) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         e.RedisAddr,
		Password:     e.RedisPassword,
		DB:           e.RedisDB,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return client, fmt.Errorf("ping redis %s: %w", e.RedisAddr, err)
	}
	return client, nil
}
