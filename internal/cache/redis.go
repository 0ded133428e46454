package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"workforce/internal/config"
)

// NewRedisClient connects to the Redis instance carrying the maintenance stream.
// The connection is named after the consumer so CLIENT LIST shows which worker holds it.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(options(cfg))

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}

	return client, nil
}

func options(cfg config.RedisConfig) *redis.Options {
	name := "workforce"
	if cfg.Consumer != "" {
		name += "-" + cfg.Consumer
	}
	return &redis.Options{
		Addr:            cfg.Addr,
		Password:        cfg.Password,
		DB:              cfg.DB,
		ClientName:      name,
		DialTimeout:     5 * time.Second,
		ConnMaxIdleTime: 5 * time.Minute,
	}
}

// Ping adapts a client to the health check signature.
func Ping(client redis.UniversalClient) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}
