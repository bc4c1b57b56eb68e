package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"assistant-chat/config"
)

// NewClient creates a Redis client. The client is constructed once in main
// and passed down explicitly.
func NewClient(cfg *config.Config) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

// Ping verifies connectivity at startup.
func Ping(ctx context.Context, client *goredis.Client) error {
	return client.Ping(ctx).Err()
}
