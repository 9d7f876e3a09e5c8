package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/strack-api/pkg/config"
)

// ClientName tags roster API connections in CLIENT LIST.
const ClientName = "strack-api"

// Options maps the Redis configuration onto client options. Reads and writes
// share the dial timeout.
func Options(cfg config.RedisConfig, timeout time.Duration) *redis.Options {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		ClientName:   ClientName,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}
}

// NewRedis returns a Redis client that answered a ping within timeout.
func NewRedis(ctx context.Context, cfg config.RedisConfig, timeout time.Duration) (*redis.Client, error) {
	opts := Options(cfg, timeout)
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opts.Addr, err)
	}

	return client, nil
}
