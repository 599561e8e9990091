package redis

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/grubline/order-service/internal/config"

	"github.com/redis/go-redis/v9"
)

// New builds the shared redis client. It lives for the whole process
// and is handed to dependents by the bootstrap, never via package
// state.
func New(ctx context.Context, cfg config.Redis) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}
