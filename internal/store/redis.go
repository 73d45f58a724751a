package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions selects the Redis server backing server-side sessions.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	// PingTimeout bounds the startup connectivity check. Defaults to 5s.
	PingTimeout time.Duration
}

// NewRedisClient connects to Redis and fails fast if the server does not answer.
func NewRedisClient(ctx context.Context, opts RedisOptions) (*redis.Client, error) {
	if opts.PingTimeout <= 0 {
		opts.PingTimeout = 5 * time.Second
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, opts.PingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis %s/%d: %w", opts.Addr, opts.DB, err)
	}
	return rdb, nil
}
