package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions.URL is either a redis:// or rediss:// URL or a bare host:port.
// A non-empty Password or non-zero DB overrides what the URL carries.
type RedisOptions struct {
	URL      string
	Password string
	DB       int
}

func clientOptions(opts RedisOptions) (*redis.Options, error) {
	o := &redis.Options{Addr: opts.URL}
	if strings.Contains(opts.URL, "://") {
		parsed, err := redis.ParseURL(opts.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		o = parsed
	}
	if opts.Password != "" {
		o.Password = opts.Password
	}
	if opts.DB != 0 {
		o.DB = opts.DB
	}

	o.DialTimeout = 5 * time.Second
	o.ReadTimeout = 3 * time.Second
	o.WriteTimeout = 3 * time.Second
	o.PoolSize = 10
	o.MinIdleConns = 2
	return o, nil
}

// InitRedis opens a client and verifies the connection with a ping.
func InitRedis(ctx context.Context, opts RedisOptions) (*redis.Client, error) {
	options, err := clientOptions(opts)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(options)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}
