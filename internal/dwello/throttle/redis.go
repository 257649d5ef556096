package throttle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "dwello:login_failures:"

// Redis is a Limiter shared by every instance pointed at the same server.
type Redis struct {
	client *redis.Client
	cfg    Config
}

var _ Limiter = (*Redis)(nil)

func NewRedis(client *redis.Client, cfg Config) *Redis {
	return &Redis{client: client, cfg: cfg.withDefaults()}
}

// NewRedisFromURL parses url, connects and pings within five seconds.
func NewRedisFromURL(url string, cfg Config) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedis(client, cfg), nil
}

func (r *Redis) Close() error { return r.client.Close() }

func (r *Redis) Ping(ctx context.Context) error { return r.client.Ping(ctx).Err() }

func (r *Redis) Exceeded(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Get(ctx, keyPrefix+key).Int()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return n >= r.cfg.MaxFailures, nil
}

// RecordFailure increments the counter and sets the window on the first
// failure only, so repeated failures do not extend the lockout.
func (r *Redis) RecordFailure(ctx context.Context, key string) error {
	k := keyPrefix + key
	pipe := r.client.TxPipeline()
	pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, r.cfg.Window)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *Redis) Reset(ctx context.Context, key string) error {
	return r.client.Del(ctx, keyPrefix+key).Err()
}
