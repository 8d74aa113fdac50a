package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrementScript counts a hit and starts the expiry on the first hit of a window.
// ARGV[1] is the key lifetime in milliseconds.
var incrementScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
return {count, ttl}
`)

// RedisStore shares windows between instances. A window is a key that lives one
// millisecond longer than the window, so a hit at exactly window length still counts.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "ratelimit:"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) Increment(ctx context.Context, key string, now time.Time, window time.Duration) (Hit, error) {
	lifetime := window + time.Millisecond
	res, err := incrementScript.Run(ctx, s.client, []string{s.prefix + key}, lifetime.Milliseconds()).Int64Slice()
	if err != nil {
		return Hit{}, fmt.Errorf("redis increment: %w", err)
	}
	if len(res) != 2 {
		return Hit{}, fmt.Errorf("redis increment: unexpected reply %v", res)
	}

	count, ttl := res[0], time.Duration(res[1])*time.Millisecond
	if ttl < 0 {
		ttl = lifetime
	}
	return Hit{Count: int(count), WindowStart: now.Add(ttl - lifetime)}, nil
}

func (s *RedisStore) Ban(ctx context.Context, key string, now, until time.Time) error {
	ttl := until.Sub(now)
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, s.prefix+"ban:"+key, until.Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("redis ban: %w", err)
	}
	return nil
}

func (s *RedisStore) BannedUntil(ctx context.Context, key string, now time.Time) (time.Time, error) {
	ttl, err := s.client.PTTL(ctx, s.prefix+"ban:"+key).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("redis ban lookup: %w", err)
	}
	if ttl <= 0 {
		return time.Time{}, nil
	}
	return now.Add(ttl), nil
}

// PingContext reports whether the shared store is reachable.
func (s *RedisStore) PingContext(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// NewRedisClient parses a redis:// URL and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
