package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// sessionKeyPrefix namespaces session records in Redis.
// Key pattern: session:{subject}.
const sessionKeyPrefix = "session:"

// Compile-time check: RedisStore satisfies Store.
var _ Store = (*RedisStore)(nil)

// RedisConfig holds the parameters needed to connect to a Redis instance.
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// RedisStore implements Store backed by Redis.
type RedisStore struct {
	cmd redis.Cmdable
}

// NewRedisStore connects a session store to the Redis instance described by
// cfg.
func NewRedisStore(cfg RedisConfig) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	return &RedisStore{cmd: rdb}
}

// NewRedisStoreFromClient wraps an existing client. Test hook for miniredis.
func NewRedisStoreFromClient(cmd redis.Cmdable) *RedisStore {
	return &RedisStore{cmd: cmd}
}

func (s *RedisStore) Put(ctx context.Context, subject, fingerprint string, ttl time.Duration) error {
	key := sessionKeyPrefix + subject
	if err := s.cmd.Set(ctx, key, fingerprint, ttl).Err(); err != nil {
		return fmt.Errorf("put session for %q: %w", subject, err)
	}
	return nil
}

func (s *RedisStore) Invalidate(ctx context.Context, subject string) error {
	key := sessionKeyPrefix + subject
	if err := s.cmd.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("invalidate session for %q: %w", subject, err)
	}
	return nil
}

// Close releases the underlying Redis connection when the store owns one.
func (s *RedisStore) Close() error {
	if c, ok := s.cmd.(*redis.Client); ok {
		return c.Close()
	}
	return nil
}
