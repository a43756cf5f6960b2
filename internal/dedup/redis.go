package dedup

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"SwingSentinel/internal/model"
)

// RedisStore keeps one hash per symbol at "{prefix}{symbol}" with a field per
// signal holding the last alerted price. Several daemons may share it.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisStore connects to addr and pings it.
func NewRedisStore(ctx context.Context, addr, password string, db int, prefix string) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return &RedisStore{rdb: rdb, prefix: prefix}, nil
}

func (s *RedisStore) key(symbol string) string {
	return s.prefix + symbol
}

func (s *RedisStore) Last(ctx context.Context, symbol string, signal model.Signal) (float64, bool, error) {
	v, err := s.rdb.HGet(ctx, s.key(symbol), string(signal)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("redis: last alert %s: %w", symbol, err)
	}
	price, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false, fmt.Errorf("redis: parse price %s: %w", symbol, err)
	}
	return price, true, nil
}

func (s *RedisStore) Remember(ctx context.Context, symbol string, signal model.Signal, price float64) error {
	if err := s.rdb.HSet(ctx, s.key(symbol), string(signal), strconv.FormatFloat(price, 'f', -1, 64)).Err(); err != nil {
		return fmt.Errorf("redis: remember alert %s: %w", symbol, err)
	}
	return nil
}

func (s *RedisStore) Forget(ctx context.Context, symbol string) error {
	if err := s.rdb.Del(ctx, s.key(symbol)).Err(); err != nil {
		return fmt.Errorf("redis: forget %s: %w", symbol, err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

// Compile-time interface checks.
var (
	_ Store = (*RedisStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
