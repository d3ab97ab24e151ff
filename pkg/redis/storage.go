package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/webauth/pkg/storage"
)

// Ensure Storage implements storage.Backend.
var _ storage.Backend = (*Storage)(nil)

// Storage is a storage.Backend on top of Redis. Expiry is delegated to
// Redis key TTLs.
type Storage struct {
	db        redis.UniversalClient
	opTimeout time.Duration
}

// NewStorage wraps a connected client.
func NewStorage(client redis.UniversalClient) *Storage {
	return &Storage{db: client}
}

// NewStorageWithConfig wraps a connected client and applies the per-operation
// timeout from cfg.
func NewStorageWithConfig(client redis.UniversalClient, cfg Config) *Storage {
	return &Storage{db: client, opTimeout: cfg.OpTimeout}
}

// Get implements storage.Backend. redis.Nil is reported as a miss.
func (s *Storage) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	val, err := s.db.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Set implements storage.Backend. Nil data issues DEL; a zero ttl stores
// the key without expiry.
func (s *Storage) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if data == nil {
		return s.db.Del(ctx, key).Err()
	}
	return s.db.Set(ctx, key, data, ttl).Err()
}

// Close terminates the Redis connection.
func (s *Storage) Close() error {
	return s.db.Close()
}

// Conn returns the underlying client.
func (s *Storage) Conn() redis.UniversalClient {
	return s.db
}

func (s *Storage) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opTimeout <= 0 {
		return ctx, func() {}
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.opTimeout)
}
