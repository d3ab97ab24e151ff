package storage

//go:generate mockgen -source=backend.go -destination=mocks/backend_mock.go -package=mocks

import (
	"context"
	"time"
)

// Backend is the key-value capability a Store is built on.
//
// Implementations must be safe for concurrent use. The Store never retries
// and never wraps backend errors, so whatever a Backend returns reaches the
// caller unchanged.
type Backend interface {
	// Get returns the bytes stored under key. Missing and expired keys
	// report found == false with a nil error.
	Get(ctx context.Context, key string) (data []byte, found bool, err error)

	// Set stores data under key for ttl. A zero ttl means the entry does not
	// expire. Nil data deletes the key: a later Get must report it missing.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
}
