// Package memstore keeps store entries in process memory.
//
// It is the default backend for single-instance deployments and for tests.
// Entries vanish on restart and are not shared between processes.
package memstore

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/dmitrymomot/webauth/pkg/storage"
)

// Ensure MemoryStore implements storage.Backend.
var _ storage.Backend = (*MemoryStore)(nil)

type entry struct {
	data      []byte
	expiresAt time.Time // zero means no expiry
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryStore is an in-memory storage.Backend with lazy and periodic expiry.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time

	cleanupInterval time.Duration
	ticker          *time.Ticker
	done            chan struct{}
	closeOnce       sync.Once
}

// Option configures a MemoryStore.
type Option func(*MemoryStore)

// WithCleanupInterval sets how often expired entries are swept.
// Zero disables the background sweep; expired entries are still never returned.
func WithCleanupInterval(d time.Duration) Option {
	return func(m *MemoryStore) {
		m.cleanupInterval = d
	}
}

// WithClock replaces time.Now. Used by tests to move time forward.
func WithClock(now func() time.Time) Option {
	return func(m *MemoryStore) {
		if now != nil {
			m.now = now
		}
	}
}

// New creates a memory store. Call Close to stop the cleanup goroutine.
func New(opts ...Option) *MemoryStore {
	m := &MemoryStore{
		entries:         make(map[string]entry),
		now:             time.Now,
		cleanupInterval: time.Minute,
		done:            make(chan struct{}),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.cleanupInterval > 0 {
		m.ticker = time.NewTicker(m.cleanupInterval)
		go m.cleanupLoop()
	}

	return m
}

// Get implements storage.Backend.
func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}

	if e.expired(m.now()) {
		m.mu.Lock()
		// Re-check: the key may have been rewritten since the read lock.
		if cur, ok := m.entries[key]; ok && cur.expired(m.now()) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return nil, false, nil
	}

	return bytes.Clone(e.data), true, nil
}

// Set implements storage.Backend.
func (m *MemoryStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if data == nil {
		delete(m.entries, key)
		return nil
	}

	e := entry{data: bytes.Clone(data)}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.entries[key] = e
	return nil
}

// DeleteExpired removes every expired entry.
func (m *MemoryStore) DeleteExpired(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for key, e := range m.entries {
		if e.expired(now) {
			delete(m.entries, key)
		}
	}
	return nil
}

// Len returns the number of entries held, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (m *MemoryStore) Close() error {
	m.closeOnce.Do(func() {
		if m.ticker != nil {
			m.ticker.Stop()
		}
		close(m.done)
	})
	return nil
}

func (m *MemoryStore) cleanupLoop() {
	for {
		select {
		case <-m.ticker.C:
			_ = m.DeleteExpired(context.Background())
		case <-m.done:
			return
		}
	}
}
