package storage

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/webauth/pkg/profile"
)

// Ensure Holder implements Storage.
var _ Storage = (*Holder)(nil)

// Holder gives the process one shared Storage, built lazily on first use.
// The store can be replaced at runtime with Swap, e.g. in tests or when the
// backend is reconfigured. Concurrent first calls build it exactly once.
type Holder struct {
	mu      sync.Mutex
	current atomic.Pointer[Store]
	factory func() *Store
}

// NewHolder creates a holder that calls factory on first access.
func NewHolder(factory func() *Store) *Holder {
	return &Holder{factory: factory}
}

// Current returns the held store, building it if needed.
// Panics when no store is held and no factory was given.
func (h *Holder) Current() *Store {
	if s := h.current.Load(); s != nil {
		return s
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if s := h.current.Load(); s != nil {
		return s
	}
	if h.factory == nil {
		panic("storage: holder has no store and no factory")
	}

	s := h.factory()
	h.current.Store(s)
	return s
}

// Swap installs s and returns the previously held store, which may be nil.
func (h *Holder) Swap(s *Store) *Store {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current.Swap(s)
}

func (h *Holder) Get(ctx context.Context, key string) (Value, bool, error) {
	return h.Current().Get(ctx, key)
}

func (h *Holder) Save(ctx context.Context, key string, v Value, ttl time.Duration) error {
	return h.Current().Save(ctx, key, v, ttl)
}

func (h *Holder) Remove(ctx context.Context, key string) error {
	return h.Current().Remove(ctx, key)
}

func (h *Holder) GetScoped(ctx context.Context, sessionID, subKey string) (Value, bool, error) {
	return h.Current().GetScoped(ctx, sessionID, subKey)
}

func (h *Holder) SaveScoped(ctx context.Context, sessionID, subKey string, v Value) error {
	return h.Current().SaveScoped(ctx, sessionID, subKey, v)
}

func (h *Holder) RemoveScoped(ctx context.Context, sessionID, subKey string) error {
	return h.Current().RemoveScoped(ctx, sessionID, subKey)
}

func (h *Holder) GetProfile(ctx context.Context, sessionID string) (*profile.Profile, bool, error) {
	return h.Current().GetProfile(ctx, sessionID)
}

func (h *Holder) SaveProfile(ctx context.Context, sessionID string, p *profile.Profile) error {
	return h.Current().SaveProfile(ctx, sessionID, p)
}

func (h *Holder) RemoveProfile(ctx context.Context, sessionID string) error {
	return h.Current().RemoveProfile(ctx, sessionID)
}

func (h *Holder) GetRequestedURL(ctx context.Context, sessionID, clientName string) (string, bool, error) {
	return h.Current().GetRequestedURL(ctx, sessionID, clientName)
}

func (h *Holder) SaveRequestedURL(ctx context.Context, sessionID, clientName, url string) error {
	return h.Current().SaveRequestedURL(ctx, sessionID, clientName, url)
}

func (h *Holder) RemoveRequestedURL(ctx context.Context, sessionID, clientName string) error {
	return h.Current().RemoveRequestedURL(ctx, sessionID, clientName)
}
