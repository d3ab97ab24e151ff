package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dmitrymomot/webauth/pkg/logger"
	"github.com/dmitrymomot/webauth/pkg/profile"
)

// Storage is the surface the authentication flow is allowed to call.
// *Store and *Holder implement it.
type Storage interface {
	Get(ctx context.Context, key string) (Value, bool, error)
	Save(ctx context.Context, key string, v Value, ttl time.Duration) error
	Remove(ctx context.Context, key string) error

	GetScoped(ctx context.Context, sessionID, subKey string) (Value, bool, error)
	SaveScoped(ctx context.Context, sessionID, subKey string, v Value) error
	RemoveScoped(ctx context.Context, sessionID, subKey string) error

	GetProfile(ctx context.Context, sessionID string) (*profile.Profile, bool, error)
	SaveProfile(ctx context.Context, sessionID string, p *profile.Profile) error
	RemoveProfile(ctx context.Context, sessionID string) error

	GetRequestedURL(ctx context.Context, sessionID, clientName string) (string, bool, error)
	SaveRequestedURL(ctx context.Context, sessionID, clientName, url string) error
	RemoveRequestedURL(ctx context.Context, sessionID, clientName string) error
}

// Ensure Store implements Storage.
var _ Storage = (*Store)(nil)

// Store is a namespaced, expiring key-value store over a Backend.
//
// Every session-scoped operation is derived from the direct Get/Save/Remove
// primitives, so a backend only has to provide get and set-with-expiry.
type Store struct {
	backend Backend
	codec   Codec
	config  Config
	logger  *slog.Logger
}

// New creates a store over backend.
// Panics on a nil backend: a store without one cannot serve any request.
func New(backend Backend, opts ...Option) *Store {
	if backend == nil {
		panic("storage: backend is required")
	}

	s := &Store{
		backend: backend,
		codec:   JSONCodec{},
		config:  DefaultConfig(),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.config.Separator == "" {
		s.config.Separator = DefaultSeparator
	}

	return s
}

// Config returns the effective store configuration.
func (s *Store) Config() Config {
	return s.config
}

// Get reads the value stored under a direct key.
func (s *Store) Get(ctx context.Context, key string) (Value, bool, error) {
	data, found, err := s.backend.Get(ctx, s.cacheKey(key))
	if err != nil {
		return Value{}, false, err
	}
	if !found || data == nil {
		return Value{}, false, nil
	}

	v, err := s.codec.Decode(data)
	if err != nil {
		return Value{}, false, err
	}
	if v.IsAbsent() {
		return Value{}, false, nil
	}
	return v, true, nil
}

// Save stores v under a direct key for ttl. Saving the absent value deletes
// the key, whatever the ttl.
func (s *Store) Save(ctx context.Context, key string, v Value, ttl time.Duration) error {
	if ttl < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTTL, ttl)
	}

	if v.IsAbsent() {
		return s.backend.Set(ctx, s.cacheKey(key), nil, 0)
	}

	data, err := s.codec.Encode(v)
	if err != nil {
		return err
	}
	return s.backend.Set(ctx, s.cacheKey(key), data, ttl)
}

// Remove deletes a direct key. It is Save with the absent value and no ttl.
func (s *Store) Remove(ctx context.Context, key string) error {
	return s.Save(ctx, key, Value{}, 0)
}

// GetScoped reads subKey inside the session's namespace.
// An empty session id reads as absent without touching the backend.
func (s *Store) GetScoped(ctx context.Context, sessionID, subKey string) (Value, bool, error) {
	if sessionID == "" {
		return Value{}, false, nil
	}
	return s.Get(ctx, s.scopedKey(sessionID, subKey))
}

// SaveScoped stores subKey inside the session's namespace for the session timeout.
// An empty session id is a no-op.
func (s *Store) SaveScoped(ctx context.Context, sessionID, subKey string, v Value) error {
	if sessionID == "" {
		return nil
	}
	return s.Save(ctx, s.scopedKey(sessionID, subKey), v, s.config.SessionTimeout)
}

// RemoveScoped deletes subKey inside the session's namespace.
// An empty session id is a no-op.
func (s *Store) RemoveScoped(ctx context.Context, sessionID, subKey string) error {
	if sessionID == "" {
		return nil
	}
	return s.Remove(ctx, s.scopedKey(sessionID, subKey))
}

// GetProfile reads the profile attached to a session.
// The profile lives under the bare session id, so one session holds one profile.
func (s *Store) GetProfile(ctx context.Context, sessionID string) (*profile.Profile, bool, error) {
	if sessionID == "" {
		return nil, false, nil
	}

	v, found, err := s.Get(ctx, sessionID)
	if err != nil || !found {
		return nil, false, err
	}

	p, ok := v.Profile()
	if !ok {
		return nil, false, fmt.Errorf("%w: session key holds %s", ErrUnexpectedKind, v.Kind())
	}

	s.logger.DebugContext(ctx, "profile retrieved",
		logger.SessionID(sessionID),
		logger.ProfileID(p.TypedID()),
	)
	return p, true, nil
}

// SaveProfile attaches p to a session for the profile timeout.
// A nil profile removes the current one.
func (s *Store) SaveProfile(ctx context.Context, sessionID string, p *profile.Profile) error {
	if sessionID == "" {
		return nil
	}

	if err := s.Save(ctx, sessionID, ProfileValue(p), s.config.ProfileTimeout); err != nil {
		return err
	}
	if p == nil {
		return nil
	}

	s.logger.DebugContext(ctx, "profile saved",
		logger.SessionID(sessionID),
		logger.ProfileID(p.TypedID()),
	)
	return nil
}

// RemoveProfile detaches the profile from a session.
func (s *Store) RemoveProfile(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.Remove(ctx, sessionID)
}

// GetRequestedURL reads the URL saved before redirecting to clientName.
func (s *Store) GetRequestedURL(ctx context.Context, sessionID, clientName string) (string, bool, error) {
	v, found, err := s.GetScoped(ctx, sessionID, s.requestedURLSubKey(clientName))
	if err != nil || !found {
		return "", false, err
	}

	url, ok := v.URL()
	if !ok {
		return "", false, fmt.Errorf("%w: requested url key holds %s", ErrUnexpectedKind, v.Kind())
	}
	return url, true, nil
}

// SaveRequestedURL remembers url for the login attempt against clientName.
func (s *Store) SaveRequestedURL(ctx context.Context, sessionID, clientName, url string) error {
	if err := s.SaveScoped(ctx, sessionID, s.requestedURLSubKey(clientName), URLValue(url)); err != nil {
		return err
	}

	s.logger.DebugContext(ctx, "requested url saved",
		logger.SessionID(sessionID),
		logger.ClientName(clientName),
		slog.String("url", url),
	)
	return nil
}

// RemoveRequestedURL forgets the URL saved for clientName.
func (s *Store) RemoveRequestedURL(ctx context.Context, sessionID, clientName string) error {
	return s.RemoveScoped(ctx, sessionID, s.requestedURLSubKey(clientName))
}

func (s *Store) cacheKey(key string) string {
	return CacheKey(s.config.KeyPrefix, key)
}

func (s *Store) scopedKey(sessionID, subKey string) string {
	return ScopedKey(sessionID, subKey, s.config.Separator)
}

func (s *Store) requestedURLSubKey(clientName string) string {
	return RequestedURLSubKey(clientName, s.config.Separator)
}
