package session

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/webauth/pkg/cookie"
	"github.com/dmitrymomot/webauth/pkg/logger"
)

// Manager loads sessions from requests and writes them back to responses.
// The whole attribute map travels with the client, sealed by the cookie
// manager; nothing is kept server side.
type Manager struct {
	cookies   *cookie.Manager
	transport Transport
	config    Config
	logger    *slog.Logger
}

// New creates a manager. Panics on a nil cookie manager: unsealed sessions
// would let clients forge their session id.
func New(cookies *cookie.Manager, opts ...Option) *Manager {
	if cookies == nil {
		panic("session: cookie manager is required")
	}

	m := &Manager{
		cookies: cookies,
		config:  DefaultConfig(),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.transport == nil {
		var t Transport = NewCookieTransport(cookies, m.config.CookieName)
		if m.config.HeaderName != "" {
			t = NewCompositeTransport(NewHeaderTransport(m.config.HeaderName), t)
		}
		m.transport = t
	}

	return m
}

// NewFromConfig creates a manager from cfg.
func NewFromConfig(cookies *cookie.Manager, cfg Config, opts ...Option) *Manager {
	return New(cookies, append([]Option{WithConfig(cfg)}, opts...)...)
}

// Config returns the effective configuration.
func (m *Manager) Config() Config {
	return m.config
}

// Load returns the session carried by r. A missing, tampered or unreadable
// payload yields a fresh empty session.
func (m *Manager) Load(r *http.Request) *Session {
	token, err := m.transport.GetToken(r)
	if err != nil {
		return NewSession()
	}

	values, err := m.unseal(token)
	if err != nil {
		m.logger.DebugContext(r.Context(), "discarding unreadable session", logger.Error(err))
		return NewSession()
	}
	return newSessionFrom(values)
}

// Commit writes s to the response if it changed. An emptied session clears
// the client copy. Must run before the response headers are sent.
func (m *Manager) Commit(w http.ResponseWriter, s *Session) error {
	if s == nil || !s.IsDirty() {
		return nil
	}

	if s.Len() == 0 {
		if err := m.transport.ClearToken(w); err != nil {
			return err
		}
		s.markClean()
		return nil
	}

	token, err := m.seal(s.Values())
	if err != nil {
		return err
	}
	if err := m.transport.SetToken(w, token, m.config.MaxAge); err != nil {
		return err
	}
	s.markClean()
	return nil
}

func (m *Manager) seal(values map[string]string) (string, error) {
	data, err := json.Marshal(values)
	if err != nil {
		return "", errors.Join(ErrInvalidPayload, err)
	}
	if m.config.Encrypt {
		return m.cookies.Encrypt(m.config.CookieName, string(data))
	}
	return m.cookies.Sign(m.config.CookieName, string(data)), nil
}

func (m *Manager) unseal(token string) (map[string]string, error) {
	var (
		data string
		err  error
	)
	if m.config.Encrypt {
		data, err = m.cookies.Decrypt(m.config.CookieName, token)
	} else {
		data, err = m.cookies.Verify(m.config.CookieName, token)
	}
	if err != nil {
		return nil, err
	}

	var values map[string]string
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return nil, errors.Join(ErrInvalidPayload, err)
	}
	return values, nil
}
