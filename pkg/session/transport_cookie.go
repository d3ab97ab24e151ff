package session

import (
	"net/http"
	"time"

	"github.com/dmitrymomot/webauth/pkg/cookie"
)

// maxCookieSize is the smallest per-cookie limit browsers are required to
// support (RFC 6265 section 6.1), minus room for attributes.
const maxCookieSize = 4000

// CookieTransport carries the payload in a single cookie.
type CookieTransport struct {
	cookieMgr  *cookie.Manager
	cookieName string
	options    []cookie.Option
}

// NewCookieTransport creates a cookie transport. The cookie manager's
// defaults (Secure, SameSite, domain) apply; opts override them.
func NewCookieTransport(cookieMgr *cookie.Manager, cookieName string, opts ...cookie.Option) *CookieTransport {
	return &CookieTransport{
		cookieMgr:  cookieMgr,
		cookieName: cookieName,
		options:    opts,
	}
}

func (t *CookieTransport) GetToken(r *http.Request) (string, error) {
	token, err := t.cookieMgr.Get(r, t.cookieName)
	if err != nil || token == "" {
		return "", ErrSessionNotFound
	}
	return token, nil
}

func (t *CookieTransport) SetToken(w http.ResponseWriter, token string, ttl time.Duration) error {
	if len(t.cookieName)+len(token) > maxCookieSize {
		return ErrPayloadTooLarge
	}

	opts := append([]cookie.Option{cookie.WithMaxAge(int(ttl.Seconds()))}, t.options...)
	t.cookieMgr.Set(w, t.cookieName, token, opts...)
	return nil
}

func (t *CookieTransport) ClearToken(w http.ResponseWriter) error {
	t.cookieMgr.Delete(w, t.cookieName)
	return nil
}
