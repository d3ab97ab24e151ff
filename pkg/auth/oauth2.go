package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/dmitrymomot/webauth/pkg/logger"
	"github.com/dmitrymomot/webauth/pkg/profile"
	"github.com/dmitrymomot/webauth/pkg/storage"
)

// StateSubKey is appended to the client name to build the sub-key holding
// the pending OAuth state.
const StateSubKey = "state"

// ProfileFetcher turns an authorized HTTP client into a user profile.
// The returned profile's client name is filled in by the caller.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, client *http.Client) (*profile.Profile, error)
}

// ProfileFetcherFunc adapts a function to ProfileFetcher.
type ProfileFetcherFunc func(ctx context.Context, client *http.Client) (*profile.Profile, error)

// FetchProfile implements ProfileFetcher.
func (f ProfileFetcherFunc) FetchProfile(ctx context.Context, client *http.Client) (*profile.Profile, error) {
	return f(ctx, client)
}

// OAuth2Client authenticates against an OAuth 2.0 authorization server.
// The protocol is delegated to golang.org/x/oauth2; the client only keeps
// the state in the session-scoped store and maps the user info to a profile.
type OAuth2Client struct {
	name      string
	conf      *oauth2.Config
	fetcher   ProfileFetcher
	separator string
	authOpts  []oauth2.AuthCodeOption
	logger    *slog.Logger
}

// OAuth2Option configures an OAuth2Client.
type OAuth2Option func(*OAuth2Client)

// WithOAuth2Logger sets the client logger.
func WithOAuth2Logger(l *slog.Logger) OAuth2Option {
	return func(c *OAuth2Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithStateSeparator sets the separator used in the state sub-key.
// It must match the store separator.
func WithStateSeparator(sep string) OAuth2Option {
	return func(c *OAuth2Client) {
		if sep != "" {
			c.separator = sep
		}
	}
}

// WithAuthCodeOptions adds provider specific authorization URL parameters.
func WithAuthCodeOptions(opts ...oauth2.AuthCodeOption) OAuth2Option {
	return func(c *OAuth2Client) {
		c.authOpts = append(c.authOpts, opts...)
	}
}

// NewOAuth2Client creates an OAuth2 client named name.
func NewOAuth2Client(name string, conf *oauth2.Config, fetcher ProfileFetcher, opts ...OAuth2Option) *OAuth2Client {
	c := &OAuth2Client{
		name:      name,
		conf:      conf,
		fetcher:   fetcher,
		separator: storage.DefaultSeparator,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var (
	_ Client        = (*OAuth2Client)(nil)
	_ CallbackAware = (*OAuth2Client)(nil)
)

// Name implements Client.
func (c *OAuth2Client) Name() string { return c.name }

// SetCallbackURL sets the redirect URL unless one was configured explicitly.
func (c *OAuth2Client) SetCallbackURL(u string) {
	if c.conf.RedirectURL == "" {
		c.conf.RedirectURL = u
	}
}

// CallbackURL returns the redirect URL registered with the provider.
func (c *OAuth2Client) CallbackURL() string { return c.conf.RedirectURL }

// RedirectURL stores a fresh state for the session and returns the
// authorization URL. AJAX requests get a 401 action instead.
func (c *OAuth2Client) RedirectURL(ctx context.Context, wc *WebContext) (string, error) {
	if wc.Ajax {
		return "", Unauthorized("")
	}
	if wc.SessionID == "" || wc.Store == nil {
		return "", ErrMissingSession
	}

	state, err := generateState()
	if err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}

	value, err := storage.RawValue(state)
	if err != nil {
		return "", err
	}
	if err := wc.Store.SaveScoped(ctx, wc.SessionID, c.stateKey(), value); err != nil {
		return "", err
	}

	c.logger.DebugContext(ctx, "redirecting to authorization server",
		logger.ClientName(c.name),
		logger.SessionID(wc.SessionID),
	)
	return c.conf.AuthCodeURL(state, c.authOpts...), nil
}

// UserProfile validates the state, exchanges the code and fetches the
// profile. The stored state is consumed whatever the outcome.
func (c *OAuth2Client) UserProfile(ctx context.Context, wc *WebContext) (*profile.Profile, error) {
	if wc.SessionID == "" || wc.Store == nil {
		return nil, ErrMissingSession
	}

	q := wc.Request.URL.Query()
	if e := q.Get("error"); e != "" {
		if err := wc.Store.RemoveScoped(ctx, wc.SessionID, c.stateKey()); err != nil {
			c.logger.WarnContext(ctx, "failed to drop oauth state",
				logger.ClientName(c.name),
				logger.SessionID(wc.SessionID),
				logger.Error(err),
			)
		}
		return nil, fmt.Errorf("%w: %s %s", ErrAccessDenied, e, q.Get("error_description"))
	}

	if err := c.consumeState(ctx, wc, q.Get("state")); err != nil {
		return nil, err
	}

	code := q.Get("code")
	if code == "" {
		return nil, ErrInvalidCode
	}

	token, err := c.conf.Exchange(ctx, code)
	if err != nil {
		return nil, errors.Join(ErrInvalidCode, err)
	}

	p, err := c.fetcher.FetchProfile(ctx, c.conf.Client(ctx, token))
	if err != nil {
		return nil, err
	}
	if p == nil || p.ID == "" {
		return nil, ErrProfileIncomplete
	}
	p.ClientName = c.name

	c.logger.DebugContext(ctx, "user profile fetched",
		logger.ClientName(c.name),
		logger.ProfileID(p.TypedID()),
	)
	return p, nil
}

func (c *OAuth2Client) consumeState(ctx context.Context, wc *WebContext, got string) error {
	v, found, err := wc.Store.GetScoped(ctx, wc.SessionID, c.stateKey())
	if err != nil {
		return err
	}
	if err := wc.Store.RemoveScoped(ctx, wc.SessionID, c.stateKey()); err != nil {
		return err
	}
	if !found || got == "" {
		return ErrInvalidState
	}

	var want string
	if err := v.Decode(&want); err != nil {
		return errors.Join(ErrInvalidState, err)
	}
	if subtle.ConstantTimeCompare([]byte(want), []byte(got)) != 1 {
		return ErrInvalidState
	}
	return nil
}

func (c *OAuth2Client) stateKey() string {
	return c.name + c.separator + StateSubKey
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
