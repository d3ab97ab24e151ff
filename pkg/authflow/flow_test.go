package authflow_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/webauth/pkg/auth"
	"github.com/dmitrymomot/webauth/pkg/authflow"
	"github.com/dmitrymomot/webauth/pkg/cookie"
	"github.com/dmitrymomot/webauth/pkg/metrics"
	"github.com/dmitrymomot/webauth/pkg/profile"
	"github.com/dmitrymomot/webauth/pkg/session"
	"github.com/dmitrymomot/webauth/pkg/storage"
	"github.com/dmitrymomot/webauth/pkg/storage/memstore"
)

const idpLogin = "https://idp.example.com/login"

// fakeClient logs in whoever is named by the "user" callback parameter.
type fakeClient struct {
	name string
	err  error
}

func (c *fakeClient) Name() string { return c.name }

func (c *fakeClient) RedirectURL(_ context.Context, wc *auth.WebContext) (string, error) {
	if wc.Ajax {
		return "", auth.Unauthorized("")
	}
	return idpLogin + "?sid=" + wc.SessionID, nil
}

func (c *fakeClient) UserProfile(_ context.Context, wc *auth.WebContext) (*profile.Profile, error) {
	if c.err != nil {
		return nil, c.err
	}
	user := wc.Request.URL.Query().Get("user")
	if user == "" {
		return nil, nil
	}
	return profile.New(c.name, user), nil
}

// failingBackend fails every read and write.
type failingBackend struct{}

func (failingBackend) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("backend down")
}

func (failingBackend) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("backend down")
}

type harness struct {
	t       *testing.T
	store   *storage.Store
	client  *fakeClient
	handler http.Handler
	cookies []*http.Cookie
	metrics *metrics.Metrics
}

func newHarness(t *testing.T, backend storage.Backend, opts ...authflow.Option) *harness {
	t.Helper()

	if backend == nil {
		ms := memstore.New(memstore.WithCleanupInterval(0))
		t.Cleanup(func() { _ = ms.Close() })
		backend = ms
	}

	h := &harness{
		t:       t,
		store:   storage.New(backend),
		client:  &fakeClient{name: "idp"},
		metrics: metrics.NewMetrics(prometheus.NewRegistry()),
	}

	cookies, err := cookie.New([]string{"authflow-test-secret-with-32-characters"})
	require.NoError(t, err)
	sessions := session.New(cookies)

	clients, err := auth.NewClients("/auth/callback", h.client)
	require.NoError(t, err)

	opts = append([]authflow.Option{authflow.WithMetrics(h.metrics)}, opts...)
	flow, err := authflow.New(h.store, session.NewResolver(), clients, opts...)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(sessions.Middleware)
	r.Mount("/auth", flow.Router())
	r.With(flow.RequireAuth("idp")).Get("/private", func(w http.ResponseWriter, r *http.Request) {
		p, ok := authflow.ProfileFromContext(r.Context())
		require.True(t, ok)
		_, _ = w.Write([]byte("hello " + p.ID))
	})
	r.With(flow.RequireAuth("idp", authflow.WithTargetURL("/welcome"))).Get("/start", func(w http.ResponseWriter, r *http.Request) {})
	r.With(flow.RequireAuth("missing")).Get("/broken", func(w http.ResponseWriter, r *http.Request) {})
	r.With(flow.RequireAuth("idp", authflow.WithAjax(true))).Get("/api", func(w http.ResponseWriter, r *http.Request) {})

	h.handler = r
	return h
}

// do sends a request with the cookies collected so far.
func (h *harness) do(method, target string, headers ...string) *httptest.ResponseRecorder {
	h.t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	for _, c := range h.cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		h.cookies = replaceCookie(h.cookies, c)
	}
	return rec
}

func replaceCookie(jar []*http.Cookie, c *http.Cookie) []*http.Cookie {
	out := jar[:0]
	for _, existing := range jar {
		if existing.Name != c.Name {
			out = append(out, existing)
		}
	}
	if c.MaxAge >= 0 && c.Value != "" {
		out = append(out, c)
	}
	return out
}

// sessionID extracts the id the fake client put in the login redirect.
func sessionID(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	u, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	sid := u.Query().Get("sid")
	require.NotEmpty(t, sid)
	return sid
}

func (h *harness) events(event string) float64 {
	return testutil.ToFloat64(h.metrics.AuthEvents.WithLabelValues(event, "idp"))
}

func TestFlow_LoginScenario(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	ctx := context.Background()

	rec := h.do(http.MethodGet, "/private?tab=1")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), idpLogin)
	sid := sessionID(t, rec)

	saved, found, err := h.store.GetRequestedURL(ctx, sid, "idp")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "/private?tab=1", saved)

	rec = h.do(http.MethodGet, "/auth/callback?client_name=idp&user=alice")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/private?tab=1", rec.Header().Get("Location"))

	p, found, err := h.store.GetProfile(ctx, sid)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "idp#alice", p.TypedID())

	rec = h.do(http.MethodGet, "/private")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello alice", rec.Body.String())

	assert.Equal(t, 1.0, h.events(metrics.EventChallenge))
	assert.Equal(t, 1.0, h.events(metrics.EventLogin))
}

func TestFlow_RequireAuth(t *testing.T) {
	t.Parallel()

	t.Run("session id is stable across challenges", func(t *testing.T) {
		h := newHarness(t, nil)
		first := sessionID(t, h.do(http.MethodGet, "/private"))
		second := sessionID(t, h.do(http.MethodGet, "/private"))
		assert.Equal(t, first, second)
	})

	t.Run("explicit target url", func(t *testing.T) {
		h := newHarness(t, nil)
		sid := sessionID(t, h.do(http.MethodGet, "/start"))

		saved, _, err := h.store.GetRequestedURL(context.Background(), sid, "idp")
		require.NoError(t, err)
		assert.Equal(t, "/welcome", saved)
	})

	t.Run("htmx gets HX-Redirect", func(t *testing.T) {
		h := newHarness(t, nil)
		rec := h.do(http.MethodGet, "/private", "HX-Request", "true", "HX-Boosted", "true")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("HX-Redirect"), idpLogin)
	})

	t.Run("ajax gets 401", func(t *testing.T) {
		h := newHarness(t, nil)
		rec := h.do(http.MethodGet, "/api")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, 1.0, h.events(metrics.EventDenied))
	})

	t.Run("unknown client", func(t *testing.T) {
		h := newHarness(t, nil)
		rec := h.do(http.MethodGet, "/broken")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unreadable store fails closed", func(t *testing.T) {
		h := newHarness(t, failingBackend{})
		rec := h.do(http.MethodGet, "/private")
		assert.Equal(t, http.StatusInternalServerError, rec.Code, "requested url cannot be saved")
		assert.NotContains(t, rec.Body.String(), "hello")
	})
}

func TestFlow_Callback(t *testing.T) {
	t.Parallel()

	t.Run("no requested url falls back to default", func(t *testing.T) {
		h := newHarness(t, nil, authflow.WithConfig(func() authflow.Config {
			cfg := authflow.DefaultConfig()
			cfg.DefaultSuccessURL = "/home"
			return cfg
		}()))
		rec := h.do(http.MethodGet, "/auth/callback?client_name=idp&user=bob")
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/home", rec.Header().Get("Location"))
	})

	t.Run("no profile stores nothing", func(t *testing.T) {
		h := newHarness(t, nil)
		sid := sessionID(t, h.do(http.MethodGet, "/private"))

		rec := h.do(http.MethodGet, "/auth/callback?client_name=idp")
		assert.Equal(t, http.StatusFound, rec.Code)

		_, found, err := h.store.GetProfile(context.Background(), sid)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("unknown client", func(t *testing.T) {
		h := newHarness(t, nil)
		rec := h.do(http.MethodGet, "/auth/callback?client_name=nope")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("client error", func(t *testing.T) {
		h := newHarness(t, nil)
		h.client.err = auth.ErrInvalidState
		rec := h.do(http.MethodGet, "/auth/callback?client_name=idp&user=eve")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, 1.0, h.events(metrics.EventLoginFailed))
	})

	t.Run("profile write failure", func(t *testing.T) {
		h := newHarness(t, failingBackend{})
		rec := h.do(http.MethodGet, "/auth/callback?client_name=idp&user=bob")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestFlow_Logout(t *testing.T) {
	t.Parallel()

	login := func(t *testing.T, h *harness) string {
		t.Helper()
		sid := sessionID(t, h.do(http.MethodGet, "/private"))
		h.do(http.MethodGet, "/auth/callback?client_name=idp&user=alice")
		require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/private").Code)
		return sid
	}

	t.Run("logout and ok", func(t *testing.T) {
		h := newHarness(t, nil)
		sid := login(t, h)

		rec := h.do(http.MethodGet, "/auth/logout")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Body.String())

		_, found, err := h.store.GetProfile(context.Background(), sid)
		require.NoError(t, err)
		assert.False(t, found)

		rec = h.do(http.MethodGet, "/private")
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.NotEqual(t, sid, sessionID(t, rec), "a new session id is issued after logout")
	})

	t.Run("redirect to given url", func(t *testing.T) {
		h := newHarness(t, nil)
		login(t, h)

		rec := h.do(http.MethodGet, "/auth/logout/redirect?url=/bye")
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/bye", rec.Header().Get("Location"))
	})

	t.Run("external url is rejected", func(t *testing.T) {
		h := newHarness(t, nil)
		for _, target := range []string{"https://evil.example.com", "//evil.example.com", "/\\evil.example.com"} {
			rec := h.do(http.MethodGet, "/auth/logout/redirect?url="+url.QueryEscape(target))
			assert.Equal(t, "/", rec.Header().Get("Location"), target)
		}
	})

	t.Run("default logout url", func(t *testing.T) {
		h := newHarness(t, nil)
		rec := h.do(http.MethodGet, "/auth/logout/redirect")
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))
	})

	t.Run("without session id", func(t *testing.T) {
		h := newHarness(t, nil)
		rec := h.do(http.MethodGet, "/auth/logout")
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestNew(t *testing.T) {
	t.Parallel()
	store := storage.New(memstore.New(memstore.WithCleanupInterval(0)))
	clients, err := auth.NewClients("")
	require.NoError(t, err)

	_, err = authflow.New(nil, session.NewResolver(), clients)
	assert.Error(t, err)

	cfg := authflow.DefaultConfig()
	cfg.LogoutURLPattern = "("
	_, err = authflow.New(store, session.NewResolver(), clients, authflow.WithConfig(cfg))
	assert.ErrorIs(t, err, authflow.ErrInvalidLogoutURLPattern)
}

func TestDefaultURL(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "/a", authflow.DefaultURL("/a", "/b"))
	assert.Equal(t, "/b", authflow.DefaultURL("", "/b"))
	assert.Equal(t, "/b", authflow.DefaultURL("   ", "/b"))
}

func TestProfileFromContext(t *testing.T) {
	t.Parallel()
	_, ok := authflow.ProfileFromContext(context.Background())
	assert.False(t, ok)

	p := profile.New("idp", "1")
	got, ok := authflow.ProfileFromContext(authflow.WithProfile(context.Background(), p))
	assert.True(t, ok)
	assert.Same(t, p, got)
}
