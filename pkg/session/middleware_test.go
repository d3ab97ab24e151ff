package session_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/webauth/pkg/logger"
	"github.com/dmitrymomot/webauth/pkg/session"
)

func TestMiddleware(t *testing.T) {
	t.Parallel()
	m := setupManager(t)
	resolver := session.NewResolver()

	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := session.MustFromContext(r.Context())
		w.Header().Set("X-Sid", resolver.ResolveOrCreate(s))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))

	t.Run("first request mints and persists an id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		sid := rec.Header().Get("X-Sid")
		require.NotEmpty(t, sid)
		require.Len(t, rec.Result().Cookies(), 1)

		again := httptest.NewRecorder()
		handler.ServeHTTP(again, carry(rec))
		assert.Equal(t, sid, again.Header().Get("X-Sid"))
		assert.Empty(t, again.Result().Cookies(), "unchanged session must not be rewritten")
	})

	t.Run("commits when the handler writes nothing", func(t *testing.T) {
		silent := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session.MustFromContext(r.Context()).Put("k", "v")
		}))
		rec := httptest.NewRecorder()
		silent.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Len(t, rec.Result().Cookies(), 1)
	})

	t.Run("commits before redirects", func(t *testing.T) {
		redirect := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			resolver.ResolveOrCreate(session.MustFromContext(r.Context()))
			http.Redirect(w, r, "/login", http.StatusFound)
		}))
		rec := httptest.NewRecorder()
		redirect.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Len(t, rec.Result().Cookies(), 1)
	})
}

func TestFromContext(t *testing.T) {
	_, ok := session.FromContext(context.Background())
	assert.False(t, ok)
	assert.Panics(t, func() { session.MustFromContext(context.Background()) })

	s := session.NewSession()
	got, ok := session.FromContext(session.WithSession(context.Background(), s))
	assert.True(t, ok)
	assert.Same(t, s, got)
}

func TestLogExtractor(t *testing.T) {
	buf := &bytes.Buffer{}
	log := logger.New(
		logger.WithOutput(buf),
		logger.WithTextFormatter(),
		logger.WithContextExtractors(session.LogExtractor(session.DefaultIDAttribute)),
	)

	s := session.NewSession()
	s.Put(session.DefaultIDAttribute, "sid-42")
	log.InfoContext(session.WithSession(context.Background(), s), "hello")
	assert.Contains(t, buf.String(), "session_id=sid-42")

	buf.Reset()
	log.InfoContext(context.Background(), "no session")
	assert.NotContains(t, buf.String(), "session_id")
}
