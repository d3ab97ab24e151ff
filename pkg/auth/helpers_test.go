package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/webauth/pkg/storage"
	"github.com/dmitrymomot/webauth/pkg/storage/memstore"
)

func newStore(t *testing.T) *storage.Store {
	t.Helper()
	ms := memstore.New(memstore.WithCleanupInterval(0))
	t.Cleanup(func() { _ = ms.Close() })
	return storage.New(ms)
}

// providerServer fakes an OAuth2 authorization server with a token
// endpoint and a user info endpoint.
type providerServer struct {
	*httptest.Server
	code     string
	token    string
	userInfo map[string]any
}

func newProvider(t *testing.T) *providerServer {
	t.Helper()
	p := &providerServer{
		code:     "good-code",
		token:    "access-token",
		userInfo: map[string]any{"sub": "user-1", "email": "user@example.com"},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("code") != p.code {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": p.token,
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+p.token {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(p.userInfo)
	})

	p.Server = httptest.NewServer(mux)
	t.Cleanup(p.Close)
	return p
}
