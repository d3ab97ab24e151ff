package metrics_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/dmitrymomot/webauth/pkg/metrics"
	"github.com/dmitrymomot/webauth/pkg/storage/memstore"
	"github.com/dmitrymomot/webauth/pkg/storage/mocks"
)

func TestNewMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)

	m.AuthEvent(metrics.EventLogin, "github")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.AuthEvents.WithLabelValues("login", "github")))

	var nilMetrics *metrics.Metrics
	assert.NotPanics(t, func() { nilMetrics.AuthEvent(metrics.EventLogout, "github") })

	// Registering twice on the same registry must fail.
	assert.Panics(t, func() { metrics.NewMetrics(reg) })
}

func TestInstrumentBackend(t *testing.T) {
	ctx := context.Background()

	t.Run("counts hits misses and deletes", func(t *testing.T) {
		m := metrics.NewMetrics(prometheus.NewRegistry())
		ms := memstore.New(memstore.WithCleanupInterval(0))
		t.Cleanup(func() { _ = ms.Close() })
		b := metrics.InstrumentBackend(ms, m, "memory")

		_, found, err := b.Get(ctx, "k")
		require.NoError(t, err)
		assert.False(t, found)

		require.NoError(t, b.Set(ctx, "k", []byte("v"), time.Minute))
		_, found, err = b.Get(ctx, "k")
		require.NoError(t, err)
		assert.True(t, found)

		require.NoError(t, b.Set(ctx, "k", nil, 0))

		assert.Equal(t, float64(1), testutil.ToFloat64(m.BackendOps.WithLabelValues("memory", "get", "miss")))
		assert.Equal(t, float64(1), testutil.ToFloat64(m.BackendOps.WithLabelValues("memory", "get", "hit")))
		assert.Equal(t, float64(1), testutil.ToFloat64(m.BackendOps.WithLabelValues("memory", "set", "ok")))
		assert.Equal(t, float64(1), testutil.ToFloat64(m.BackendOps.WithLabelValues("memory", "delete", "ok")))
		assert.Equal(t, 3, testutil.CollectAndCount(m.BackendDuration))
	})

	t.Run("errors pass through", func(t *testing.T) {
		m := metrics.NewMetrics(prometheus.NewRegistry())
		ctrl := gomock.NewController(t)
		mock := mocks.NewMockBackend(ctrl)
		boom := errors.New("boom")
		mock.EXPECT().Get(gomock.Any(), "k").Return(nil, false, boom)
		mock.EXPECT().Set(gomock.Any(), "k", []byte("v"), time.Second).Return(boom)

		b := metrics.InstrumentBackend(mock, m, "redis")
		_, _, err := b.Get(ctx, "k")
		assert.Same(t, boom, err)
		assert.Same(t, boom, b.Set(ctx, "k", []byte("v"), time.Second))

		assert.Equal(t, float64(1), testutil.ToFloat64(m.BackendOps.WithLabelValues("redis", "get", "error")))
		assert.Equal(t, float64(1), testutil.ToFloat64(m.BackendOps.WithLabelValues("redis", "set", "error")))
	})

	t.Run("nil metrics returns the backend as is", func(t *testing.T) {
		ms := memstore.New(memstore.WithCleanupInterval(0))
		t.Cleanup(func() { _ = ms.Close() })
		assert.Same(t, ms, metrics.InstrumentBackend(ms, nil, "memory"))
	})
}

func TestMiddleware(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry())
	h := metrics.Middleware(m, "/metrics")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/private" {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	for _, path := range []string{"/private", "/ok", "/metrics"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, float64(1), testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "3xx")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "2xx")))

	expected := `
# HELP webauth_http_requests_total HTTP requests by method and status class
# TYPE webauth_http_requests_total counter
webauth_http_requests_total{method="GET",status="2xx"} 1
webauth_http_requests_total{method="GET",status="3xx"} 1
`
	assert.NoError(t, testutil.CollectAndCompare(m.RequestsTotal, strings.NewReader(expected)))
}
