package logger_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/webauth/pkg/logger"
)

func TestGroup(t *testing.T) {
	attr := logger.Group("req", slog.String("id", "1"), slog.Int("n", 2))
	require.Equal(t, "req", attr.Key)
	require.Equal(t, slog.KindGroup, attr.Value.Kind())
	g := attr.Value.Group()
	require.Len(t, g, 2)
	assert.Equal(t, "id", g[0].Key)
	assert.Equal(t, "n", g[1].Key)
}

func TestErrors(t *testing.T) {
	err1 := errors.New("first")
	err2 := errors.New("second")

	attr := logger.Errors(err1, nil, err2)
	require.Equal(t, "errors", attr.Key)
	g := attr.Value.Group()
	require.Len(t, g, 2)
	assert.Equal(t, err1, g[0].Value.Any())
	assert.Equal(t, err2, g[1].Value.Any())

	assert.True(t, logger.Errors(nil).Equal(slog.Attr{}))
}

func TestError(t *testing.T) {
	err := errors.New("boom")
	attr := logger.Error(err)
	require.Equal(t, "error", attr.Key)
	assert.Equal(t, err, attr.Value.Any())

	assert.True(t, logger.Error(nil).Equal(slog.Attr{}))
}

func TestSessionAttrs(t *testing.T) {
	t.Run("session id", func(t *testing.T) {
		attr := logger.SessionID("sid-1")
		require.Equal(t, "session_id", attr.Key)
		assert.Equal(t, "sid-1", attr.Value.String())
		assert.True(t, logger.SessionID("").Equal(slog.Attr{}))
	})

	t.Run("client name", func(t *testing.T) {
		attr := logger.ClientName("github")
		require.Equal(t, "client", attr.Key)
		assert.Equal(t, "github", attr.Value.String())
		assert.True(t, logger.ClientName("").Equal(slog.Attr{}))
	})

	t.Run("profile id", func(t *testing.T) {
		attr := logger.ProfileID("github#42")
		require.Equal(t, "profile_id", attr.Key)
		assert.Equal(t, "github#42", attr.Value.String())
	})
}

func TestStorageAttrs(t *testing.T) {
	assert.Equal(t, "key", logger.Key("app:sid").Key)
	assert.Equal(t, "backend", logger.Backend("redis").Key)
	assert.Equal(t, "component", logger.Component("authflow").Key)
	assert.Equal(t, "handler", logger.Handler("callback").Key)
}

func TestRequestID(t *testing.T) {
	attr := logger.RequestID("abc")
	require.Equal(t, "request_id", attr.Key)
	assert.Equal(t, "abc", attr.Value.Any())
	assert.True(t, logger.RequestID(nil).Equal(slog.Attr{}))
}
