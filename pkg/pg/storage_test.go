package pg_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/webauth/pkg/logger"
	"github.com/dmitrymomot/webauth/pkg/pg"
	"github.com/dmitrymomot/webauth/pkg/profile"
	"github.com/dmitrymomot/webauth/pkg/storage"
)

// setupStorage connects to the database named by PG_TEST_URL.
// Tests are skipped when it is unset.
func setupStorage(t *testing.T) *pg.Storage {
	t.Helper()

	url := os.Getenv("PG_TEST_URL")
	if url == "" {
		t.Skip("PG_TEST_URL not set")
	}

	ctx := context.Background()
	cfg := pg.Config{
		ConnectionString: url,
		MaxOpenConns:     4,
		RetryAttempts:    1,
		MigrationsTable:  "webauth_migrations_test",
	}

	pool, err := pg.Connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, pg.Migrate(ctx, pool, cfg, logger.Discard()))
	_, err = pool.Exec(ctx, "TRUNCATE webauth_store")
	require.NoError(t, err)

	require.NoError(t, pg.Healthcheck(pool)(ctx))
	return pg.NewStorage(pool)
}

func TestStorage_GetSet(t *testing.T) {
	s := setupStorage(t)
	ctx := context.Background()

	_, found, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set(ctx, "k", []byte("v1"), 0))
	require.NoError(t, s.Set(ctx, "k", []byte("v2"), time.Hour))

	data, found, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("v2"), data)

	require.NoError(t, s.Set(ctx, "k", nil, 0))
	_, found, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStorage_Expiry(t *testing.T) {
	s := setupStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "short", []byte("v"), time.Second))
	require.NoError(t, s.Set(ctx, "forever", []byte("v"), 0))

	assert.Eventually(t, func() bool {
		_, found, err := s.Get(ctx, "short")
		return err == nil && !found
	}, 5*time.Second, 100*time.Millisecond)

	n, err := s.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, found, err := s.Get(ctx, "forever")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestStorage_WithStore(t *testing.T) {
	s := setupStorage(t)
	ctx := context.Background()
	store := storage.New(s, storage.WithKeyPrefix("pgtest"))

	p := profile.New("github", "42")
	require.NoError(t, store.SaveProfile(ctx, "sid", p))
	require.NoError(t, store.SaveRequestedURL(ctx, "sid", "github", "/x"))

	got, found, err := store.GetProfile(ctx, "sid")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, p, got)

	u, found, err := store.GetRequestedURL(ctx, "sid", "github")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "/x", u)
}

func TestConnect_EmptyURL(t *testing.T) {
	_, err := pg.Connect(context.Background(), pg.Config{})
	assert.ErrorIs(t, err, pg.ErrEmptyConnectionString)
}

func TestConnect_BadURL(t *testing.T) {
	_, err := pg.Connect(context.Background(), pg.Config{ConnectionString: "postgres://%zz"})
	assert.ErrorIs(t, err, pg.ErrFailedToParseDBConfig)
}
