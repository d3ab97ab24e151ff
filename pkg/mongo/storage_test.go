package mongo_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/webauth/pkg/mongo"
	"github.com/dmitrymomot/webauth/pkg/profile"
	"github.com/dmitrymomot/webauth/pkg/storage"
)

// setupStorage connects to MONGODB_TEST_URL; tests skip when it is unset.
func setupStorage(t *testing.T) *mongo.Storage {
	t.Helper()

	url := os.Getenv("MONGODB_TEST_URL")
	if url == "" {
		t.Skip("MONGODB_TEST_URL not set")
	}

	ctx := context.Background()
	cfg := mongo.Config{
		ConnectionURL:  url,
		Database:       "webauth_test",
		ConnectTimeout: 5 * time.Second,
		MaxPoolSize:    4,
		RetryAttempts:  1,
	}

	client, err := mongo.New(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })
	require.NoError(t, mongo.Healthcheck(client)(ctx))

	coll := client.Database(cfg.Database).Collection("store_" + time.Now().Format("150405.000000"))
	t.Cleanup(func() { _ = coll.Drop(context.Background()) })

	s := mongo.NewStorage(coll)
	require.NoError(t, s.EnsureIndexes(ctx))
	return s
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

func TestStorage_ExpiredIsHidden(t *testing.T) {
	s := setupStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("v"), 500*time.Millisecond))
	time.Sleep(time.Second)

	_, found, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStorage_WithStore(t *testing.T) {
	s := setupStorage(t)
	ctx := context.Background()
	store := storage.New(s)

	p := profile.New("google", "abc")
	require.NoError(t, store.SaveProfile(ctx, "sid", p))

	got, found, err := store.GetProfile(ctx, "sid")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, p, got)
}
