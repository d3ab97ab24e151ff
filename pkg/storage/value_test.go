package storage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/webauth/pkg/profile"
	"github.com/dmitrymomot/webauth/pkg/storage"
)

func TestValue(t *testing.T) {
	t.Parallel()

	t.Run("zero value is absent", func(t *testing.T) {
		var v storage.Value
		assert.True(t, v.IsAbsent())
		assert.Equal(t, storage.KindAbsent, v.Kind())
	})

	t.Run("nil profile is absent", func(t *testing.T) {
		assert.True(t, storage.ProfileValue(nil).IsAbsent())
	})

	t.Run("empty url is present", func(t *testing.T) {
		v := storage.URLValue("")
		assert.False(t, v.IsAbsent())
		u, ok := v.URL()
		assert.True(t, ok)
		assert.Empty(t, u)
	})

	t.Run("accessors check kind", func(t *testing.T) {
		v := storage.URLValue("/x")
		_, ok := v.Profile()
		assert.False(t, ok)

		var dst map[string]string
		assert.ErrorIs(t, v.Decode(&dst), storage.ErrUnexpectedKind)
	})

	t.Run("raw value decodes", func(t *testing.T) {
		v, err := storage.RawValue(map[string]string{"state": "xyz"})
		require.NoError(t, err)
		assert.Equal(t, storage.KindRaw, v.Kind())

		var dst map[string]string
		require.NoError(t, v.Decode(&dst))
		assert.Equal(t, "xyz", dst["state"])
	})

	t.Run("raw nil is absent", func(t *testing.T) {
		v, err := storage.RawValue(nil)
		require.NoError(t, err)
		assert.True(t, v.IsAbsent())
	})

	t.Run("raw unencodable", func(t *testing.T) {
		_, err := storage.RawValue(make(chan int))
		assert.ErrorIs(t, err, storage.ErrEncode)
	})
}

func TestJSONCodec(t *testing.T) {
	t.Parallel()
	codec := storage.JSONCodec{}

	t.Run("profile", func(t *testing.T) {
		p := profile.New("github", "42")
		p.SetAttribute("login", "octocat")
		p.AddRole("admin")

		data, err := codec.Encode(storage.ProfileValue(p))
		require.NoError(t, err)

		v, err := codec.Decode(data)
		require.NoError(t, err)
		got, ok := v.Profile()
		require.True(t, ok)
		assert.Equal(t, p, got)
	})

	t.Run("url", func(t *testing.T) {
		data, err := codec.Encode(storage.URLValue("https://app.example.com/private?x=1"))
		require.NoError(t, err)

		v, err := codec.Decode(data)
		require.NoError(t, err)
		u, ok := v.URL()
		require.True(t, ok)
		assert.Equal(t, "https://app.example.com/private?x=1", u)
	})

	t.Run("absent cannot be encoded", func(t *testing.T) {
		_, err := codec.Encode(storage.Value{})
		assert.ErrorIs(t, err, storage.ErrEncode)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := codec.Decode([]byte("not json"))
		assert.ErrorIs(t, err, storage.ErrDecode)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := codec.Decode([]byte(`{"kind":"session"}`))
		assert.ErrorIs(t, err, storage.ErrDecode)
	})

	t.Run("profile kind without profile", func(t *testing.T) {
		_, err := codec.Decode([]byte(`{"kind":"profile"}`))
		assert.ErrorIs(t, err, storage.ErrDecode)
	})
}
