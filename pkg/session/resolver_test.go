package session_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/webauth/pkg/session"
)

// countingHandle records how many times it was written to.
type countingHandle struct {
	values map[string]string
	puts   int
}

func newCountingHandle() *countingHandle {
	return &countingHandle{values: map[string]string{}}
}

func (h *countingHandle) Get(name string) (string, bool) {
	v, ok := h.values[name]
	return v, ok
}

func (h *countingHandle) Put(name, value string) {
	h.puts++
	h.values[name] = value
}

func (h *countingHandle) Remove(name string) {
	delete(h.values, name)
}

func TestResolver_ResolveOrCreate(t *testing.T) {
	t.Parallel()

	t.Run("generates a uuid on first call", func(t *testing.T) {
		h := newCountingHandle()
		id := session.NewResolver().ResolveOrCreate(h)

		_, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.Equal(t, id, h.values[session.DefaultIDAttribute])
		assert.Equal(t, 1, h.puts)
	})

	t.Run("idempotent", func(t *testing.T) {
		h := newCountingHandle()
		r := session.NewResolver()

		first := r.ResolveOrCreate(h)
		second := r.ResolveOrCreate(h)
		assert.Equal(t, first, second)
		assert.Equal(t, 1, h.puts)
	})

	t.Run("existing id is returned unchanged", func(t *testing.T) {
		h := newCountingHandle()
		h.values[session.DefaultIDAttribute] = "existing"

		assert.Equal(t, "existing", session.NewResolver().ResolveOrCreate(h))
		assert.Zero(t, h.puts)
	})

	t.Run("empty attribute counts as missing", func(t *testing.T) {
		h := newCountingHandle()
		h.values[session.DefaultIDAttribute] = ""

		r := session.NewResolver(session.WithGenerator(func() string { return "fresh" }))
		assert.Equal(t, "fresh", r.ResolveOrCreate(h))
		assert.Equal(t, 1, h.puts)
	})

	t.Run("ids differ across handles", func(t *testing.T) {
		r := session.NewResolver()
		a := r.ResolveOrCreate(newCountingHandle())
		b := r.ResolveOrCreate(newCountingHandle())
		assert.NotEqual(t, a, b)
	})

	t.Run("custom attribute", func(t *testing.T) {
		h := newCountingHandle()
		r := session.NewResolver(session.WithAttribute("sid"))
		id := r.ResolveOrCreate(h)
		assert.Equal(t, "sid", r.Attribute())
		assert.Equal(t, id, h.values["sid"])
	})

	t.Run("logs at debug", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		r := session.NewResolver(
			session.WithResolverLogger(log),
			session.WithGenerator(func() string { return "abc" }),
		)

		h := newCountingHandle()
		r.ResolveOrCreate(h)
		r.ResolveOrCreate(h)

		out := buf.String()
		assert.Contains(t, out, "generated session id")
		assert.Contains(t, out, "retrieved session id")
		assert.Contains(t, out, "session_id=abc")
	})
}

func TestResolver_LookupForget(t *testing.T) {
	t.Parallel()
	r := session.NewResolver()
	s := session.NewSession()

	_, ok := r.Lookup(s)
	assert.False(t, ok)

	id := r.ResolveOrCreate(s)
	got, ok := r.Lookup(s)
	assert.True(t, ok)
	assert.Equal(t, id, got)

	r.Forget(s)
	_, ok = r.Lookup(s)
	assert.False(t, ok)
	assert.NotEqual(t, id, r.ResolveOrCreate(s))
}
