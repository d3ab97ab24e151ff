package session_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/webauth/pkg/session"
)

func TestSession(t *testing.T) {
	t.Parallel()

	t.Run("starts clean and empty", func(t *testing.T) {
		s := session.NewSession()
		assert.Zero(t, s.Len())
		assert.False(t, s.IsDirty())
	})

	t.Run("put get remove", func(t *testing.T) {
		s := session.NewSession()
		s.Put("a", "1")
		v, ok := s.Get("a")
		assert.True(t, ok)
		assert.Equal(t, "1", v)
		assert.True(t, s.IsDirty())

		s.Remove("a")
		_, ok = s.Get("a")
		assert.False(t, ok)
	})

	t.Run("no-op writes stay clean", func(t *testing.T) {
		s := session.NewSession()
		s.Remove("missing")
		s.Clear()
		assert.False(t, s.IsDirty())
	})

	t.Run("clear", func(t *testing.T) {
		s := session.NewSession()
		s.Put("a", "1")
		s.Put("b", "2")
		s.Clear()
		assert.Zero(t, s.Len())
	})

	t.Run("values is a copy", func(t *testing.T) {
		s := session.NewSession()
		s.Put("a", "1")
		vals := s.Values()
		vals["a"] = "changed"
		v, _ := s.Get("a")
		assert.Equal(t, "1", v)
	})

	t.Run("concurrent access", func(t *testing.T) {
		s := session.NewSession()
		var wg sync.WaitGroup
		for i := range 10 {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				for range 100 {
					s.Put("k", "v")
					_, _ = s.Get("k")
					if i%2 == 0 {
						s.Remove("k")
					}
				}
			}(i)
		}
		wg.Wait()
	})
}
