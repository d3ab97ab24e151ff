package session

import (
	"maps"
	"sync"
)

// Ensure Session implements Handle.
var _ Handle = (*Session)(nil)

// Session is the per-browser attribute map carried by the transport.
// It is safe for concurrent use and remembers whether it was modified, so
// unchanged sessions are not written back.
type Session struct {
	mu     sync.RWMutex
	values map[string]string
	dirty  bool
}

// NewSession returns an empty, clean session.
func NewSession() *Session {
	return &Session{values: make(map[string]string)}
}

func newSessionFrom(values map[string]string) *Session {
	if values == nil {
		values = make(map[string]string)
	}
	return &Session{values: values}
}

// Get returns an attribute.
func (s *Session) Get(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[name]
	return v, ok
}

// Put sets an attribute. Writing the current value again is not a change.
func (s *Session) Put(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.values[name]; ok && cur == value {
		return
	}
	s.values[name] = value
	s.dirty = true
}

// Remove deletes an attribute.
func (s *Session) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[name]; !ok {
		return
	}
	delete(s.values, name)
	s.dirty = true
}

// Clear drops every attribute.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.values) == 0 {
		return
	}
	clear(s.values)
	s.dirty = true
}

// Len returns the number of attributes.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

// IsDirty reports whether the session changed since it was loaded.
func (s *Session) IsDirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// Values returns a copy of the attributes.
func (s *Session) Values() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.values)
}

func (s *Session) markClean() {
	s.mu.Lock()
	s.dirty = false
	s.mu.Unlock()
}
