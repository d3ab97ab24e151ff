package session

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/webauth/pkg/logger"
)

type sessionContextKey struct{}

// WithSession adds a session to the context.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, s)
}

// FromContext retrieves the session stored by Middleware.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionContextKey{}).(*Session)
	return s, ok && s != nil
}

// MustFromContext retrieves the session or panics.
func MustFromContext(ctx context.Context) *Session {
	s, ok := FromContext(ctx)
	if !ok {
		panic("session: not found in context")
	}
	return s
}

// LogExtractor adds the web session id to log records emitted with a
// request context. attribute is the resolver's attribute name.
func LogExtractor(attribute string) logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		s, ok := FromContext(ctx)
		if !ok {
			return slog.Attr{}, false
		}
		id, ok := s.Get(attribute)
		if !ok || id == "" {
			return slog.Attr{}, false
		}
		return logger.SessionID(id), true
	}
}
