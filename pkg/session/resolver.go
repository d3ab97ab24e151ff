package session

import (
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/webauth/pkg/logger"
)

// DefaultIDAttribute is the session attribute holding the web session id.
const DefaultIDAttribute = "pac4jSessionId"

// Resolver gives every browser session a stable identifier, minting one the
// first time it is asked.
//
// Two concurrent first requests of the same browser may each mint an id;
// whichever response writes the session last wins. The losing id's store
// entries are orphaned and expire on their own.
type Resolver struct {
	attribute string
	generate  func() string
	logger    *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithAttribute changes the attribute name the id is stored under.
func WithAttribute(name string) ResolverOption {
	return func(r *Resolver) {
		if name != "" {
			r.attribute = name
		}
	}
}

// WithGenerator replaces uuid.NewString as the id source.
func WithGenerator(fn func() string) ResolverOption {
	return func(r *Resolver) {
		if fn != nil {
			r.generate = fn
		}
	}
}

// WithResolverLogger sets the logger used for debug output.
func WithResolverLogger(l *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewResolver creates a resolver storing ids under DefaultIDAttribute.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		attribute: DefaultIDAttribute,
		generate:  uuid.NewString,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Attribute returns the attribute name ids are stored under.
func (r *Resolver) Attribute() string {
	return r.attribute
}

// ResolveOrCreate returns the session id held by h, generating and storing
// a new one when the attribute is missing or empty. Repeated calls on the
// same handle return the same id and write to it at most once.
func (r *Resolver) ResolveOrCreate(h Handle) string {
	if id, ok := h.Get(r.attribute); ok && id != "" {
		r.logger.Debug("retrieved session id", logger.SessionID(id))
		return id
	}

	id := r.generate()
	h.Put(r.attribute, id)
	r.logger.Debug("generated session id", logger.SessionID(id))
	return id
}

// Lookup returns the session id without creating one.
func (r *Resolver) Lookup(h Handle) (string, bool) {
	id, ok := h.Get(r.attribute)
	return id, ok && id != ""
}

// Forget removes the session id from h; the next ResolveOrCreate mints a
// new one.
func (r *Resolver) Forget(h Handle) {
	h.Remove(r.attribute)
}
