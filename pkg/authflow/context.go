package authflow

import (
	"context"

	"github.com/dmitrymomot/webauth/pkg/profile"
)

type profileContextKey struct{}

// WithProfile adds an authenticated profile to the context.
func WithProfile(ctx context.Context, p *profile.Profile) context.Context {
	return context.WithValue(ctx, profileContextKey{}, p)
}

// ProfileFromContext returns the profile set by RequireAuth.
func ProfileFromContext(ctx context.Context) (*profile.Profile, bool) {
	p, ok := ctx.Value(profileContextKey{}).(*profile.Profile)
	return p, ok && p != nil
}
