package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dmitrymomot/webauth/pkg/profile"
	"github.com/dmitrymomot/webauth/pkg/storage"
)

// Client is a redirect-based authentication mechanism (OAuth, CAS, SAML...).
// It sends the user to an identity provider and turns the provider's
// callback into a profile.
type Client interface {
	// Name identifies the client in callback URLs and storage keys.
	Name() string

	// RedirectURL returns where the user must be sent to log in.
	// It may return an *ActionError when a redirect is not appropriate.
	RedirectURL(ctx context.Context, wc *WebContext) (string, error)

	// UserProfile reads the provider callback carried by wc.Request.
	// A nil profile with a nil error means the provider returned no user.
	UserProfile(ctx context.Context, wc *WebContext) (*profile.Profile, error)
}

// StateStore is the session-scoped part of the store a client may use to
// keep data between the redirect and the callback.
type StateStore interface {
	GetScoped(ctx context.Context, sessionID, subKey string) (storage.Value, bool, error)
	SaveScoped(ctx context.Context, sessionID, subKey string, v storage.Value) error
	RemoveScoped(ctx context.Context, sessionID, subKey string) error
}

// WebContext is everything a client sees of the current request.
type WebContext struct {
	Request   *http.Request
	SessionID string
	Store     StateStore

	// Ajax marks requests that cannot follow a redirect.
	Ajax bool
}

// ActionError asks the caller to answer with a specific HTTP response
// instead of continuing the login.
type ActionError struct {
	Code     int
	Location string
	Content  string
}

func (e *ActionError) Error() string {
	if e.Location != "" {
		return fmt.Sprintf("auth: requires http %d to %s", e.Code, e.Location)
	}
	return fmt.Sprintf("auth: requires http %d", e.Code)
}

// Unauthorized builds a 401 action.
func Unauthorized(content string) *ActionError {
	return &ActionError{Code: http.StatusUnauthorized, Content: content}
}

// Forbidden builds a 403 action.
func Forbidden(content string) *ActionError {
	return &ActionError{Code: http.StatusForbidden, Content: content}
}

// RedirectTo builds a 302 action.
func RedirectTo(location string) *ActionError {
	return &ActionError{Code: http.StatusFound, Location: location}
}
