package authflow

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/webauth"
	"github.com/dmitrymomot/webauth/pkg/auth"
	"github.com/dmitrymomot/webauth/pkg/logger"
	"github.com/dmitrymomot/webauth/pkg/metrics"
	"github.com/dmitrymomot/webauth/pkg/session"
	"github.com/dmitrymomot/webauth/pkg/storage"
)

// Flow drives redirect-based logins: it protects handlers, handles the
// provider callback and logs users out. The session handle must be in the
// request context (see session.Manager.Middleware).
type Flow struct {
	store    storage.Storage
	resolver *session.Resolver
	clients  *auth.Clients
	config   Config
	logoutRe *regexp.Regexp
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// New creates a flow. store is usually a *storage.Store or *storage.Holder.
func New(store storage.Storage, resolver *session.Resolver, clients *auth.Clients, opts ...Option) (*Flow, error) {
	if store == nil || resolver == nil || clients == nil {
		return nil, errors.New("authflow: store, resolver and clients are required")
	}

	f := &Flow{
		store:    store,
		resolver: resolver,
		clients:  clients,
		config:   DefaultConfig(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.config.LogoutURLPattern != "" {
		re, err := regexp.Compile(f.config.LogoutURLPattern)
		if err != nil {
			return nil, errors.Join(ErrInvalidLogoutURLPattern, err)
		}
		f.logoutRe = re
	}

	return f, nil
}

// Config returns the effective configuration.
func (f *Flow) Config() Config {
	return f.config
}

// RequireAuth lets requests with a stored profile through and starts a
// login with the named client for everyone else. The requested URL is
// remembered so the callback can send the user back.
func (f *Flow) RequireAuth(clientName string, opts ...AuthOption) func(http.Handler) http.Handler {
	o := &authOptions{}
	for _, opt := range opts {
		opt(o)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			h, ok := session.FromContext(ctx)
			if !ok {
				f.fail(w, r, ErrNoSession)
				return
			}
			sid := f.resolver.ResolveOrCreate(h)

			p, found, err := f.store.GetProfile(ctx, sid)
			if err != nil {
				// Unreadable store means unknown user: authenticate again.
				f.logger.WarnContext(ctx, "profile lookup failed",
					logger.SessionID(sid),
					logger.Error(err),
				)
				found = false
			}
			if found {
				next.ServeHTTP(w, r.WithContext(WithProfile(ctx, p)))
				return
			}

			client, err := f.clients.Find(clientName)
			if err != nil {
				f.fail(w, r, err)
				return
			}

			target := DefaultURL(o.targetURL, r.URL.RequestURI())
			if err := f.store.SaveRequestedURL(ctx, sid, clientName, target); err != nil {
				f.fail(w, r, err)
				return
			}

			ajax := webauth.IsAJAX(r)
			if o.ajax != nil {
				ajax = *o.ajax
			}

			location, err := client.RedirectURL(ctx, &auth.WebContext{
				Request:   r,
				SessionID: sid,
				Store:     f.store,
				Ajax:      ajax,
			})
			if err != nil {
				f.metrics.AuthEvent(metrics.EventDenied, clientName)
				f.fail(w, r, err)
				return
			}

			f.metrics.AuthEvent(metrics.EventChallenge, clientName)
			f.logger.DebugContext(ctx, "authentication required",
				logger.SessionID(sid),
				logger.ClientName(clientName),
			)
			f.redirect(w, r, location)
		})
	}
}

// Callback finishes a login: it asks the client named in the request for
// the profile, stores it under the session id and sends the user back to
// the URL saved by RequireAuth.
func (f *Flow) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	client, err := f.clients.FindFromRequest(r)
	if err != nil {
		f.metrics.AuthEvent(metrics.EventLoginFailed, "")
		f.fail(w, r, err)
		return
	}
	name := client.Name()

	h, ok := session.FromContext(ctx)
	if !ok {
		f.fail(w, r, ErrNoSession)
		return
	}
	sid := f.resolver.ResolveOrCreate(h)

	p, err := client.UserProfile(ctx, &auth.WebContext{
		Request:   r,
		SessionID: sid,
		Store:     f.store,
		Ajax:      webauth.IsAJAX(r),
	})
	if err != nil {
		f.metrics.AuthEvent(metrics.EventLoginFailed, name)
		f.logger.WarnContext(ctx, "login failed",
			logger.SessionID(sid),
			logger.ClientName(name),
			logger.Error(err),
		)
		f.fail(w, r, err)
		return
	}

	if p != nil {
		if err := f.store.SaveProfile(ctx, sid, p); err != nil {
			f.fail(w, r, err)
			return
		}
		f.metrics.AuthEvent(metrics.EventLogin, name)
		f.logger.InfoContext(ctx, "user logged in",
			logger.SessionID(sid),
			logger.ClientName(name),
			logger.ProfileID(p.TypedID()),
		)
	}

	requested, _, err := f.store.GetRequestedURL(ctx, sid, name)
	if err != nil {
		f.logger.WarnContext(ctx, "requested url lookup failed",
			logger.SessionID(sid),
			logger.ClientName(name),
			logger.Error(err),
		)
	}

	f.redirect(w, r, DefaultURL(requested, f.config.DefaultSuccessURL))
}

// LogoutAndOK logs the user out and answers 200 with an empty body.
func (f *Flow) LogoutAndOK(w http.ResponseWriter, r *http.Request) {
	if err := f.logout(r); err != nil {
		f.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// LogoutAndRedirect logs the user out and redirects to the URL given in
// the logout parameter, or to the default logout URL.
func (f *Flow) LogoutAndRedirect(w http.ResponseWriter, r *http.Request) {
	if err := f.logout(r); err != nil {
		f.fail(w, r, err)
		return
	}
	f.redirect(w, r, f.logoutTarget(r))
}

// Router mounts the callback and logout handlers.
func (f *Flow) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/callback", f.Callback)
	r.Post("/callback", f.Callback)
	r.Get("/logout", f.LogoutAndOK)
	r.Post("/logout", f.LogoutAndOK)
	r.Get("/logout/redirect", f.LogoutAndRedirect)
	return r
}

// DefaultURL returns url unless it is blank, then def.
func DefaultURL(url, def string) string {
	if strings.TrimSpace(url) != "" {
		return url
	}
	return def
}

func (f *Flow) logout(r *http.Request) error {
	h, ok := session.FromContext(r.Context())
	if !ok {
		return ErrNoSession
	}

	sid, ok := f.resolver.Lookup(h)
	if ok && strings.TrimSpace(sid) != "" {
		if err := f.store.RemoveProfile(r.Context(), sid); err != nil {
			return err
		}
		f.logger.InfoContext(r.Context(), "user logged out", logger.SessionID(sid))
	}
	f.resolver.Forget(h)
	f.metrics.AuthEvent(metrics.EventLogout, "")
	return nil
}

func (f *Flow) logoutTarget(r *http.Request) string {
	target := r.URL.Query().Get(f.config.LogoutURLParam)
	if target == "" {
		return f.config.DefaultLogoutURL
	}
	if f.logoutRe != nil && !f.logoutRe.MatchString(target) {
		f.logger.DebugContext(r.Context(), "logout url rejected", slog.String("url", target))
		return f.config.DefaultLogoutURL
	}
	return target
}

func (f *Flow) redirect(w http.ResponseWriter, r *http.Request, url string) {
	if err := webauth.Redirect(w, r, url); err != nil {
		f.logger.ErrorContext(r.Context(), "redirect failed", logger.Error(err))
	}
}

// fail maps an error to a response: client actions are rendered as asked,
// login errors become 401, an unknown client 400, anything else 500.
func (f *Flow) fail(w http.ResponseWriter, r *http.Request, err error) {
	var action *auth.ActionError
	switch {
	case errors.As(err, &action):
		f.renderAction(w, r, action)
	case errors.Is(err, auth.ErrClientNotFound):
		http.Error(w, "unknown authentication client", http.StatusBadRequest)
	case errors.Is(err, auth.ErrInvalidState),
		errors.Is(err, auth.ErrInvalidCode),
		errors.Is(err, auth.ErrAccessDenied),
		errors.Is(err, auth.ErrProfileIncomplete):
		http.Error(w, f.config.UnauthorizedContent, http.StatusUnauthorized)
	default:
		f.logger.ErrorContext(r.Context(), "authentication flow failed",
			logger.Component("authflow"),
			slog.String("path", r.URL.Path),
			logger.Error(err),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (f *Flow) renderAction(w http.ResponseWriter, r *http.Request, a *auth.ActionError) {
	switch a.Code {
	case http.StatusFound, http.StatusSeeOther, http.StatusTemporaryRedirect:
		f.redirect(w, r, a.Location)
	case http.StatusUnauthorized:
		http.Error(w, DefaultURL(a.Content, f.config.UnauthorizedContent), a.Code)
	case http.StatusForbidden:
		http.Error(w, DefaultURL(a.Content, f.config.ForbiddenContent), a.Code)
	case http.StatusOK:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, a.Content)
	default:
		http.Error(w, DefaultURL(a.Content, http.StatusText(a.Code)), a.Code)
	}
}
