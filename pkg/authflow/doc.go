// Package authflow protects net/http handlers with redirect-based
// authentication clients.
//
// RequireAuth looks up the profile stored under the caller's web session
// id. Without one it remembers the requested URL, asks the client where to
// send the user and redirects there. Callback receives the provider's
// answer, stores the profile under the session id and sends the user back
// to the remembered URL. The logout handlers remove the profile and drop
// the session id, so the next login starts from a fresh namespace.
//
// The flow expects session.Manager.Middleware to run first:
//
//	flow, err := authflow.New(store, session.NewResolver(), clients,
//		authflow.WithLogger(log),
//		authflow.WithMetrics(m),
//	)
//
//	r := chi.NewRouter()
//	r.Use(sessions.Middleware)
//	r.Mount("/auth", flow.Router())
//	r.With(flow.RequireAuth("github")).Get("/dashboard", dashboard)
//
// Inside protected handlers the profile is available through
// ProfileFromContext.
//
// A store read failure while checking for a profile is logged and handled
// as an anonymous request, so an outage never lets a request through
// unauthenticated. Write failures answer 500.
package authflow
