// Package webauth adds redirect-based authentication to net/http
// applications.
//
// The root package only holds request helpers shared by the subpackages:
// detection of HTMX, DataStar and other script-issued requests, and a
// Redirect that each of those clients can follow.
//
// The pieces live in subpackages:
//
//   - pkg/session: session handle carried in a signed cookie, and the
//     resolver that issues the web session id on first use
//   - pkg/storage: the namespaced, expiring store of profiles and
//     requested URLs keyed by session id, with backends in
//     pkg/storage/memstore, pkg/redis, pkg/pg, pkg/mongo and pkg/gormstore
//   - pkg/auth: authentication clients and their registry
//   - pkg/authflow: the middleware and handlers driving a login
//
// A typical wiring:
//
//	store := storage.New(memstore.New())
//	sessions := session.New(cookies)
//	flow := authflow.New(store, session.NewResolver(), clients)
//
//	r := chi.NewRouter()
//	r.Use(sessions.Middleware)
//	r.Mount("/auth", flow.Router())
//	r.With(flow.RequireAuth("github")).Get("/private", private)
package webauth
