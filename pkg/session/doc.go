// Package session gives each browser a stable web session id and carries a
// small attribute map between requests.
//
// A Session is a map of string attributes. Manager seals it with the cookie
// package (signed, or encrypted when Config.Encrypt is set) and sends it
// through a Transport: a cookie by default, optionally also a header for
// API clients. Middleware loads the session into the request context and
// commits it before the response is written; untouched sessions produce no
// Set-Cookie.
//
// Resolver implements web session identity on top of any Handle:
//
//	sid := resolver.ResolveOrCreate(session.MustFromContext(r.Context()))
//
// The first call mints a UUID and stores it under the "pac4jSessionId"
// attribute; later calls return it unchanged. Forget drops it on logout.
package session
