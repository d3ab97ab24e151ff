// Package storage keeps authentication state (user profiles and the URLs
// users asked for before logging in) in a namespaced, expiring key-value
// store.
//
// A Store sits on top of any Backend that can get bytes and set bytes with
// an expiry. Three layers are built from that:
//
//   - the direct surface (Get, Save, Remove) applies the process-wide key
//     prefix, encodes values and never retries or wraps backend errors;
//   - the scoped surface (GetScoped, SaveScoped, RemoveScoped) joins a
//     session id and a sub-key with the separator and uses the session
//     timeout;
//   - profile and requested-URL helpers fix the keys: the profile lives
//     under the bare session id, the requested URL under
//     "<client><sep>requestedUrl" in the session's namespace.
//
// Removing a key is saving the absent Value with no expiry, so backends
// only need get and set.
//
// Basic usage:
//
//	backend := memstore.New()
//	defer backend.Close()
//
//	store := storage.New(backend,
//	    storage.WithKeyPrefix("app"),
//	    storage.WithProfileTimeout(8*time.Hour),
//	)
//	_ = store.SaveRequestedURL(ctx, sessionID, "github", "/reports")
//
// An empty session id turns every scoped and profile operation into a no-op
// that reports "absent".
//
// Holder shares one Store across the process, builds it on first use and
// lets it be replaced at runtime.
package storage
