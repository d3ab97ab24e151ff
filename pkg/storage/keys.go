package storage

import "strings"

const (
	// DefaultSeparator joins a session id and a sub-key in composite keys.
	// It must never occur inside a session id or a client name.
	DefaultSeparator = "$"

	// RequestedURLKey is the sub-key literal for a pending redirect target.
	RequestedURLKey = "requestedUrl"

	// prefixDelimiter joins the cache key prefix and a direct key.
	prefixDelimiter = ":"
)

// CacheKey applies the process-wide key prefix to a direct key.
// A blank prefix leaves the key untouched.
func CacheKey(prefix, key string) string {
	if strings.TrimSpace(prefix) == "" {
		return key
	}
	return prefix + prefixDelimiter + key
}

// ScopedKey builds the composite key of subKey inside a session's namespace.
func ScopedKey(sessionID, subKey, separator string) string {
	return sessionID + separator + subKey
}

// RequestedURLSubKey is the sub-key holding the URL a user asked for before
// being sent to the named client.
func RequestedURLSubKey(clientName, separator string) string {
	return clientName + separator + RequestedURLKey
}
