// Package mongo stores authentication state in a MongoDB collection.
//
// Each entry is a document keyed by the storage key, holding the encoded
// value and an optional expires_at. EnsureIndexes creates a TTL index so
// the server purges expired entries on its own.
package mongo
