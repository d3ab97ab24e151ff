package session

import (
	"net/http"
	"time"
)

// Transport carries the sealed session payload between client and server.
type Transport interface {
	// GetToken extracts the payload from the request.
	// Returns ErrSessionNotFound when none is present.
	GetToken(r *http.Request) (string, error)

	// SetToken sends the payload in the response.
	SetToken(w http.ResponseWriter, token string, ttl time.Duration) error

	// ClearToken tells the client to forget the payload.
	ClearToken(w http.ResponseWriter) error
}
