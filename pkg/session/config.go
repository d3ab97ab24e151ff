package session

import "time"

// Config holds session handle settings.
type Config struct {
	// CookieName names the cookie carrying the sealed session.
	CookieName string `env:"SESSION_COOKIE_NAME" envDefault:"WEBAUTH_SESSION" validate:"required"`

	// MaxAge bounds the cookie lifetime; zero makes a browser-session cookie.
	MaxAge time.Duration `env:"SESSION_MAX_AGE" envDefault:"24h" validate:"gte=0"`

	// Encrypt seals the payload with AES-GCM instead of only signing it.
	Encrypt bool `env:"SESSION_ENCRYPT" envDefault:"false"`

	// IDAttribute is the attribute the web session id is stored under.
	IDAttribute string `env:"SESSION_ID_ATTRIBUTE" envDefault:"pac4jSessionId" validate:"required"`

	// HeaderName, when set, also accepts and returns the session in this
	// header for API clients.
	HeaderName string `env:"SESSION_HEADER" envDefault:""`
}

// DefaultConfig returns default session configuration.
func DefaultConfig() Config {
	return Config{
		CookieName:  "WEBAUTH_SESSION",
		MaxAge:      24 * time.Hour,
		IDAttribute: DefaultIDAttribute,
	}
}
