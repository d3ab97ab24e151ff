package storage

import "time"

// Config holds storage configuration
type Config struct {
	// SessionTimeout bounds every session-scoped entry (requested URLs, client state)
	SessionTimeout time.Duration `env:"STORE_SESSION_TIMEOUT" envDefault:"1h" validate:"gte=0"`

	// ProfileTimeout bounds the profile stored under a session id
	ProfileTimeout time.Duration `env:"STORE_PROFILE_TIMEOUT" envDefault:"1h" validate:"gte=0"`

	// KeyPrefix isolates deployments sharing one cache; blank means no prefix
	KeyPrefix string `env:"STORE_KEY_PREFIX"`

	// Separator joins session ids and sub-keys
	Separator string `env:"STORE_SEPARATOR" envDefault:"$" validate:"required"`
}

// DefaultConfig returns default storage configuration
func DefaultConfig() Config {
	return Config{
		SessionTimeout: time.Hour,
		ProfileTimeout: time.Hour,
		Separator:      DefaultSeparator,
	}
}

// NewFromConfig creates a new Store from the provided Config.
func NewFromConfig(backend Backend, cfg Config, opts ...Option) *Store {
	configOpts := []Option{
		WithConfig(cfg),
	}

	configOpts = append(configOpts, opts...)

	return New(backend, configOpts...)
}
