package storage

import (
	"log/slog"
	"time"
)

// Option is a functional option for configuring the Store
type Option func(*Store)

// WithConfig sets custom configuration
func WithConfig(cfg Config) Option {
	return func(s *Store) {
		s.config = cfg
	}
}

// WithKeyPrefix sets the key prefix applied to every direct key
func WithKeyPrefix(prefix string) Option {
	return func(s *Store) {
		s.config.KeyPrefix = prefix
	}
}

// WithSessionTimeout sets the expiry of session-scoped entries
func WithSessionTimeout(d time.Duration) Option {
	return func(s *Store) {
		s.config.SessionTimeout = d
	}
}

// WithProfileTimeout sets the expiry of stored profiles
func WithProfileTimeout(d time.Duration) Option {
	return func(s *Store) {
		s.config.ProfileTimeout = d
	}
}

// WithSeparator sets the composite key separator
func WithSeparator(sep string) Option {
	return func(s *Store) {
		if sep != "" {
			s.config.Separator = sep
		}
	}
}

// WithCodec replaces the JSON codec
func WithCodec(c Codec) Option {
	return func(s *Store) {
		if c != nil {
			s.codec = c
		}
	}
}

// WithLogger sets the store logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}
