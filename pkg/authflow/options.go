package authflow

import (
	"log/slog"

	"github.com/dmitrymomot/webauth/pkg/metrics"
)

// Option configures a Flow.
type Option func(*Flow)

// WithConfig sets custom configuration.
func WithConfig(cfg Config) Option {
	return func(f *Flow) {
		f.config = cfg
	}
}

// WithLogger sets the flow logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *Flow) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithMetrics records authentication events.
func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Flow) {
		f.metrics = m
	}
}

// AuthOption configures one RequireAuth middleware.
type AuthOption func(*authOptions)

type authOptions struct {
	targetURL string
	ajax      *bool
}

// WithTargetURL sends the user to url after login instead of the
// originally requested URL.
func WithTargetURL(url string) AuthOption {
	return func(o *authOptions) {
		o.targetURL = url
	}
}

// WithAjax forces the AJAX flag instead of detecting it from headers.
func WithAjax(ajax bool) AuthOption {
	return func(o *authOptions) {
		o.ajax = &ajax
	}
}
