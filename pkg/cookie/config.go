package cookie

import (
	"net/http"
	"strings"
)

// Config holds cookie settings loaded from the environment.
// Secrets is a comma separated list; the first one signs and encrypts,
// the rest are only accepted when reading, which allows key rotation.
type Config struct {
	Secrets  string `env:"COOKIE_SECRETS" envDefault:""`
	Path     string `env:"COOKIE_PATH" envDefault:"/"`
	Domain   string `env:"COOKIE_DOMAIN" envDefault:""`
	MaxAge   int    `env:"COOKIE_MAX_AGE" envDefault:"0"`
	Secure   bool   `env:"COOKIE_SECURE" envDefault:"true"`
	HttpOnly bool   `env:"COOKIE_HTTP_ONLY" envDefault:"true"`
	SameSite string `env:"COOKIE_SAME_SITE" envDefault:"lax" validate:"oneof=lax strict none"`
}

func DefaultConfig() Config {
	return Config{
		Path:     "/",
		Secure:   true,
		HttpOnly: true,
		SameSite: "lax",
	}
}

// ParseSameSite maps "lax", "strict" and "none" to http.SameSite.
// Anything else yields the browser default.
func ParseSameSite(s string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lax":
		return http.SameSiteLaxMode
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteDefaultMode
	}
}

func (c Config) secrets() []string {
	var out []string
	for s := range strings.SplitSeq(c.Secrets, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// NewFromConfig builds a Manager from cfg. Extra opts override cfg.
func NewFromConfig(cfg Config, opts ...Option) (*Manager, error) {
	configOpts := []Option{
		WithPath(cfg.Path),
		WithDomain(cfg.Domain),
		WithMaxAge(cfg.MaxAge),
		WithSecure(cfg.Secure),
		WithHTTPOnly(cfg.HttpOnly),
		WithSameSite(ParseSameSite(cfg.SameSite)),
	}
	return New(cfg.secrets(), append(configOpts, opts...)...)
}
