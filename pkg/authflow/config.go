package authflow

// Config holds authentication flow settings.
type Config struct {
	// DefaultSuccessURL is used after login when no requested URL was saved.
	DefaultSuccessURL string `env:"AUTH_DEFAULT_SUCCESS_URL" envDefault:"/" validate:"required"`

	// DefaultLogoutURL is used after logout when no valid target is given.
	DefaultLogoutURL string `env:"AUTH_DEFAULT_LOGOUT_URL" envDefault:"/" validate:"required"`

	// LogoutURLParam names the query parameter carrying the post-logout target.
	LogoutURLParam string `env:"AUTH_LOGOUT_URL_PARAM" envDefault:"url" validate:"required"`

	// LogoutURLPattern restricts post-logout targets. Relative paths only by default.
	LogoutURLPattern string `env:"AUTH_LOGOUT_URL_PATTERN" envDefault:"^/([^/\\\\].*)?$"`

	// UnauthorizedContent and ForbiddenContent are served with 401 and 403.
	UnauthorizedContent string `env:"AUTH_UNAUTHORIZED_CONTENT" envDefault:"authentication required"`
	ForbiddenContent    string `env:"AUTH_FORBIDDEN_CONTENT" envDefault:"forbidden"`
}

// DefaultConfig returns default flow configuration.
func DefaultConfig() Config {
	return Config{
		DefaultSuccessURL:   "/",
		DefaultLogoutURL:    "/",
		LogoutURLParam:      "url",
		LogoutURLPattern:    `^/([^/\\].*)?$`,
		UnauthorizedContent: "authentication required",
		ForbiddenContent:    "forbidden",
	}
}
