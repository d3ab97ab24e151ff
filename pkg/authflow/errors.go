package authflow

import "errors"

var (
	ErrNoSession               = errors.New("authflow.no_session")
	ErrInvalidLogoutURLPattern = errors.New("authflow.invalid_logout_url_pattern")
)
