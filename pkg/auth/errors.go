package auth

import "errors"

var (
	ErrClientNotFound  = errors.New("auth.client_not_found")
	ErrDuplicateClient = errors.New("auth.duplicate_client")
	ErrInvalidClient   = errors.New("auth.invalid_client")
	ErrMissingSession  = errors.New("auth.missing_session")
)

// OAuth errors
var (
	ErrInvalidState      = errors.New("auth.invalid_state")
	ErrInvalidCode       = errors.New("auth.invalid_code")
	ErrAccessDenied      = errors.New("auth.access_denied")
	ErrProfileIncomplete = errors.New("auth.profile_incomplete")
	ErrUserInfo          = errors.New("auth.user_info_failed")
)

// Loader errors
var (
	ErrFailedToReadClients  = errors.New("auth.failed_to_read_clients")
	ErrFailedToParseClients = errors.New("auth.failed_to_parse_clients")
	ErrUnknownProvider      = errors.New("auth.unknown_provider")
)
