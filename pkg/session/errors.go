package session

import "errors"

var (
	ErrSessionNotFound = errors.New("session.not_found")
	ErrInvalidPayload  = errors.New("session.invalid_payload")
	ErrPayloadTooLarge = errors.New("session.payload_too_large")
)
