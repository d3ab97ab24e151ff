package storage

import "errors"

var (
	// ErrEncode indicates a value could not be encoded for the backend
	ErrEncode = errors.New("storage.encode_failed")

	// ErrDecode indicates backend bytes could not be decoded into a value
	ErrDecode = errors.New("storage.decode_failed")

	// ErrUnexpectedKind indicates a key holds a value of another kind,
	// e.g. a URL where a profile was expected
	ErrUnexpectedKind = errors.New("storage.unexpected_kind")

	// ErrInvalidTTL indicates a negative expiry timeout
	ErrInvalidTTL = errors.New("storage.invalid_ttl")
)
