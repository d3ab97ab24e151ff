package redis

import "errors"

var (
	ErrFailedToParseRedisConnString = errors.New("redis.parse_url_failed")
	ErrRedisNotReady                = errors.New("redis.not_ready")
	ErrEmptyConnectionURL           = errors.New("redis.empty_url")
	ErrHealthcheckFailed            = errors.New("redis.healthcheck_failed")
)
