// Package config loads typed configuration from environment variables.
//
// It combines github.com/joho/godotenv for .env files,
// github.com/caarlos0/env/v11 for parsing struct tags and
// github.com/go-playground/validator/v10 for `validate` tags. Every package
// in this module exposes a Config struct with env tags and a
// DefaultConfig; the command loads them all through this package:
//
//	var cfg storage.Config
//	if err := config.Load(&cfg); err != nil {
//		log.Fatal(err)
//	}
//
// Load caches each configuration type for the lifetime of the process.
// Parse does the same work without the cache, and ResetCache clears it in
// tests. Errors can be matched with errors.Is against ErrParsingConfig,
// ErrValidationFailed, ErrLoadingEnvFile and ErrNilPointer.
package config
