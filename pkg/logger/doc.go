// Package logger builds slog loggers for the auth gateway and provides
// attribute constructors so that session ids, client names and storage keys
// are logged under the same keys everywhere.
//
// New takes functional options; NewFromConfig reads a Config loaded from the
// environment (LOG_LEVEL, LOG_FORMAT, APP_ENV, SERVICE_NAME). Handlers are
// wrapped in LogHandlerDecorator, which runs ContextExtractor callbacks on
// every record:
//
//	log := logger.NewFromConfig(cfg.Log,
//	    logger.WithContextExtractors(session.LogExtractor(session.DefaultIDAttribute)),
//	)
//	log.InfoContext(ctx, "profile saved", logger.ClientName("github"))
//
// Error and SessionID return an empty slog.Attr for zero inputs, so callers
// can pass them unconditionally.
package logger
