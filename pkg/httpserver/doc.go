// Package httpserver runs an http.Handler with configurable timeouts and
// graceful shutdown.
//
// Run blocks until its context is cancelled (the command wires it to
// SIGINT/SIGTERM through signal.NotifyContext) or Shutdown is called.
// Stop hooks run after the server has drained, which is where the command
// closes storage backends.
//
//	srv := httpserver.NewFromConfig(cfg,
//		httpserver.WithLogger(log),
//		httpserver.WithStopHook(func(*slog.Logger) { _ = backend.Close() }),
//	)
//	err := srv.Run(ctx, router)
//
// HealthCheckHandler serves a JSON liveness/readiness report built from
// named checks.
package httpserver
