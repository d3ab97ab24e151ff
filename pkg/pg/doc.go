// Package pg stores authentication state in PostgreSQL through pgx/v5.
//
// Connect opens a pool with retries, Migrate applies the embedded goose
// migrations that create the webauth_store table, and Storage implements
// storage.Backend on top of it:
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, log); err != nil {
//	    return err
//	}
//	backend := pg.NewStorage(pool)
//	go backend.RunCleanup(ctx, cfg.CleanupInterval, log)
//
// Rows carry an optional expires_at. Reads ignore expired rows, so the
// cleanup sweep only reclaims space.
package pg
