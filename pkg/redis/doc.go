// Package redis connects to Redis and exposes it as a storage.Backend.
//
// Connect parses a redis:// URL, pings the server and retries according to
// Config. Storage maps Get to GET, Set to SET with EX (or DEL for nil data),
// so entries expire on the server without any sweeping on our side.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	store := storage.New(redis.NewStorageWithConfig(client, cfg))
//
// Healthcheck returns a probe suitable for the /healthz endpoint.
package redis
