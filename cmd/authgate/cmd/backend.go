package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dmitrymomot/webauth/pkg/config"
	"github.com/dmitrymomot/webauth/pkg/gormstore"
	"github.com/dmitrymomot/webauth/pkg/httpserver"
	"github.com/dmitrymomot/webauth/pkg/logger"
	"github.com/dmitrymomot/webauth/pkg/mongo"
	"github.com/dmitrymomot/webauth/pkg/pg"
	"github.com/dmitrymomot/webauth/pkg/redis"
	"github.com/dmitrymomot/webauth/pkg/storage"
	"github.com/dmitrymomot/webauth/pkg/storage/memstore"
)

// Storage backend names accepted in STORAGE_BACKEND.
const (
	backendMemory   = "memory"
	backendRedis    = "redis"
	backendPostgres = "postgres"
	backendMongo    = "mongo"
	backendSQLite   = "sqlite"
)

type backendConfig struct {
	Backend string `env:"STORAGE_BACKEND" envDefault:"memory" validate:"oneof=memory redis postgres mongo sqlite"`

	MemoryCleanupInterval time.Duration `env:"MEMORY_CLEANUP_INTERVAL" envDefault:"1m"`

	SQLiteDSN             string        `env:"SQLITE_DSN" envDefault:"webauth.db"`
	SQLiteCleanupInterval time.Duration `env:"SQLITE_CLEANUP_INTERVAL" envDefault:"10m"`
}

// openedBackend is a connected backend plus what the server needs around it.
type openedBackend struct {
	name    string
	backend storage.Backend
	checks  []httpserver.Check
	closers []func(context.Context) error

	// sweep purges expired entries until ctx is done; nil when the backend
	// expires entries by itself.
	sweep func(ctx context.Context)
}

func (b *openedBackend) Close(ctx context.Context) error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = append(errs, b.closers[i](ctx))
	}
	return errors.Join(errs...)
}

// openBackend connects the configured backend. With migrate set, SQL and
// document backends also create their schema.
func openBackend(ctx context.Context, cfg backendConfig, migrate bool, log *slog.Logger) (*openedBackend, error) {
	log = log.With(logger.Backend(cfg.Backend))

	switch cfg.Backend {
	case backendMemory, "":
		ms := memstore.New(memstore.WithCleanupInterval(cfg.MemoryCleanupInterval))
		return &openedBackend{
			name:    backendMemory,
			backend: ms,
			closers: []func(context.Context) error{func(context.Context) error { return ms.Close() }},
		}, nil

	case backendRedis:
		var rc redis.Config
		if err := config.Load(&rc); err != nil {
			return nil, err
		}
		client, err := redis.Connect(ctx, rc)
		if err != nil {
			return nil, err
		}
		rs := redis.NewStorageWithConfig(client, rc)
		return &openedBackend{
			name:    backendRedis,
			backend: rs,
			checks:  []httpserver.Check{{Name: backendRedis, Fn: redis.Healthcheck(client)}},
			closers: []func(context.Context) error{func(context.Context) error { return rs.Close() }},
		}, nil

	case backendPostgres:
		var pc pg.Config
		if err := config.Load(&pc); err != nil {
			return nil, err
		}
		pool, err := pg.Connect(ctx, pc)
		if err != nil {
			return nil, err
		}
		if migrate {
			if err := pg.Migrate(ctx, pool, pc, log); err != nil {
				pool.Close()
				return nil, err
			}
		}
		ps := pg.NewStorage(pool)
		return &openedBackend{
			name:    backendPostgres,
			backend: ps,
			checks:  []httpserver.Check{{Name: backendPostgres, Fn: pg.Healthcheck(pool)}},
			closers: []func(context.Context) error{func(context.Context) error { pool.Close(); return nil }},
			sweep: func(ctx context.Context) {
				ps.RunCleanup(ctx, pc.CleanupInterval, log)
			},
		}, nil

	case backendMongo:
		var mc mongo.Config
		if err := config.Load(&mc); err != nil {
			return nil, err
		}
		client, err := mongo.New(ctx, mc)
		if err != nil {
			return nil, err
		}
		ms := mongo.NewStorage(client.Database(mc.Database).Collection(mc.Collection))
		if migrate {
			if err := ms.EnsureIndexes(ctx); err != nil {
				_ = client.Disconnect(ctx)
				return nil, err
			}
		}
		return &openedBackend{
			name:    backendMongo,
			backend: ms,
			checks:  []httpserver.Check{{Name: backendMongo, Fn: mongo.Healthcheck(client)}},
			closers: []func(context.Context) error{client.Disconnect},
		}, nil

	case backendSQLite:
		db, err := gorm.Open(sqlite.Open(cfg.SQLiteDSN), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		})
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", cfg.SQLiteDSN, err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// SQLite serialises writers; one connection avoids "database is locked".
		sqlDB.SetMaxOpenConns(1)

		gs, err := gormstore.New(db)
		if err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		return &openedBackend{
			name:    backendSQLite,
			backend: gs,
			checks:  []httpserver.Check{{Name: backendSQLite, Fn: sqlDB.PingContext}},
			closers: []func(context.Context) error{func(context.Context) error { return sqlDB.Close() }},
			sweep: func(ctx context.Context) {
				gs.PeriodicCleanUp(ctx, cfg.SQLiteCleanupInterval, log)
			},
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
