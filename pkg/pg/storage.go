package pg

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	pkglogger "github.com/dmitrymomot/webauth/pkg/logger"
	"github.com/dmitrymomot/webauth/pkg/storage"
)

// Ensure Storage implements storage.Backend.
var _ storage.Backend = (*Storage)(nil)

const (
	selectQuery = `SELECT data FROM webauth_store
WHERE key = $1 AND (expires_at IS NULL OR expires_at > $2)`

	upsertQuery = `INSERT INTO webauth_store (key, data, expires_at)
VALUES ($1, $2, $3)
ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, expires_at = EXCLUDED.expires_at`

	deleteQuery = `DELETE FROM webauth_store WHERE key = $1`

	deleteExpiredQuery = `DELETE FROM webauth_store
WHERE expires_at IS NOT NULL AND expires_at <= $1`
)

// dbtx is the part of *pgxpool.Pool the storage needs.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Storage is a storage.Backend backed by the webauth_store table.
// Expired rows are filtered on read and purged by DeleteExpired. Expiry is
// always computed and compared with the application clock, never the
// database's now().
type Storage struct {
	db  dbtx
	now func() time.Time
}

// NewStorage wraps a connected pool. Run Migrate first.
func NewStorage(pool *pgxpool.Pool) *Storage {
	return &Storage{db: pool, now: time.Now}
}

// Get implements storage.Backend.
func (s *Storage) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := s.db.QueryRow(ctx, selectQuery, key, s.now()).Scan(&data)
	if IsNotFoundError(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set implements storage.Backend.
func (s *Storage) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if data == nil {
		_, err := s.db.Exec(ctx, deleteQuery, key)
		return err
	}

	var expiresAt *time.Time
	if ttl > 0 {
		t := s.now().Add(ttl)
		expiresAt = &t
	}

	_, err := s.db.Exec(ctx, upsertQuery, key, data, expiresAt)
	return err
}

// DeleteExpired purges expired rows and returns how many were removed.
func (s *Storage) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := s.db.Exec(ctx, deleteExpiredQuery, s.now())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// RunCleanup calls DeleteExpired every interval until ctx is done.
func (s *Storage) RunCleanup(ctx context.Context, interval time.Duration, log *slog.Logger) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.DeleteExpired(ctx)
			if err != nil {
				log.ErrorContext(ctx, "failed to purge expired entries",
					pkglogger.Backend("postgres"), pkglogger.Error(err))
				continue
			}
			if n > 0 {
				log.DebugContext(ctx, "purged expired entries",
					pkglogger.Backend("postgres"), slog.Int64("count", n))
			}
		}
	}
}
