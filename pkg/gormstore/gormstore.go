// Package gormstore stores authentication state through gorm, so any SQL
// database with a gorm driver can back the store. The auth gateway uses it
// with SQLite for single-node deployments that need to survive restarts.
package gormstore

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dmitrymomot/webauth/pkg/logger"
	"github.com/dmitrymomot/webauth/pkg/storage"
)

// Ensure GORMStore implements storage.Backend.
var _ storage.Backend = (*GORMStore)(nil)

// entry is one stored key. A nil ExpiresAt never expires.
type entry struct {
	Key       string `gorm:"column:cache_key;primaryKey;size:512"`
	Data      []byte
	ExpiresAt *time.Time `gorm:"index"`
}

func (entry) TableName() string { return "webauth_store" }

// GORMStore is a gorm backed storage.Backend.
type GORMStore struct {
	db  *gorm.DB
	now func() time.Time
}

// New returns a store over db, creating the webauth_store table if needed.
func New(db *gorm.DB) (*GORMStore, error) {
	s := &GORMStore{db: db, now: time.Now}
	return s, db.AutoMigrate(&entry{})
}

// Get implements storage.Backend.
func (s *GORMStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var e entry
	tx := s.db.WithContext(ctx).
		Where("cache_key = ? AND (expires_at IS NULL OR expires_at > ?)", key, s.now()).
		Limit(1).
		Find(&e)
	if tx.Error != nil || tx.RowsAffected == 0 {
		return nil, false, tx.Error
	}
	return e.Data, true, nil
}

// Set implements storage.Backend. Existing keys are overwritten.
func (s *GORMStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	db := s.db.WithContext(ctx)
	if data == nil {
		return db.Delete(&entry{}, "cache_key = ?", key).Error
	}

	e := entry{Key: key, Data: data}
	if ttl > 0 {
		t := s.now().Add(ttl)
		e.ExpiresAt = &t
	}

	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cache_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "expires_at"}),
	}).Create(&e).Error
}

// DeleteExpired removes expired rows and returns how many were removed.
func (s *GORMStore) DeleteExpired(ctx context.Context) (int64, error) {
	tx := s.db.WithContext(ctx).Delete(&entry{}, "expires_at IS NOT NULL AND expires_at <= ?", s.now())
	return tx.RowsAffected, tx.Error
}

// Len counts stored rows, expired ones included.
func (s *GORMStore) Len(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&entry{}).Count(&n).Error
	return n, err
}

// PeriodicCleanUp deletes expired rows every interval until ctx is done.
//
//	go store.PeriodicCleanUp(ctx, time.Minute, log)
func (s *GORMStore) PeriodicCleanUp(ctx context.Context, interval time.Duration, log *slog.Logger) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.DeleteExpired(ctx); err != nil {
				log.ErrorContext(ctx, "failed to purge expired entries",
					logger.Backend("sqlite"), logger.Error(err))
			}
		case <-ctx.Done():
			return
		}
	}
}
