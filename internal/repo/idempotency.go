package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-gift-registry/internal/domain"
)

// IdempotencyStore keeps the stored responses of retry-safe requests,
// unique per (scope, key), for a fixed replay window.
type IdempotencyStore struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

// NewIdempotencyStore returns a store whose records replay for ttl.
func NewIdempotencyStore(db *gorm.DB, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{db: db, ttl: ttl, now: func() time.Time { return time.Now().UTC() }}
}

// Lookup returns the record for (scope, key) that is still valid now, or
// ErrNotFound.
func (s *IdempotencyStore) Lookup(ctx context.Context, scope, key string) (*domain.Idempotency, error) {
	return s.find(ctx, scope, key, s.now())
}

// Exists reports whether a valid record exists at now. A missing or expired
// record is not an error; a failing store is.
func (s *IdempotencyStore) Exists(ctx context.Context, scope, key string, now time.Time) (bool, error) {
	_, err := s.find(ctx, scope, key, now)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (s *IdempotencyStore) find(ctx context.Context, scope, key string, now time.Time) (*domain.Idempotency, error) {
	if strings.TrimSpace(key) == "" {
		return nil, ErrNotFound
	}
	var rec domain.Idempotency
	err := s.db.WithContext(ctx).
		Where("scope = ? AND key = ? AND expires_at > ?", scope, key, now).
		Take(&rec).Error
	if err != nil {
		return nil, classify(err)
	}
	return &rec, nil
}

// Save records a processed response. An expired record under the same
// (scope, key) is replaced; a live one makes Save fail with ErrDuplicate.
func (s *IdempotencyStore) Save(ctx context.Context, scope, key string, status int, body []byte) error {
	now := s.now()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("scope = ? AND key = ? AND expires_at <= ?", scope, key, now).
			Delete(&domain.Idempotency{}).Error; err != nil {
			return err
		}
		return classify(tx.Create(&domain.Idempotency{
			ID:        uuid.NewString(),
			Scope:     scope,
			Key:       key,
			Status:    status,
			Body:      body,
			CreatedAt: now,
			ExpiresAt: now.Add(s.ttl),
		}).Error)
	})
}

// Purge deletes records expired at the store's current time and returns
// how many were removed.
func (s *IdempotencyStore) Purge(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at <= ?", s.now()).Delete(&domain.Idempotency{})
	return res.RowsAffected, res.Error
}
