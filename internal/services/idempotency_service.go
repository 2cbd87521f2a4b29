// Package services – IdempotencyService
//
// IdempotencyService records the response of an unsafe request under its
// Idempotency-Key so a retry with the same key gets the same answer instead
// of applying the action twice.
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-fitcircle/internal/domain"
	"github.com/tbourn/go-fitcircle/internal/repo"
)

// IdempotencyService stores and replays recorded responses.
type IdempotencyService struct {
	DB  *gorm.DB
	TTL time.Duration
}

// NewIdempotencyService defaults TTL to 24h.
func NewIdempotencyService(db *gorm.DB, ttl time.Duration) *IdempotencyService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyService{DB: db, TTL: ttl}
}

// Lookup returns the still-valid record for (userID, scope, key), or
// ErrNotFound.
func (s *IdempotencyService) Lookup(ctx context.Context, userID, scope, key string) (*domain.Idempotency, error) {
	rec, err := repo.GetIdempotency(ctx, s.DB, userID, scope, key, time.Now().UTC())
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	return rec, err
}

// Exists reports whether a replayable record exists. It matches the
// middleware lookup signature.
func (s *IdempotencyService) Exists(ctx context.Context, userID, scope, key string, now time.Time) (bool, error) {
	rec, err := repo.GetIdempotency(ctx, s.DB, userID, scope, key, now)
	if errors.Is(err, repo.ErrNotFound) {
		return false, nil
	}
	return rec != nil && err == nil, err
}

// Record stores response under the key. A concurrent request that already
// recorded the same key wins; that is not an error.
func (s *IdempotencyService) Record(ctx context.Context, userID, scope, key, response string, status int) error {
	_, err := repo.CreateIdempotency(ctx, s.DB, userID, scope, key, response, status, s.TTL)
	if errors.Is(err, repo.ErrDuplicate) {
		return nil
	}
	return err
}
