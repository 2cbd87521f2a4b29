package localstorage

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-fitcircle/internal/repo"
)

// SQL stores values in the kv_entries table.
type SQL struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewSQL wraps an already migrated handle. Each call is bounded by timeout
// (5s when zero).
func NewSQL(db *gorm.DB, timeout time.Duration) *SQL {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &SQL{db: db, timeout: timeout}
}

func (s *SQL) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

func (s *SQL) Get(key string) (string, bool, error) {
	ctx, cancel := s.ctx()
	defer cancel()
	v, err := repo.GetKV(ctx, s.db, key)
	if errors.Is(err, repo.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *SQL) Set(key, value string) error {
	if key == "" {
		return ErrBadKey
	}
	ctx, cancel := s.ctx()
	defer cancel()
	return repo.PutKV(ctx, s.db, key, value)
}

func (s *SQL) Remove(key string) error {
	ctx, cancel := s.ctx()
	defer cancel()
	return repo.DeleteKV(ctx, s.db, key)
}
