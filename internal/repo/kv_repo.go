package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-fitcircle/internal/domain"
)

// GetKV returns the value stored under key, or ErrNotFound.
func GetKV(ctx context.Context, db *gorm.DB, key string) (string, error) {
	var e domain.KVEntry
	if err := db.WithContext(ctx).Where("key = ?", key).First(&e).Error; err != nil {
		return "", err
	}
	return e.Value, nil
}

// PutKV inserts or overwrites key.
func PutKV(ctx context.Context, db *gorm.DB, key, value string) error {
	e := &domain.KVEntry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(e).Error
}

// DeleteKV removes key. Deleting a missing key is not an error.
func DeleteKV(ctx context.Context, db *gorm.DB, key string) error {
	return db.WithContext(ctx).Where("key = ?", key).Delete(&domain.KVEntry{}).Error
}
