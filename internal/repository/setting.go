package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vkarev/rotagen/internal/model"
)

var ErrSettingNotFound = errors.New("setting not found")

// SettingRepository stores the policy bag.
type SettingRepository struct {
	db *DB
}

// NewSettingRepository creates a new setting repository.
func NewSettingRepository(db *DB) *SettingRepository {
	return &SettingRepository{db: db}
}

// Get returns one setting by key.
func (r *SettingRepository) Get(ctx context.Context, key string) (*model.Setting, error) {
	var s model.Setting
	err := r.db.GORM.WithContext(ctx).Where("key = ?", key).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSettingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get setting: %w", err)
	}
	return &s, nil
}

// List returns every stored setting.
func (r *SettingRepository) List(ctx context.Context) ([]model.Setting, error) {
	var out []model.Setting
	if err := r.db.GORM.WithContext(ctx).Order("key ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	return out, nil
}

// Upsert creates or replaces a setting by key.
func (r *SettingRepository) Upsert(ctx context.Context, s *model.Setting) error {
	return r.db.GORM.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(s).Error
}
