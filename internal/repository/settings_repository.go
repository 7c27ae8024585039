package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"taskflow/internal/model"
)

// SettingsRepository stores the settings singleton.
type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// First returns the oldest settings record, or gorm.ErrRecordNotFound.
func (r *SettingsRepository) First(ctx context.Context) (*model.Settings, error) {
	var settings model.Settings
	if err := r.db.WithContext(ctx).Order("created_at ASC").First(&settings).Error; err != nil {
		return nil, fmt.Errorf("find settings: %w", err)
	}
	return &settings, nil
}

func (r *SettingsRepository) Create(ctx context.Context, settings *model.Settings) error {
	if err := r.db.WithContext(ctx).Create(settings).Error; err != nil {
		return fmt.Errorf("create settings: %w", err)
	}
	return nil
}

func (r *SettingsRepository) Save(ctx context.Context, settings *model.Settings) error {
	if err := r.db.WithContext(ctx).Save(settings).Error; err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
