package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"taskflow/internal/model"
)

// DayMarkerRepository tracks which days already had tasks generated.
type DayMarkerRepository struct {
	db *gorm.DB
}

func NewDayMarkerRepository(db *gorm.DB) *DayMarkerRepository {
	return &DayMarkerRepository{db: db}
}

// Generated reports whether a marker with the flag set exists in [from, to).
func (r *DayMarkerRepository) Generated(ctx context.Context, from, to time.Time) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.DayMarker{}).
		Where("date >= ? AND date < ? AND created_task_for_today = ?", from, to, true).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("find day marker: %w", err)
	}
	return count > 0, nil
}

func (r *DayMarkerRepository) Create(ctx context.Context, marker *model.DayMarker) error {
	if err := r.db.WithContext(ctx).Create(marker).Error; err != nil {
		return fmt.Errorf("create day marker: %w", err)
	}
	return nil
}
