package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"taskflow/internal/model"
)

// ReviewRepository handles daily reviews.
type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) Create(ctx context.Context, review *model.Review) error {
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		return fmt.Errorf("create review: %w", err)
	}
	return nil
}

func (r *ReviewRepository) Save(ctx context.Context, review *model.Review) error {
	if err := r.db.WithContext(ctx).Save(review).Error; err != nil {
		return fmt.Errorf("save review: %w", err)
	}
	return nil
}

// FindBetween returns the first review dated in [from, to).
func (r *ReviewRepository) FindBetween(ctx context.Context, from, to time.Time) (*model.Review, error) {
	var review model.Review
	if err := r.db.WithContext(ctx).Where("date >= ? AND date < ?", from, to).
		Order("created_at ASC").
		First(&review).Error; err != nil {
		return nil, fmt.Errorf("find review: %w", err)
	}
	return &review, nil
}

func (r *ReviewRepository) ListAll(ctx context.Context) ([]model.Review, error) {
	var reviews []model.Review
	if err := r.db.WithContext(ctx).Order("date ASC").Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}
