package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskflow/internal/model"
)

// PlanRepository handles CRUD for plans. Plans are never hard-deleted.
type PlanRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

func (r *PlanRepository) Create(ctx context.Context, plan *model.Plan) error {
	if err := r.db.WithContext(ctx).Create(plan).Error; err != nil {
		return fmt.Errorf("create plan: %w", err)
	}
	return nil
}

func (r *PlanRepository) Save(ctx context.Context, plan *model.Plan) error {
	if err := r.db.WithContext(ctx).Save(plan).Error; err != nil {
		return fmt.Errorf("save plan: %w", err)
	}
	return nil
}

func (r *PlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Plan, error) {
	var plan model.Plan
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&plan).Error; err != nil {
		return nil, fmt.Errorf("find plan: %w", err)
	}
	return &plan, nil
}

// ListAll returns every plan including soft-deleted ones.
func (r *PlanRepository) ListAll(ctx context.Context) ([]model.Plan, error) {
	var plans []model.Plan
	if err := r.db.WithContext(ctx).Order("start_time ASC").Find(&plans).Error; err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return plans, nil
}

// ListActive returns plans that are not soft-deleted, ordered by start.
func (r *PlanRepository) ListActive(ctx context.Context) ([]model.Plan, error) {
	var plans []model.Plan
	if err := r.db.WithContext(ctx).Where("is_deleted = ?", false).
		Order("start_time ASC").
		Find(&plans).Error; err != nil {
		return nil, fmt.Errorf("list active plans: %w", err)
	}
	return plans, nil
}

// ListOpen returns plans whose status is neither finished nor abandoned.
func (r *PlanRepository) ListOpen(ctx context.Context) ([]model.Plan, error) {
	var plans []model.Plan
	if err := r.db.WithContext(ctx).
		Where("status NOT IN ?", []model.PlanStatus{model.PlanFinished, model.PlanAbandoned}).
		Order("start_time ASC").
		Find(&plans).Error; err != nil {
		return nil, fmt.Errorf("list open plans: %w", err)
	}
	return plans, nil
}
