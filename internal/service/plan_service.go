package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskflow/internal/clock"
	"taskflow/internal/model"
)

// PlanInput represents the editable fields of a plan. An empty Status means
// NotStarted on create and "unchanged" on update.
type PlanInput struct {
	Name             string
	Status           model.PlanStatus
	Priority         *model.Priority
	IsUrgent         bool
	StartTime        time.Time
	EstimatedEndTime *time.Time
	Note             string
	Review           string
}

// PlanInputOf returns the current values of p, ready to be edited and passed
// to Update.
func PlanInputOf(p model.Plan) PlanInput {
	return PlanInput{
		Name:             p.Name,
		Status:           p.Status,
		Priority:         p.Priority,
		IsUrgent:         p.IsUrgent,
		StartTime:        p.StartTime,
		EstimatedEndTime: p.EstimatedEndTime,
		Note:             deref(p.Note),
		Review:           deref(p.Review),
	}
}

// PlanService wraps plan lifecycle operations.
type PlanService struct {
	plans PlanStore
	tasks TaskStore
	clock clock.Clock
}

func NewPlanService(plans PlanStore, tasks TaskStore, c clock.Clock) *PlanService {
	return &PlanService{plans: plans, tasks: tasks, clock: c}
}

func (s *PlanService) Create(ctx context.Context, input PlanInput) (*model.Plan, error) {
	name, err := validatePlanInput(input)
	if err != nil {
		return nil, err
	}
	status := input.Status
	if status == "" {
		status = model.PlanNotStarted
	}
	start := input.StartTime
	if start.IsZero() {
		start = s.clock.StartOfDay(s.clock.Now())
	}

	now := s.clock.Now()
	plan := model.Plan{
		Name:             name,
		Status:           status,
		Priority:         input.Priority,
		IsUrgent:         input.IsUrgent,
		StartTime:        start,
		EstimatedEndTime: input.EstimatedEndTime,
		Note:             optional(input.Note),
		Review:           optional(input.Review),
		CreatedAt:        now,
		ModifiedAt:       now,
	}
	if status == model.PlanFinished {
		plan.EndTime = &now
	}
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgs, err)
	}
	if err := s.plans.Create(ctx, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// Update replaces the editable fields of a plan and re-checks its dates. A
// zero StartTime keeps the current start.
func (s *PlanService) Update(ctx context.Context, id uuid.UUID, input PlanInput) (*model.Plan, error) {
	name, err := validatePlanInput(input)
	if err != nil {
		return nil, err
	}
	plan, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if plan.IsDeleted {
		return nil, fmt.Errorf("plan %s: %w", id, ErrNotFound)
	}

	now := s.clock.Now()
	plan.Name = name
	plan.Priority = input.Priority
	plan.IsUrgent = input.IsUrgent
	if !input.StartTime.IsZero() {
		plan.StartTime = input.StartTime
	}
	plan.EstimatedEndTime = input.EstimatedEndTime
	plan.Note = optional(input.Note)
	plan.Review = optional(input.Review)
	if input.Status != "" && input.Status != plan.Status {
		plan.SetStatus(input.Status, now)
	}
	plan.ModifiedAt = now
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgs, err)
	}
	if err := s.plans.Save(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// List returns plans that are not soft-deleted, ordered by start.
func (s *PlanService) List(ctx context.Context) ([]model.Plan, error) {
	return s.plans.ListActive(ctx)
}

func (s *PlanService) Get(ctx context.Context, id uuid.UUID) (*model.Plan, error) {
	plan, err := s.plans.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("plan %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return plan, nil
}

// Finish closes the plan and records its actual end.
func (s *PlanService) Finish(ctx context.Context, id uuid.UUID) (*model.Plan, error) {
	return s.update(ctx, id, func(p *model.Plan, now time.Time) {
		p.Status = model.PlanFinished
		p.EndTime = &now
		p.ModifiedAt = now
	})
}

// Abandon stops the plan from producing daily tasks.
func (s *PlanService) Abandon(ctx context.Context, id uuid.UUID) (*model.Plan, error) {
	return s.update(ctx, id, func(p *model.Plan, now time.Time) {
		p.Status = model.PlanAbandoned
		p.ModifiedAt = now
	})
}

func (s *PlanService) ToggleFinished(ctx context.Context, id uuid.UUID) (*model.Plan, error) {
	return s.update(ctx, id, func(p *model.Plan, now time.Time) {
		p.ToggleFinished(now)
	})
}

// Delete soft-deletes the plan. Its tasks stay in the store but are no
// longer shown.
func (s *PlanService) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.update(ctx, id, func(p *model.Plan, now time.Time) {
		p.SoftDelete(now)
	})
	return err
}

// AddTodayTask creates "<plan> Task" for today. When the plan already has a
// task today that task is returned and created is false.
func (s *PlanService) AddTodayTask(ctx context.Context, id uuid.UUID) (task *model.Task, created bool, err error) {
	plan, err := s.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if plan.IsDeleted {
		return nil, false, fmt.Errorf("plan %s: %w", id, ErrNotFound)
	}

	now := s.clock.Now()
	day := s.clock.StartOfDay(now)
	existing, err := s.tasks.ListByPlanBetween(ctx, plan.ID, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, false, err
	}
	if len(existing) > 0 {
		return &existing[0], false, nil
	}

	planID := plan.ID
	task = &model.Task{
		Name:       plan.Name + " Task",
		Date:       day,
		Priority:   plan.EffectivePriority(),
		IsUrgent:   plan.IsUrgent,
		PlanID:     &planID,
		CreatedAt:  now,
		ModifiedAt: now,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, false, err
	}
	return task, true, nil
}

func validatePlanInput(input PlanInput) (string, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidArgs)
	}
	if input.Status != "" && !input.Status.Valid() {
		return "", fmt.Errorf("%w: status %q", ErrInvalidArgs, input.Status)
	}
	if input.Priority != nil && *input.Priority != model.PriorityNormal && *input.Priority != model.PriorityHigh {
		return "", fmt.Errorf("%w: priority %q", ErrInvalidArgs, *input.Priority)
	}
	return name, nil
}

func (s *PlanService) update(ctx context.Context, id uuid.UUID, fn func(*model.Plan, time.Time)) (*model.Plan, error) {
	plan, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if plan.IsDeleted {
		return nil, fmt.Errorf("plan %s: %w", id, ErrNotFound)
	}
	fn(plan, s.clock.Now())
	if err := s.plans.Save(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}
