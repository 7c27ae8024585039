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

// TaskInput represents the editable fields of a task. PlanID is only read on
// create.
type TaskInput struct {
	Name             string
	Date             time.Time
	Priority         model.Priority
	IsUrgent         bool
	Tag              string
	Note             string
	Review           string
	Location         string
	NotificationTime *time.Time
	PlanID           *uuid.UUID
}

// TaskInputOf returns the current values of t, ready to be edited and passed
// to Update.
func TaskInputOf(t model.Task) TaskInput {
	return TaskInput{
		Name:             t.Name,
		Date:             t.Date,
		Priority:         t.Priority,
		IsUrgent:         t.IsUrgent,
		Tag:              deref(t.Tag),
		Note:             deref(t.Note),
		Review:           deref(t.Review),
		Location:         deref(t.Location),
		NotificationTime: t.NotificationTime,
		PlanID:           t.PlanID,
	}
}

// TaskService wraps task-related business logic.
type TaskService struct {
	tasks TaskStore
	plans PlanStore
	clock clock.Clock
}

func NewTaskService(tasks TaskStore, plans PlanStore, c clock.Clock) *TaskService {
	return &TaskService{tasks: tasks, plans: plans, clock: c}
}

func (s *TaskService) Create(ctx context.Context, input TaskInput) (*model.Task, error) {
	name, priority, err := validateTaskInput(input)
	if err != nil {
		return nil, err
	}
	date := input.Date
	if date.IsZero() {
		date = s.clock.Now()
	}

	now := s.clock.Now()
	task := model.Task{
		Name:             name,
		Date:             s.clock.StartOfDay(date),
		Priority:         priority,
		IsUrgent:         input.IsUrgent,
		Tag:              optional(input.Tag),
		Note:             optional(input.Note),
		Review:           optional(input.Review),
		Location:         optional(input.Location),
		NotificationTime: input.NotificationTime,
		PlanID:           input.PlanID,
		CreatedAt:        now,
		ModifiedAt:       now,
	}
	if err := s.tasks.Create(ctx, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Update replaces the editable fields of a task. A zero Date keeps the
// current day.
func (s *TaskService) Update(ctx context.Context, id uuid.UUID, input TaskInput) (*model.Task, error) {
	name, priority, err := validateTaskInput(input)
	if err != nil {
		return nil, err
	}
	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	task.Name = name
	if !input.Date.IsZero() {
		task.Date = s.clock.StartOfDay(input.Date)
	}
	task.Priority = priority
	task.IsUrgent = input.IsUrgent
	task.Tag = optional(input.Tag)
	task.Note = optional(input.Note)
	task.Review = optional(input.Review)
	task.Location = optional(input.Location)
	task.NotificationTime = input.NotificationTime
	task.ModifiedAt = s.clock.Now()
	if err := s.tasks.Save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Today returns today's tasks that are still valid.
func (s *TaskService) Today(ctx context.Context) ([]model.Task, error) {
	return todayTasks(ctx, s.tasks, s.plans, s.clock)
}

func (s *TaskService) Get(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return task, nil
}

func (s *TaskService) ToggleFinished(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	task.ToggleFinished(s.clock.Now())
	if err := s.tasks.Save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.tasks.Delete(ctx, id)
}

// todayTasks drops tasks whose plan has been soft-deleted.
func todayTasks(ctx context.Context, tasks TaskStore, plans PlanStore, c clock.Clock) ([]model.Task, error) {
	day := c.StartOfDay(c.Now())
	list, err := tasks.ListBetween(ctx, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	cache := make(map[uuid.UUID]*model.Plan)
	valid := make([]model.Task, 0, len(list))
	for _, task := range list {
		var plan *model.Plan
		if task.PlanID != nil {
			p, ok := cache[*task.PlanID]
			if !ok {
				p, err = plans.FindByID(ctx, *task.PlanID)
				if err != nil && !isNotFound(err) {
					return nil, err
				}
				cache[*task.PlanID] = p
			}
			plan = p
		}
		if task.IsValid(plan) {
			valid = append(valid, task)
		}
	}
	return valid, nil
}

func validateTaskInput(input TaskInput) (string, model.Priority, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return "", "", fmt.Errorf("%w: name is required", ErrInvalidArgs)
	}
	priority := input.Priority
	if priority == "" {
		priority = model.PriorityNormal
	}
	if priority != model.PriorityNormal && priority != model.PriorityHigh {
		return "", "", fmt.Errorf("%w: priority %q", ErrInvalidArgs, priority)
	}
	return name, priority, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
