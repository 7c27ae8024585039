package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"taskflow/internal/model"
)

// PlanStore is the record store view over plans.
type PlanStore interface {
	Create(ctx context.Context, plan *model.Plan) error
	Save(ctx context.Context, plan *model.Plan) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Plan, error)
	ListAll(ctx context.Context) ([]model.Plan, error)
	ListActive(ctx context.Context) ([]model.Plan, error)
	ListOpen(ctx context.Context) ([]model.Plan, error)
}

// TaskStore is the record store view over tasks.
type TaskStore interface {
	Create(ctx context.Context, task *model.Task) error
	Save(ctx context.Context, task *model.Task) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]model.Task, error)
	ListByPlanBetween(ctx context.Context, planID uuid.UUID, from, to time.Time) ([]model.Task, error)
	ListAll(ctx context.Context) ([]model.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type PomodoroStore interface {
	Create(ctx context.Context, session *model.PomodoroSession) error
	ListAll(ctx context.Context) ([]model.PomodoroSession, error)
}

type ReviewStore interface {
	Create(ctx context.Context, review *model.Review) error
	Save(ctx context.Context, review *model.Review) error
	FindBetween(ctx context.Context, from, to time.Time) (*model.Review, error)
	ListAll(ctx context.Context) ([]model.Review, error)
}

type SettingsStore interface {
	First(ctx context.Context) (*model.Settings, error)
	Create(ctx context.Context, settings *model.Settings) error
	Save(ctx context.Context, settings *model.Settings) error
}

type DayMarkerStore interface {
	Generated(ctx context.Context, from, to time.Time) (bool, error)
	Create(ctx context.Context, marker *model.DayMarker) error
}

// NotificationScheduler runs a job every day at a time of day. Scheduling
// an id that already exists replaces it.
type NotificationScheduler interface {
	ScheduleDaily(id, timeOfDay string, job func()) error
	Cancel(id string)
}

// Notifier delivers a reminder text to the user.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}
