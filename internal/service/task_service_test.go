package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/clock"
	"taskflow/internal/model"
)

func TestTaskService(t *testing.T) {
	ctx := context.Background()
	c := clock.NewManual(time.Date(2025, 7, 14, 9, 0, 0, 0, time.UTC))
	tasks := &memTasks{}
	svc := NewTaskService(tasks, &memPlans{}, c)

	task, err := svc.Create(ctx, TaskInput{Name: "Call the bank", IsUrgent: true, Tag: "errands"})
	require.NoError(t, err)
	assert.Equal(t, c.StartOfDay(c.Now()), task.Date)
	assert.Equal(t, model.PriorityNormal, task.Priority)
	require.NotNil(t, task.Tag)
	assert.Equal(t, "errands", *task.Tag)
	assert.Nil(t, task.Note)

	_, err = svc.Create(ctx, TaskInput{Name: ""})
	assert.ErrorIs(t, err, ErrInvalidArgs)
	_, err = svc.Create(ctx, TaskInput{Name: "x", Priority: "urgent"})
	assert.ErrorIs(t, err, ErrInvalidArgs)

	_, err = svc.Create(ctx, TaskInput{Name: "Tomorrow", Date: c.Now().AddDate(0, 0, 1)})
	require.NoError(t, err)

	today, err := svc.Today(ctx)
	require.NoError(t, err)
	require.Len(t, today, 1)
	assert.Equal(t, task.ID, today[0].ID)

	c.Advance(time.Minute)
	toggled, err := svc.ToggleFinished(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, toggled.IsFinished)
	assert.Equal(t, c.Now(), toggled.ModifiedAt)

	require.NoError(t, svc.Delete(ctx, task.ID))
	_, err = svc.Get(ctx, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, uuid.New()), ErrNotFound)
}

func TestTaskService_Update(t *testing.T) {
	ctx := context.Background()
	c := clock.NewManual(time.Date(2025, 7, 14, 9, 0, 0, 0, time.UTC))
	tasks := &memTasks{}
	svc := NewTaskService(tasks, &memPlans{}, c)

	planID := uuid.New()
	task, err := svc.Create(ctx, TaskInput{Name: "Run", Tag: "health", PlanID: &planID})
	require.NoError(t, err)

	c.Advance(time.Hour)
	remind := time.Date(2025, 7, 14, 18, 30, 0, 0, time.UTC)
	input := TaskInputOf(*task)
	input.Name = "Run 5k"
	input.Priority = model.PriorityHigh
	input.IsUrgent = true
	input.Review = "felt good"
	input.Location = "park"
	input.NotificationTime = &remind
	input.Tag = ""
	input.PlanID = nil

	updated, err := svc.Update(ctx, task.ID, input)
	require.NoError(t, err)
	assert.Equal(t, "Run 5k", updated.Name)
	assert.Equal(t, model.QuadrantUrgentImportant, updated.Quadrant())
	assert.Nil(t, updated.Tag)
	require.NotNil(t, updated.Review)
	assert.Equal(t, "felt good", *updated.Review)
	require.NotNil(t, updated.Location)
	assert.Equal(t, "park", *updated.Location)
	require.NotNil(t, updated.NotificationTime)
	assert.Equal(t, remind, *updated.NotificationTime)
	assert.Equal(t, task.Date, updated.Date)
	assert.Equal(t, &planID, updated.PlanID, "plan link is kept")
	assert.Equal(t, c.Now(), updated.ModifiedAt)

	stored, err := svc.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Run 5k", stored.Name)

	input = TaskInputOf(*updated)
	input.Date = time.Date(2025, 7, 15, 13, 0, 0, 0, time.UTC)
	moved, err := svc.Update(ctx, task.ID, input)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC), moved.Date)

	input.Priority = "urgent"
	_, err = svc.Update(ctx, task.ID, input)
	assert.ErrorIs(t, err, ErrInvalidArgs)
	input = TaskInputOf(*moved)
	input.Name = "  "
	_, err = svc.Update(ctx, task.ID, input)
	assert.ErrorIs(t, err, ErrInvalidArgs)
	_, err = svc.Update(ctx, uuid.New(), TaskInputOf(*moved))
	assert.ErrorIs(t, err, ErrNotFound)
}
