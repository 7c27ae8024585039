package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"taskflow/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := NewDB(filepath.Join(t.TempDir(), "data", "taskflow.db"), zap.NewNop())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

var day = time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC)

func TestPlanRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewPlanRepository(newTestDB(t))

	high := model.PriorityHigh
	active := &model.Plan{Name: "Write thesis", Status: model.PlanInProgress, Priority: &high, StartTime: day}
	finished := &model.Plan{Name: "Sprint 1", Status: model.PlanFinished, StartTime: day.AddDate(0, 0, -7)}
	deleted := &model.Plan{Name: "Old idea", Status: model.PlanDelayed, StartTime: day.AddDate(0, 0, -3), IsDeleted: true}

	for _, p := range []*model.Plan{active, finished, deleted} {
		require.NoError(t, repo.Create(ctx, p))
		assert.NotEqual(t, uuid.Nil, p.ID)
	}

	got, err := repo.FindByID(ctx, active.ID)
	require.NoError(t, err)
	assert.Equal(t, "Write thesis", got.Name)
	require.NotNil(t, got.Priority)
	assert.Equal(t, model.PriorityHigh, *got.Priority)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, finished.ID, all[0].ID, "ordered by start time")

	listed, err := repo.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	open, err := repo.ListOpen(ctx)
	require.NoError(t, err)
	names := []string{}
	for _, p := range open {
		names = append(names, p.Name)
	}
	assert.ElementsMatch(t, []string{"Write thesis", "Old idea"}, names)

	got.SoftDelete(day)
	require.NoError(t, repo.Save(ctx, got))
	listed, err = repo.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestTaskRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(newTestDB(t))

	planID := uuid.New()
	today := &model.Task{Name: "Read", Date: day, PlanID: &planID}
	tomorrow := &model.Task{Name: "Run", Date: day.AddDate(0, 0, 1), IsUrgent: true}
	require.NoError(t, repo.Create(ctx, today))
	require.NoError(t, repo.Create(ctx, tomorrow))
	assert.Equal(t, model.PriorityNormal, today.Priority)

	listed, err := repo.ListBetween(ctx, day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, today.ID, listed[0].ID)
	require.NotNil(t, listed[0].PlanID)
	assert.Equal(t, planID, *listed[0].PlanID)

	byPlan, err := repo.ListByPlanBetween(ctx, planID, day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Len(t, byPlan, 1)

	today.ToggleFinished(day.Add(time.Hour))
	require.NoError(t, repo.Save(ctx, today))
	got, err := repo.FindByID(ctx, today.ID)
	require.NoError(t, err)
	assert.True(t, got.IsFinished)

	require.NoError(t, repo.Delete(ctx, tomorrow.ID))
	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestPomodoroRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewPomodoroRepository(newTestDB(t))

	end := day.Add(25 * time.Minute)
	minutes := 25
	session := &model.PomodoroSession{
		StartDate:        day,
		EndDate:          &end,
		Status:           model.PomodoroFinished,
		EstimatedMinutes: 25,
		FinishedMinutes:  &minutes,
	}
	require.NoError(t, repo.Create(ctx, session))

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, model.PomodoroFinished, all[0].Status)
	assert.Nil(t, all[0].TaskID)
	require.NotNil(t, all[0].FinishedMinutes)
	assert.Equal(t, 25, *all[0].FinishedMinutes)
}

func TestReviewRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewReviewRepository(newTestDB(t))

	_, err := repo.FindBetween(ctx, day, day.AddDate(0, 0, 1))
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	review := &model.Review{Date: day, Content: "Good focus", Score: 7}
	require.NoError(t, repo.Create(ctx, review))

	review.Score = 8
	require.NoError(t, repo.Save(ctx, review))

	got, err := repo.FindBetween(ctx, day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 8, got.Score)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSettingsRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewSettingsRepository(newTestDB(t))

	_, err := repo.First(ctx)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	settings := model.DefaultSettings()
	require.NoError(t, repo.Create(ctx, &settings))

	settings.WorkMinutes = 50
	require.NoError(t, repo.Save(ctx, &settings))

	got, err := repo.First(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, got.WorkMinutes)
	assert.Equal(t, model.DefaultReviewReminderTime, got.ReviewReminderTime)
}

func TestDayMarkerRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewDayMarkerRepository(newTestDB(t))

	ok, err := repo.Generated(ctx, day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Create(ctx, &model.DayMarker{Date: day, CreatedTaskForToday: true}))

	ok, err = repo.Generated(ctx, day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Generated(ctx, day.AddDate(0, 0, 1), day.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.False(t, ok)
}
