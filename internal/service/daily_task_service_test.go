package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskflow/internal/clock"
	"taskflow/internal/model"
)

type generatorFixture struct {
	clock   *clock.Manual
	plans   *memPlans
	tasks   *memTasks
	markers *memMarkers
	svc     *DailyTaskService
}

func newGeneratorFixture() *generatorFixture {
	f := &generatorFixture{
		clock:   clock.NewManual(time.Date(2025, 7, 14, 9, 30, 0, 0, time.UTC)),
		plans:   &memPlans{},
		tasks:   &memTasks{},
		markers: &memMarkers{},
	}
	f.svc = NewDailyTaskService(f.plans, f.tasks, f.markers, f.clock, zap.NewNop())
	return f
}

func (f *generatorFixture) addPlan(t *testing.T, plan model.Plan) model.Plan {
	t.Helper()
	require.NoError(t, f.plans.Create(context.Background(), &plan))
	return plan
}

func TestEnsureTodayTasks_CreatesOneTaskPerOpenPlan(t *testing.T) {
	f := newGeneratorFixture()
	ctx := context.Background()

	high := model.PriorityHigh
	reading := f.addPlan(t, model.Plan{Name: "Reading", Status: model.PlanInProgress, Priority: &high, IsUrgent: true})
	f.addPlan(t, model.Plan{Name: "Gym", Status: model.PlanDelayed})
	f.addPlan(t, model.Plan{Name: "Done", Status: model.PlanFinished})
	f.addPlan(t, model.Plan{Name: "Dropped", Status: model.PlanAbandoned})

	created, err := f.svc.EnsureTodayTasks(ctx, f.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	tasks, _ := f.tasks.ListAll(ctx)
	require.Len(t, tasks, 2)
	day := time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC)
	byName := map[string]model.Task{}
	for _, task := range tasks {
		assert.Equal(t, day, task.Date)
		byName[task.Name] = task
	}

	r := byName["Reading"]
	assert.Equal(t, model.PriorityHigh, r.Priority)
	assert.True(t, r.IsUrgent)
	require.NotNil(t, r.PlanID)
	assert.Equal(t, reading.ID, *r.PlanID)

	gym := byName["Gym"]
	assert.Equal(t, model.PriorityNormal, gym.Priority)
	assert.False(t, gym.IsUrgent)

	require.Len(t, f.markers.items, 1)
	assert.Equal(t, day, f.markers.items[0].Date)
	assert.True(t, f.markers.items[0].CreatedTaskForToday)
}

func TestEnsureTodayTasks_Idempotent(t *testing.T) {
	f := newGeneratorFixture()
	ctx := context.Background()
	f.addPlan(t, model.Plan{Name: "Reading", Status: model.PlanInProgress})

	_, err := f.svc.EnsureTodayTasks(ctx, f.clock.Now())
	require.NoError(t, err)

	f.clock.Advance(3 * time.Hour)
	created, err := f.svc.EnsureTodayTasks(ctx, f.clock.Now())
	require.NoError(t, err)
	assert.Zero(t, created)

	tasks, _ := f.tasks.ListAll(ctx)
	assert.Len(t, tasks, 1)
	assert.Len(t, f.markers.items, 1)
}

func TestEnsureTodayTasks_NextDayGeneratesAgain(t *testing.T) {
	f := newGeneratorFixture()
	ctx := context.Background()
	f.addPlan(t, model.Plan{Name: "Reading", Status: model.PlanInProgress})

	_, err := f.svc.EnsureTodayTasks(ctx, f.clock.Now())
	require.NoError(t, err)

	f.clock.Advance(24 * time.Hour)
	created, err := f.svc.EnsureTodayTasks(ctx, f.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	assert.Len(t, f.markers.items, 2)
}

func TestEnsureTodayTasks_NoPlansStillMarksDay(t *testing.T) {
	f := newGeneratorFixture()

	created, err := f.svc.EnsureTodayTasks(context.Background(), f.clock.Now())
	require.NoError(t, err)
	assert.Zero(t, created)
	assert.Len(t, f.markers.items, 1)
}

func TestEnsureTodayTasks_FailureLeavesDayUnmarked(t *testing.T) {
	f := newGeneratorFixture()
	ctx := context.Background()
	f.addPlan(t, model.Plan{Name: "A", Status: model.PlanInProgress})
	f.addPlan(t, model.Plan{Name: "B", Status: model.PlanInProgress})
	f.tasks.failAt = 2

	_, err := f.svc.EnsureTodayTasks(ctx, f.clock.Now())
	require.Error(t, err)
	assert.ErrorIs(t, err, errStore)
	assert.Empty(t, f.markers.items)

	// The retry is not deduplicated against the partial run.
	f.tasks.failAt = 0
	created, err := f.svc.EnsureTodayTasks(ctx, f.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, created)
	tasks, _ := f.tasks.ListAll(ctx)
	assert.Len(t, tasks, 3)
}

func TestEnsureTodayTasks_ManualTasksNotDeduplicated(t *testing.T) {
	f := newGeneratorFixture()
	ctx := context.Background()
	plan := f.addPlan(t, model.Plan{Name: "Reading", Status: model.PlanInProgress})
	planID := plan.ID
	require.NoError(t, f.tasks.Create(ctx, &model.Task{
		Name:   "Reading Task",
		Date:   f.clock.StartOfDay(f.clock.Now()),
		PlanID: &planID,
	}))

	created, err := f.svc.EnsureTodayTasks(ctx, f.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, created)
}
