package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/clock"
	"taskflow/internal/model"
)

func day(d, h int) time.Time {
	return time.Date(2025, 7, d, h, 0, 0, 0, time.UTC)
}

func TestSummarize_Pomodoros(t *testing.T) {
	r := Range{Start: day(14, 0), End: day(14, 20)}
	sessions := []model.PomodoroSession{
		{Status: model.PomodoroFinished, EndDate: ptr(day(14, 10))},
		{Status: model.PomodoroAbandoned, EndDate: ptr(day(13, 10))},
		{Status: model.PomodoroAbandoned, EndDate: nil},
		{Status: model.PomodoroFinished, EndDate: ptr(day(14, 21))},
	}

	m := Summarize(r, sessions, nil, nil, nil)
	assert.Equal(t, 1, m.FinishedPomodoros)
	assert.Equal(t, 0, m.AbandonedPomodoros)
}

func TestSummarize_BoundsAreInclusive(t *testing.T) {
	r := Range{Start: day(14, 0), End: day(14, 20)}
	sessions := []model.PomodoroSession{
		{Status: model.PomodoroFinished, EndDate: ptr(day(14, 0))},
		{Status: model.PomodoroFinished, EndDate: ptr(day(14, 20))},
	}
	assert.Equal(t, 2, Summarize(r, sessions, nil, nil, nil).FinishedPomodoros)
}

func TestSummarize_TasksAndPlans(t *testing.T) {
	r := Range{Start: day(14, 0), End: day(16, 12)}
	tasks := []model.Task{
		{Date: day(14, 0), IsFinished: true},
		{Date: day(15, 0), IsFinished: false},
		{Date: day(20, 0), IsFinished: true},
	}
	plans := []model.Plan{
		{Status: model.PlanFinished, StartTime: day(1, 0), EndTime: ptr(day(15, 9))},
		{Status: model.PlanFinished, StartTime: day(1, 0), EndTime: nil},
		{Status: model.PlanInProgress, StartTime: day(1, 0), EstimatedEndTime: ptr(day(10, 0))},
		{Status: model.PlanDelayed, StartTime: day(1, 0), EstimatedEndTime: ptr(day(30, 0))},
		{Status: model.PlanInProgress, StartTime: day(1, 0)},
	}

	m := Summarize(r, nil, tasks, plans, nil)
	assert.Equal(t, 1, m.FinishedTasks)
	assert.Equal(t, 1, m.PendingTasks)
	assert.Equal(t, 1, m.FinishedPlans)
	assert.Equal(t, 1, m.OverduePlans)
}

func TestSummarize_ReviewCompleteness(t *testing.T) {
	r := Range{Start: day(14, 0), End: day(16, 18)}
	tasks := []model.Task{
		{Date: day(14, 0)},
		{Date: day(16, 0)},
	}
	reviews := []model.Review{
		{Date: day(14, 0), Content: "   "},
		{Date: day(15, 0), Content: "quiet day"},
	}

	m := Summarize(r, nil, tasks, nil, reviews)
	assert.Equal(t, 0, m.ReviewsWritten)
	assert.Equal(t, 2, m.ReviewsMissing)
}

func TestSummarize_ReviewCompletenessCountsPlanDueDays(t *testing.T) {
	r := Range{Start: day(14, 0), End: day(16, 18)}
	plans := []model.Plan{
		{Status: model.PlanInProgress, StartTime: day(1, 0), EstimatedEndTime: ptr(day(15, 0))},
		{Status: model.PlanInProgress, StartTime: day(16, 8)},
	}
	reviews := []model.Review{{Date: day(15, 0), Content: "shipped"}}

	m := Summarize(r, nil, nil, plans, reviews)
	assert.Equal(t, 1, m.ReviewsWritten)
	assert.Equal(t, 1, m.ReviewsMissing)
}

func TestRangeKind_Bounds(t *testing.T) {
	// Thursday.
	at := time.Date(2025, 7, 17, 15, 4, 5, 0, time.UTC)

	today := RangeToday.Bounds(at, time.Sunday, nil)
	assert.Equal(t, time.Date(2025, 7, 17, 0, 0, 0, 0, time.UTC), today.Start)
	assert.Equal(t, at, today.End)

	week := RangeWeek.Bounds(at, time.Sunday, nil)
	assert.Equal(t, time.Date(2025, 7, 13, 0, 0, 0, 0, time.UTC), week.Start)

	monday := RangeWeek.Bounds(at, time.Monday, nil)
	assert.Equal(t, time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC), monday.Start)

	month := RangeMonth.Bounds(at, time.Sunday, nil)
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), month.Start)

	year := RangeYear.Bounds(at, time.Sunday, nil)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), year.Start)

	total := RangeTotal.Bounds(at, time.Sunday, nil)
	assert.Equal(t, at.AddDate(-1, 0, 0), total.Start)

	earliest := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	total = RangeTotal.Bounds(at, time.Sunday, &earliest)
	assert.Equal(t, earliest, total.Start)
}

func TestEarliestDate(t *testing.T) {
	assert.Nil(t, EarliestDate(nil, nil, nil, time.UTC))

	got := EarliestDate(
		[]model.Task{{Date: day(10, 0)}},
		[]model.Plan{{StartTime: day(3, 17)}},
		[]model.Review{{Date: day(5, 0)}},
		time.UTC,
	)
	require.NotNil(t, got)
	assert.Equal(t, day(3, 0), *got)
}

func TestParseRangeKind(t *testing.T) {
	k, err := ParseRangeKind("Week")
	require.NoError(t, err)
	assert.Equal(t, RangeWeek, k)

	k, err = ParseRangeKind("")
	require.NoError(t, err)
	assert.Equal(t, RangeToday, k)

	_, err = ParseRangeKind("decade")
	assert.ErrorIs(t, err, ErrInvalidArgs)
}

func TestSummaryService_CountsDeletedPlans(t *testing.T) {
	ctx := context.Background()
	c := clock.NewManual(day(14, 18))
	plans := &memPlans{}
	require.NoError(t, plans.Create(ctx, &model.Plan{
		Name: "old", Status: model.PlanInProgress, StartTime: day(1, 0), EstimatedEndTime: ptr(day(10, 0)),
	}))
	require.NoError(t, plans.Create(ctx, &model.Plan{
		Name: "gone", Status: model.PlanInProgress, StartTime: day(1, 0), EstimatedEndTime: ptr(day(10, 0)), IsDeleted: true,
	}))
	require.NoError(t, plans.Create(ctx, &model.Plan{
		Name: "shipped", Status: model.PlanFinished, StartTime: day(1, 0), EndTime: ptr(day(14, 9)), IsDeleted: true,
	}))
	sessions := &memSessions{}
	require.NoError(t, sessions.Create(ctx, &model.PomodoroSession{Status: model.PomodoroFinished, EndDate: ptr(day(14, 9))}))

	svc := NewSummaryService(sessions, &memTasks{}, plans, &memReviews{}, c, time.Sunday)
	r, m, err := svc.Summary(ctx, RangeToday)
	require.NoError(t, err)
	assert.Equal(t, day(14, 0), r.Start)
	assert.Equal(t, 1, m.FinishedPomodoros)
	assert.Equal(t, 2, m.OverduePlans)
	assert.Equal(t, 1, m.FinishedPlans)
}

func TestSummaryService_TotalStartsAtEarliestRecord(t *testing.T) {
	ctx := context.Background()
	c := clock.NewManual(day(14, 18))
	tasks := &memTasks{}
	require.NoError(t, tasks.Create(ctx, &model.Task{Name: "x", Date: day(2, 0)}))

	svc := NewSummaryService(&memSessions{}, tasks, &memPlans{}, &memReviews{}, c, time.Sunday)
	r, m, err := svc.Summary(ctx, RangeTotal)
	require.NoError(t, err)
	assert.Equal(t, day(2, 0), r.Start)
	assert.Equal(t, 1, m.PendingTasks)
}
