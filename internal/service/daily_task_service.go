package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"taskflow/internal/clock"
	"taskflow/internal/model"
)

// DailyTaskService materialises one task per open plan, once per day.
type DailyTaskService struct {
	plans   PlanStore
	tasks   TaskStore
	markers DayMarkerStore
	clock   clock.Clock
	log     *zap.Logger
}

func NewDailyTaskService(plans PlanStore, tasks TaskStore, markers DayMarkerStore, c clock.Clock, log *zap.Logger) *DailyTaskService {
	return &DailyTaskService{plans: plans, tasks: tasks, markers: markers, clock: c, log: log.Named("daily")}
}

// EnsureTodayTasks creates today's tasks unless a day marker for today
// already exists. The marker is written only after every task was created,
// so a failed run is retried on the next call. Tasks created by a previous
// partial run are not deduplicated.
func (s *DailyTaskService) EnsureTodayTasks(ctx context.Context, today time.Time) (int, error) {
	day := s.clock.StartOfDay(today)
	next := day.AddDate(0, 0, 1)

	done, err := s.markers.Generated(ctx, day, next)
	if err != nil {
		return 0, err
	}
	if done {
		return 0, nil
	}

	plans, err := s.plans.ListOpen(ctx)
	if err != nil {
		return 0, err
	}

	now := s.clock.Now()
	created := 0
	for _, plan := range plans {
		if !plan.Status.Open() {
			continue
		}
		planID := plan.ID
		task := model.Task{
			Name:       plan.Name,
			Date:       day,
			Priority:   plan.EffectivePriority(),
			IsUrgent:   plan.IsUrgent,
			PlanID:     &planID,
			CreatedAt:  now,
			ModifiedAt: now,
		}
		if err := s.tasks.Create(ctx, &task); err != nil {
			return created, fmt.Errorf("generate task for plan %s: %w", plan.ID, err)
		}
		created++
	}

	if err := s.markers.Create(ctx, &model.DayMarker{Date: day, CreatedTaskForToday: true, CreatedAt: now}); err != nil {
		return created, err
	}

	s.log.Info("daily tasks generated", zap.Time("day", day), zap.Int("created", created))
	return created, nil
}
