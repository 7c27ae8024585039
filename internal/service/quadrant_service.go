package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"taskflow/internal/clock"
	"taskflow/internal/model"
)

// Quadrants holds a day's tasks partitioned by urgency and priority.
type Quadrants map[model.Quadrant][]model.Task

// Classify partitions tasks into the four disjoint quadrants.
func Classify(tasks []model.Task) Quadrants {
	q := make(Quadrants, len(model.Quadrants))
	for _, t := range tasks {
		k := t.Quadrant()
		q[k] = append(q[k], t)
	}
	return q
}

// QuadrantService moves tasks between quadrants.
type QuadrantService struct {
	tasks TaskStore
	plans PlanStore
	clock clock.Clock
}

func NewQuadrantService(tasks TaskStore, plans PlanStore, c clock.Clock) *QuadrantService {
	return &QuadrantService{tasks: tasks, plans: plans, clock: c}
}

// Today classifies today's valid tasks.
func (s *QuadrantService) Today(ctx context.Context) (Quadrants, error) {
	tasks, err := todayTasks(ctx, s.tasks, s.plans, s.clock)
	if err != nil {
		return nil, err
	}
	return Classify(tasks), nil
}

// Reclassify sets the task's priority and urgency to the pair of the target
// quadrant and bumps its modified time. No other field changes.
func (s *QuadrantService) Reclassify(ctx context.Context, taskID uuid.UUID, target model.Quadrant) (*model.Task, error) {
	if !target.Valid() {
		return nil, fmt.Errorf("%w: quadrant %d", ErrInvalidArgs, int(target))
	}

	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("task %s: %w", taskID, ErrNotFound)
		}
		return nil, err
	}

	task.Priority, task.IsUrgent = target.Attributes()
	task.ModifiedAt = s.clock.Now()
	if err := s.tasks.Save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}
