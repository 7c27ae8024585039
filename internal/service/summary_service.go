package service

import (
	"context"
	"time"

	"taskflow/internal/clock"
)

// SummaryService loads records and aggregates them for the dashboard.
type SummaryService struct {
	sessions  PomodoroStore
	tasks     TaskStore
	plans     PlanStore
	reviews   ReviewStore
	clock     clock.Clock
	weekStart time.Weekday
}

func NewSummaryService(sessions PomodoroStore, tasks TaskStore, plans PlanStore, reviews ReviewStore, c clock.Clock, weekStart time.Weekday) *SummaryService {
	return &SummaryService{
		sessions:  sessions,
		tasks:     tasks,
		plans:     plans,
		reviews:   reviews,
		clock:     c,
		weekStart: weekStart,
	}
}

// Summary computes the metrics for one of the fixed ranges. Every stored plan
// is counted, soft-deleted ones included.
func (s *SummaryService) Summary(ctx context.Context, kind RangeKind) (Range, Metrics, error) {
	sessions, err := s.sessions.ListAll(ctx)
	if err != nil {
		return Range{}, Metrics{}, err
	}
	tasks, err := s.tasks.ListAll(ctx)
	if err != nil {
		return Range{}, Metrics{}, err
	}
	plans, err := s.plans.ListAll(ctx)
	if err != nil {
		return Range{}, Metrics{}, err
	}
	reviews, err := s.reviews.ListAll(ctx)
	if err != nil {
		return Range{}, Metrics{}, err
	}

	t := s.clock.Now()
	var earliest *time.Time
	if kind == RangeTotal {
		earliest = EarliestDate(tasks, plans, reviews, t.Location())
	}
	r := kind.Bounds(t, s.weekStart, earliest)
	return r, Summarize(r, sessions, tasks, plans, reviews), nil
}
