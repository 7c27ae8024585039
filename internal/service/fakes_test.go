package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskflow/internal/model"
)

var errStore = errors.New("store unavailable")

type memPlans struct {
	mu    sync.Mutex
	items []model.Plan
}

func (m *memPlans) Create(_ context.Context, plan *model.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if plan.ID == uuid.Nil {
		plan.ID = uuid.New()
	}
	if plan.Status == "" {
		plan.Status = model.PlanNotStarted
	}
	m.items = append(m.items, *plan)
	return nil
}

func (m *memPlans) Save(_ context.Context, plan *model.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == plan.ID {
			m.items[i] = *plan
			return nil
		}
	}
	m.items = append(m.items, *plan)
	return nil
}

func (m *memPlans) FindByID(_ context.Context, id uuid.UUID) (*model.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.items {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("find plan: %w", gorm.ErrRecordNotFound)
}

func (m *memPlans) ListAll(_ context.Context) ([]model.Plan, error) {
	return m.filter(func(model.Plan) bool { return true }), nil
}

func (m *memPlans) ListActive(_ context.Context) ([]model.Plan, error) {
	return m.filter(func(p model.Plan) bool { return !p.IsDeleted }), nil
}

func (m *memPlans) ListOpen(_ context.Context) ([]model.Plan, error) {
	return m.filter(func(p model.Plan) bool { return p.Status.Open() }), nil
}

func (m *memPlans) filter(keep func(model.Plan) bool) []model.Plan {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Plan
	for _, p := range m.items {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out
}

type memTasks struct {
	mu      sync.Mutex
	items   []model.Task
	creates int
	// failAt makes the n-th Create (1-based) fail; zero disables it.
	failAt int
}

func (m *memTasks) Create(_ context.Context, task *model.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	if m.failAt > 0 && m.creates == m.failAt {
		return fmt.Errorf("create task: %w", errStore)
	}
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	if task.Priority == "" {
		task.Priority = model.PriorityNormal
	}
	m.items = append(m.items, *task)
	return nil
}

func (m *memTasks) Save(_ context.Context, task *model.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == task.ID {
			m.items[i] = *task
			return nil
		}
	}
	m.items = append(m.items, *task)
	return nil
}

func (m *memTasks) FindByID(_ context.Context, id uuid.UUID) (*model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.items {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("find task: %w", gorm.ErrRecordNotFound)
}

func (m *memTasks) ListBetween(_ context.Context, from, to time.Time) ([]model.Task, error) {
	return m.filter(func(t model.Task) bool { return !t.Date.Before(from) && t.Date.Before(to) }), nil
}

func (m *memTasks) ListByPlanBetween(_ context.Context, planID uuid.UUID, from, to time.Time) ([]model.Task, error) {
	return m.filter(func(t model.Task) bool {
		return t.PlanID != nil && *t.PlanID == planID && !t.Date.Before(from) && t.Date.Before(to)
	}), nil
}

func (m *memTasks) ListAll(_ context.Context) ([]model.Task, error) {
	return m.filter(func(model.Task) bool { return true }), nil
}

func (m *memTasks) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *memTasks) filter(keep func(model.Task) bool) []model.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Task
	for _, t := range m.items {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

type memSessions struct {
	items []model.PomodoroSession
}

func (m *memSessions) Create(_ context.Context, s *model.PomodoroSession) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	m.items = append(m.items, *s)
	return nil
}

func (m *memSessions) ListAll(_ context.Context) ([]model.PomodoroSession, error) {
	return m.items, nil
}

type memReviews struct {
	items []model.Review
}

func (m *memReviews) Create(_ context.Context, r *model.Review) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	m.items = append(m.items, *r)
	return nil
}

func (m *memReviews) Save(_ context.Context, r *model.Review) error {
	for i := range m.items {
		if m.items[i].ID == r.ID {
			m.items[i] = *r
			return nil
		}
	}
	m.items = append(m.items, *r)
	return nil
}

func (m *memReviews) FindBetween(_ context.Context, from, to time.Time) (*model.Review, error) {
	for _, r := range m.items {
		if !r.Date.Before(from) && r.Date.Before(to) {
			return &r, nil
		}
	}
	return nil, fmt.Errorf("find review: %w", gorm.ErrRecordNotFound)
}

func (m *memReviews) ListAll(_ context.Context) ([]model.Review, error) {
	return m.items, nil
}

type memSettings struct {
	current *model.Settings
	creates int
	saves   int
}

func (m *memSettings) First(_ context.Context) (*model.Settings, error) {
	if m.current == nil {
		return nil, fmt.Errorf("find settings: %w", gorm.ErrRecordNotFound)
	}
	s := *m.current
	return &s, nil
}

func (m *memSettings) Create(_ context.Context, s *model.Settings) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	m.creates++
	cp := *s
	m.current = &cp
	return nil
}

func (m *memSettings) Save(_ context.Context, s *model.Settings) error {
	m.saves++
	cp := *s
	m.current = &cp
	return nil
}

type memMarkers struct {
	items []model.DayMarker
}

func (m *memMarkers) Generated(_ context.Context, from, to time.Time) (bool, error) {
	for _, mk := range m.items {
		if mk.CreatedTaskForToday && !mk.Date.Before(from) && mk.Date.Before(to) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memMarkers) Create(_ context.Context, mk *model.DayMarker) error {
	m.items = append(m.items, *mk)
	return nil
}

func ptr[T any](v T) *T {
	return &v
}
