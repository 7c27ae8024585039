package service

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// SchedulerService wraps cron-based jobs keyed by a stable id.
type SchedulerService struct {
	cron *cron.Cron

	mu      sync.Mutex
	entries map[string]cron.EntryID
}

func NewSchedulerService(loc *time.Location) *SchedulerService {
	if loc == nil {
		loc = time.Local
	}
	return &SchedulerService{
		cron:    cron.New(cron.WithLocation(loc), cron.WithSeconds()),
		entries: make(map[string]cron.EntryID),
	}
}

// ScheduleDaily registers a daily job at the given HH:MM time string,
// replacing any job already registered under id.
func (s *SchedulerService) ScheduleDaily(id, timeStr string, job func()) error {
	spec, err := buildDailySpec(timeStr)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.entries[id]; ok {
		s.cron.Remove(old)
		delete(s.entries, id)
	}
	entry, err := s.cron.AddFunc(spec, job)
	if err != nil {
		return fmt.Errorf("schedule %s: %w", id, err)
	}
	s.entries[id] = entry
	return nil
}

// Cancel removes the job registered under id, if any.
func (s *SchedulerService) Cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.entries[id]; ok {
		s.cron.Remove(entry)
		delete(s.entries, id)
	}
}

func (s *SchedulerService) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[id]
	return ok
}

// Next returns the next run time of the job registered under id. It is
// only known once the scheduler has been started.
func (s *SchedulerService) Next(id string) (time.Time, bool) {
	s.mu.Lock()
	entry, ok := s.entries[id]
	s.mu.Unlock()
	if !ok {
		return time.Time{}, false
	}
	return s.cron.Entry(entry).Next, true
}

func (s *SchedulerService) Start() {
	s.cron.Start()
}

func (s *SchedulerService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func buildDailySpec(timeStr string) (string, error) {
	parts := strings.Split(strings.TrimSpace(timeStr), ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid time %q, expected HH:MM", timeStr)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour in %q", timeStr)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute in %q", timeStr)
	}
	// cron format: second minute hour dom month dow
	return fmt.Sprintf("0 %d %d * * *", minute, hour), nil
}
