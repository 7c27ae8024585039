package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/jinzhu/now"

	"taskflow/internal/model"
)

// Range is a closed time interval [Start, End].
type Range struct {
	Start time.Time
	End   time.Time
}

func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// RangeKind selects one of the fixed summary windows.
type RangeKind int

const (
	RangeToday RangeKind = iota
	RangeWeek
	RangeMonth
	RangeYear
	RangeTotal
)

var RangeKinds = []RangeKind{RangeToday, RangeWeek, RangeMonth, RangeYear, RangeTotal}

func (k RangeKind) Title() string {
	switch k {
	case RangeToday:
		return "Today"
	case RangeWeek:
		return "This Week"
	case RangeMonth:
		return "This Month"
	case RangeYear:
		return "This Year"
	case RangeTotal:
		return "Total"
	}
	return fmt.Sprintf("Range(%d)", int(k))
}

// ParseRangeKind accepts the short names used by the bot.
func ParseRangeKind(s string) (RangeKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today", "day":
		return RangeToday, nil
	case "week":
		return RangeWeek, nil
	case "month":
		return RangeMonth, nil
	case "year":
		return RangeYear, nil
	case "total", "all":
		return RangeTotal, nil
	}
	return RangeToday, fmt.Errorf("%w: unknown range %q", ErrInvalidArgs, s)
}

// Bounds resolves the window ending at t. earliest is only used by
// RangeTotal; when nil the window starts one year before t.
func (k RangeKind) Bounds(t time.Time, weekStart time.Weekday, earliest *time.Time) Range {
	cal := (&now.Config{WeekStartDay: weekStart, TimeLocation: t.Location()}).With(t)

	switch k {
	case RangeWeek:
		return Range{Start: cal.BeginningOfWeek(), End: t}
	case RangeMonth:
		return Range{Start: cal.BeginningOfMonth(), End: t}
	case RangeYear:
		return Range{Start: cal.BeginningOfYear(), End: t}
	case RangeTotal:
		if earliest == nil {
			return Range{Start: t.AddDate(-1, 0, 0), End: t}
		}
		return Range{Start: *earliest, End: t}
	default:
		return Range{Start: cal.BeginningOfDay(), End: t}
	}
}

// EarliestDate returns the start of the earliest day carrying a review, a
// task or a plan start, or nil when there are no records.
func EarliestDate(tasks []model.Task, plans []model.Plan, reviews []model.Review, loc *time.Location) *time.Time {
	var earliest *time.Time
	consider := func(t time.Time) {
		d := dayStart(t, loc)
		if earliest == nil || d.Before(*earliest) {
			earliest = &d
		}
	}
	for _, r := range reviews {
		consider(r.Date)
	}
	for _, t := range tasks {
		consider(t.Date)
	}
	for _, p := range plans {
		consider(p.StartTime)
	}
	return earliest
}

// Metrics are the dashboard counters for one range.
type Metrics struct {
	FinishedPomodoros  int
	AbandonedPomodoros int
	FinishedTasks      int
	PendingTasks       int
	FinishedPlans      int
	OverduePlans       int
	ReviewsWritten     int
	ReviewsMissing     int
}

// Summarize computes Metrics over r. Days are calendar days in the location
// of r.Start. Missing end dates count as the distant past and missing
// estimated ends as the distant future.
func Summarize(r Range, sessions []model.PomodoroSession, tasks []model.Task, plans []model.Plan, reviews []model.Review) Metrics {
	var m Metrics

	for _, s := range sessions {
		if s.EndDate == nil || !r.Contains(*s.EndDate) {
			continue
		}
		switch s.Status {
		case model.PomodoroFinished:
			m.FinishedPomodoros++
		case model.PomodoroAbandoned:
			m.AbandonedPomodoros++
		}
	}

	for _, t := range tasks {
		if !r.Contains(t.Date) {
			continue
		}
		if t.IsFinished {
			m.FinishedTasks++
		} else {
			m.PendingTasks++
		}
	}

	for _, p := range plans {
		if p.Status == model.PlanFinished {
			if p.EndTime != nil && r.Contains(*p.EndTime) {
				m.FinishedPlans++
			}
			continue
		}
		// Overdue is "as of the range end", regardless of the range start.
		if p.EstimatedEndTime != nil && p.EstimatedEndTime.Before(r.End) {
			m.OverduePlans++
		}
	}

	m.ReviewsWritten, m.ReviewsMissing = reviewCompleteness(r, tasks, plans, reviews)
	return m
}

type dayKey struct {
	year  int
	month time.Month
	day   int
}

func keyOf(t time.Time, loc *time.Location) dayKey {
	y, mo, d := t.In(loc).Date()
	return dayKey{y, mo, d}
}

func dayStart(t time.Time, loc *time.Location) time.Time {
	y, mo, d := t.In(loc).Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, loc)
}

// reviewCompleteness walks every day of r. A day counts when a task is
// scheduled on it or a plan is due on it (estimated end, else start); a
// counted day is written when it has a review with non-blank content.
func reviewCompleteness(r Range, tasks []model.Task, plans []model.Plan, reviews []model.Review) (written, missing int) {
	loc := r.Start.Location()

	busy := make(map[dayKey]bool)
	for _, t := range tasks {
		busy[keyOf(t.Date, loc)] = true
	}
	for _, p := range plans {
		due := p.StartTime
		if p.EstimatedEndTime != nil {
			due = *p.EstimatedEndTime
		}
		busy[keyOf(due, loc)] = true
	}

	reviewed := make(map[dayKey]bool)
	for _, rv := range reviews {
		if rv.Written() {
			reviewed[keyOf(rv.Date, loc)] = true
		}
	}

	counted := 0
	end := dayStart(r.End, loc)
	for d := dayStart(r.Start, loc); !d.After(end); d = d.AddDate(0, 0, 1) {
		k := keyOf(d, loc)
		if !busy[k] {
			continue
		}
		counted++
		if reviewed[k] {
			written++
		}
	}
	return written, counted - written
}
