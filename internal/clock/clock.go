// Package clock provides the time source used for day-boundary decisions.
package clock

import (
	"sync"
	"time"
)

// Clock is the time source used by the timer, generator and summaries.
type Clock interface {
	Now() time.Time
	StartOfDay(t time.Time) time.Time
}

// System reads the wall clock in a fixed location.
type System struct {
	loc *time.Location
}

func NewSystem(loc *time.Location) System {
	if loc == nil {
		loc = time.Local
	}
	return System{loc: loc}
}

func (s System) Now() time.Time {
	return time.Now().In(s.loc)
}

func (s System) StartOfDay(t time.Time) time.Time {
	return startOfDay(t, s.loc)
}

// Location returns the location days are computed in.
func (s System) Location() *time.Location {
	return s.loc
}

// Manual is a settable clock for tests.
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

func NewManual(now time.Time) *Manual {
	return &Manual{now: now}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) StartOfDay(t time.Time) time.Time {
	return startOfDay(t, m.Now().Location())
}

// Set moves the clock to t.
func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	m.now = t
	m.mu.Unlock()
}

// Advance moves the clock forward by d.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, loc)
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}
