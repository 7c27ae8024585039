package pomodoro

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"taskflow/internal/model"
)

// State is the timer state.
type State int

const (
	Idle State = iota
	Working
	WorkingPaused
	Relaxing
	RelaxingPaused
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Working:
		return "Working"
	case WorkingPaused:
		return "Working (paused)"
	case Relaxing:
		return "Relaxing"
	case RelaxingPaused:
		return "Relaxing (paused)"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Running reports whether a session is active, paused or not.
func (s State) Running() bool {
	return s != Idle
}

func (s State) Paused() bool {
	return s == WorkingPaused || s == RelaxingPaused
}

// Work reports whether the current session is a work session.
func (s State) Work() bool {
	return s == Working || s == WorkingPaused
}

// Snapshot is an immutable copy of the timer state handed to observers.
type Snapshot struct {
	State        State
	Remaining    int // seconds
	WorkMinutes  int
	RelaxMinutes int
	TaskID       *uuid.UUID
	StartedAt    *time.Time
}

// Clock renders the remaining time as MM:SS.
func (s Snapshot) Clock() string {
	return fmt.Sprintf("%02d:%02d", s.Remaining/60, s.Remaining%60)
}

// CompletionKind distinguishes the two countdowns that can run out.
type CompletionKind int

const (
	WorkCompleted CompletionKind = iota + 1
	RelaxCompleted
)

func (k CompletionKind) String() string {
	switch k {
	case WorkCompleted:
		return "work completed"
	case RelaxCompleted:
		return "relax completed"
	}
	return fmt.Sprintf("CompletionKind(%d)", int(k))
}

// Completion is emitted when a countdown reaches zero. Session is the
// persisted record for work completions and nil for relax completions.
type Completion struct {
	Kind    CompletionKind
	Session *model.PomodoroSession
}
