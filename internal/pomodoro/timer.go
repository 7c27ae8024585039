package pomodoro

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskflow/internal/clock"
	"taskflow/internal/model"
)

const (
	defaultWorkMinutes  = model.DefaultWorkMinutes
	defaultRelaxMinutes = model.DefaultRelaxMinutes
)

// SessionRecorder persists finished or abandoned work sessions.
type SessionRecorder interface {
	Create(ctx context.Context, session *model.PomodoroSession) error
}

type subscriber struct {
	id int
	fn func(Snapshot)
}

// Timer drives the work/relax countdown. It is not safe for concurrent use:
// every method, including the tick delivered by the Interval, must run on
// the same goroutine (see Loop).
type Timer struct {
	clock    clock.Clock
	recorder SessionRecorder
	interval Interval
	log      *zap.Logger

	state        State
	remaining    int
	workMinutes  int
	relaxMinutes int
	startedAt    *time.Time
	taskID       *uuid.UUID

	nextID      int
	subscribers []subscriber
	completions []func(Completion)
}

func New(c clock.Clock, recorder SessionRecorder, interval Interval, log *zap.Logger) *Timer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Timer{
		clock:        c,
		recorder:     recorder,
		interval:     interval,
		log:          log.Named("pomodoro"),
		state:        Idle,
		remaining:    defaultWorkMinutes * 60,
		workMinutes:  defaultWorkMinutes,
		relaxMinutes: defaultRelaxMinutes,
	}
}

// Configure sets the durations. The countdown is reset only when idle.
func (t *Timer) Configure(workMinutes, relaxMinutes int) {
	if workMinutes <= 0 {
		workMinutes = defaultWorkMinutes
	}
	if relaxMinutes <= 0 {
		relaxMinutes = defaultRelaxMinutes
	}
	t.workMinutes = workMinutes
	t.relaxMinutes = relaxMinutes

	if t.state == Idle {
		t.remaining = t.workMinutes * 60
		t.publish()
	}
}

// SelectTask attributes the next work session to a task. Nil clears it.
func (t *Timer) SelectTask(id *uuid.UUID) {
	if id == nil {
		t.taskID = nil
	} else {
		v := *id
		t.taskID = &v
	}
	t.publish()
}

// StartWork begins a work session. It does nothing unless the timer is idle.
func (t *Timer) StartWork() {
	if t.state != Idle {
		return
	}
	now := t.clock.Now()
	t.remaining = t.workMinutes * 60
	t.startedAt = &now
	t.state = Working
	t.interval.Start(t.onTick)

	t.log.Info("work started", zap.Int("minutes", t.workMinutes))
	t.publish()
}

// StartRelax begins a relax countdown from any state. Relax sessions are
// never persisted, so the recorded start is dropped.
func (t *Timer) StartRelax() {
	t.interval.Stop()
	t.remaining = t.relaxMinutes * 60
	t.startedAt = nil
	t.state = Relaxing
	t.interval.Start(t.onTick)

	t.log.Info("relax started", zap.Int("minutes", t.relaxMinutes))
	t.publish()
}

func (t *Timer) Pause() {
	switch t.state {
	case Working:
		t.state = WorkingPaused
	case Relaxing:
		t.state = RelaxingPaused
	default:
		return
	}
	t.interval.Stop()
	t.publish()
}

func (t *Timer) Resume() {
	switch t.state {
	case WorkingPaused:
		t.state = Working
	case RelaxingPaused:
		t.state = Relaxing
	default:
		return
	}
	t.interval.Start(t.onTick)
	t.publish()
}

// End stops the current session. A work session with a recorded start is
// persisted as finished or abandoned; its finished minutes are the whole
// wall-clock minutes since start, paused time included. The timer is reset
// to idle even when persisting fails.
func (t *Timer) End(ctx context.Context, abandoned bool) (*model.PomodoroSession, error) {
	if t.state == Idle {
		return nil, nil
	}
	t.interval.Stop()

	var (
		session *model.PomodoroSession
		err     error
	)
	if t.state.Work() && t.startedAt != nil {
		session = t.buildSession(abandoned)
		if err = t.recorder.Create(ctx, session); err != nil {
			err = fmt.Errorf("record pomodoro: %w", err)
			session = nil
		} else {
			t.log.Info("pomodoro recorded",
				zap.String("status", string(session.Status)),
				zap.Int("finished_minutes", *session.FinishedMinutes),
			)
		}
	}

	t.Reset()
	return session, err
}

func (t *Timer) buildSession(abandoned bool) *model.PomodoroSession {
	end := t.clock.Now()
	minutes := int(end.Sub(*t.startedAt) / time.Minute)
	if minutes < 0 {
		minutes = 0
	}
	status := model.PomodoroFinished
	if abandoned {
		status = model.PomodoroAbandoned
	}

	session := &model.PomodoroSession{
		StartDate:        *t.startedAt,
		EndDate:          &end,
		Status:           status,
		EstimatedMinutes: t.workMinutes,
		FinishedMinutes:  &minutes,
	}
	if t.taskID != nil {
		id := *t.taskID
		session.TaskID = &id
	}
	return session
}

// Reset returns to idle without recording anything.
func (t *Timer) Reset() {
	t.interval.Stop()
	t.state = Idle
	t.startedAt = nil
	t.remaining = t.workMinutes * 60
	t.publish()
}

// Tick advances a running countdown by one second. When it reaches zero the
// session is ended as finished and a Completion is emitted.
func (t *Timer) Tick(ctx context.Context) error {
	if t.state != Working && t.state != Relaxing {
		return nil
	}
	if t.remaining > 0 {
		t.remaining--
	}
	t.publish()
	if t.remaining > 0 {
		return nil
	}

	kind := WorkCompleted
	if t.state == Relaxing {
		kind = RelaxCompleted
	}
	session, err := t.End(ctx, false)
	t.emit(Completion{Kind: kind, Session: session})
	return err
}

func (t *Timer) onTick(ctx context.Context) {
	if err := t.Tick(ctx); err != nil {
		t.log.Error("tick", zap.Error(err))
	}
}

// Snapshot returns the current state.
func (t *Timer) Snapshot() Snapshot {
	s := Snapshot{
		State:        t.state,
		Remaining:    t.remaining,
		WorkMinutes:  t.workMinutes,
		RelaxMinutes: t.relaxMinutes,
	}
	if t.taskID != nil {
		id := *t.taskID
		s.TaskID = &id
	}
	if t.startedAt != nil {
		at := *t.startedAt
		s.StartedAt = &at
	}
	return s
}

// Subscribe registers fn for every state change and tick. The returned
// function removes the subscription.
func (t *Timer) Subscribe(fn func(Snapshot)) func() {
	t.nextID++
	id := t.nextID
	t.subscribers = append(t.subscribers, subscriber{id: id, fn: fn})
	return func() {
		for i, s := range t.subscribers {
			if s.id == id {
				t.subscribers = append(t.subscribers[:i], t.subscribers[i+1:]...)
				return
			}
		}
	}
}

// OnComplete registers fn for countdown completions.
func (t *Timer) OnComplete(fn func(Completion)) {
	t.completions = append(t.completions, fn)
}

func (t *Timer) publish() {
	if len(t.subscribers) == 0 {
		return
	}
	snap := t.Snapshot()
	for _, s := range t.subscribers {
		s.fn(snap)
	}
}

func (t *Timer) emit(c Completion) {
	t.log.Info("countdown complete", zap.Stringer("kind", c.Kind))
	for _, fn := range t.completions {
		fn(c)
	}
}
