package pomodoro

import (
	"context"
	"errors"
	"time"
)

// ErrLoopStopped is returned when work is posted to a loop that has exited.
var ErrLoopStopped = errors.New("event loop stopped")

// Loop runs queued functions one at a time on a single goroutine. It plays
// the role of a UI main thread: the timer and its ticks are only touched
// from inside the loop.
type Loop struct {
	queue chan func(context.Context)
	done  chan struct{}
}

func NewLoop(size int) *Loop {
	if size <= 0 {
		size = 64
	}
	return &Loop{
		queue: make(chan func(context.Context), size),
		done:  make(chan struct{}),
	}
}

// Run processes queued functions until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.queue:
			fn(ctx)
		}
	}
}

// Post enqueues fn without waiting for it to run.
func (l *Loop) Post(fn func(context.Context)) error {
	select {
	case <-l.done:
		return ErrLoopStopped
	default:
	}
	select {
	case l.queue <- fn:
		return nil
	case <-l.done:
		return ErrLoopStopped
	}
}

// Do runs fn on the loop and waits for its result. It must not be called
// from inside the loop.
func (l *Loop) Do(ctx context.Context, fn func(context.Context) error) error {
	result := make(chan error, 1)
	if err := l.Post(func(loopCtx context.Context) { result <- fn(loopCtx) }); err != nil {
		return err
	}
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrLoopStopped
	}
}

// Interval delivers a periodic tick while started.
type Interval interface {
	Start(tick func(context.Context))
	Stop()
}

// LoopInterval posts one tick per period into a Loop. Start and Stop must be
// called from the loop goroutine; ticks already queued by a stopped
// generation are discarded.
type LoopInterval struct {
	loop   *Loop
	period time.Duration
	gen    uint64
	stop   chan struct{}
}

func NewLoopInterval(loop *Loop, period time.Duration) *LoopInterval {
	if period <= 0 {
		period = time.Second
	}
	return &LoopInterval{loop: loop, period: period}
}

func (i *LoopInterval) Start(tick func(context.Context)) {
	i.Stop()
	gen := i.gen
	stop := make(chan struct{})
	i.stop = stop

	go func() {
		ticker := time.NewTicker(i.period)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-i.loop.done:
				return
			case <-ticker.C:
				err := i.loop.Post(func(ctx context.Context) {
					if i.gen != gen {
						return
					}
					tick(ctx)
				})
				if err != nil {
					return
				}
			}
		}
	}()
}

func (i *LoopInterval) Stop() {
	if i.stop != nil {
		close(i.stop)
		i.stop = nil
	}
	i.gen++
}
