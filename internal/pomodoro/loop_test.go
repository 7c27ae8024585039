package pomodoro

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startLoop(t *testing.T) (*Loop, context.CancelFunc) {
	t.Helper()
	loop := NewLoop(0)
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = loop.Run(ctx) }()
	t.Cleanup(cancel)
	return loop, cancel
}

func TestLoop_DoRunsInOrder(t *testing.T) {
	loop, _ := startLoop(t)

	var order []int
	for i := 0; i < 5; i++ {
		require.NoError(t, loop.Post(func(context.Context) { order = append(order, i) }))
	}
	require.NoError(t, loop.Do(context.Background(), func(context.Context) error { return nil }))

	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestLoop_StoppedLoopRejectsWork(t *testing.T) {
	loop, cancel := startLoop(t)
	cancel()

	require.Eventually(t, func() bool {
		return loop.Post(func(context.Context) {}) == ErrLoopStopped
	}, time.Second, 5*time.Millisecond)
}

func TestLoopInterval_TicksUntilStopped(t *testing.T) {
	loop, _ := startLoop(t)
	interval := NewLoopInterval(loop, 5*time.Millisecond)

	ticks := 0
	count := func() int {
		var n int
		_ = loop.Do(context.Background(), func(context.Context) error {
			n = ticks
			return nil
		})
		return n
	}

	require.NoError(t, loop.Do(context.Background(), func(context.Context) error {
		interval.Start(func(context.Context) { ticks++ })
		return nil
	}))
	require.Eventually(t, func() bool { return count() >= 3 }, time.Second, 5*time.Millisecond)

	require.NoError(t, loop.Do(context.Background(), func(context.Context) error {
		interval.Stop()
		return nil
	}))
	stopped := count()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, count())
}

func TestTimer_DrivenByLoop(t *testing.T) {
	loop, _ := startLoop(t)
	f := newFixture(t)
	f.timer = New(f.clock, f.recorder, NewLoopInterval(loop, time.Millisecond), nil)

	done := make(chan Completion, 1)
	require.NoError(t, loop.Do(context.Background(), func(context.Context) error {
		f.timer.Configure(1, 1)
		f.timer.OnComplete(func(c Completion) { done <- c })
		f.timer.StartWork()
		return nil
	}))

	select {
	case c := <-done:
		assert.Equal(t, WorkCompleted, c.Kind)
	case <-time.After(5 * time.Second):
		t.Fatal("work session did not complete")
	}
	assert.Len(t, f.recorder.sessions, 1)
}
