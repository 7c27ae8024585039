package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDailySpec(t *testing.T) {
	spec, err := buildDailySpec("18:15")
	require.NoError(t, err)
	assert.Equal(t, "0 15 18 * * *", spec)

	spec, err = buildDailySpec("0:05")
	require.NoError(t, err)
	assert.Equal(t, "0 5 0 * * *", spec)

	for _, bad := range []string{"", "18", "24:00", "12:60", "ab:cd", "1:2:3"} {
		_, err := buildDailySpec(bad)
		assert.Error(t, err, bad)
	}
}

func TestSchedulerService_ReplaceAndCancel(t *testing.T) {
	s := NewSchedulerService(time.UTC)

	require.NoError(t, s.ScheduleDaily("review", "18:15", func() {}))
	require.NoError(t, s.ScheduleDaily("review", "19:00", func() {}))
	assert.True(t, s.Has("review"))
	assert.Len(t, s.cron.Entries(), 1)

	require.Error(t, s.ScheduleDaily("other", "99:00", func() {}))
	assert.False(t, s.Has("other"))

	s.Cancel("review")
	assert.False(t, s.Has("review"))
	assert.Empty(t, s.cron.Entries())

	s.Cancel("missing")
}

func TestSchedulerService_Next(t *testing.T) {
	s := NewSchedulerService(time.UTC)
	require.NoError(t, s.ScheduleDaily("review", "18:15", func() {}))
	s.Start()
	defer s.Stop()

	next, ok := s.Next("review")
	require.True(t, ok)
	assert.Equal(t, 18, next.Hour())
	assert.Equal(t, 15, next.Minute())

	_, ok = s.Next("missing")
	assert.False(t, ok)
}
