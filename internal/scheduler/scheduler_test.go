package scheduler

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler() *Scheduler {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return NewScheduler(l)
}

func noopRunner() Runner {
	return RunnerFunc(func(ctx context.Context) error { return nil })
}

func TestStartWithoutJobs(t *testing.T) {
	s := newTestScheduler()
	assert.Error(t, s.Start())
	assert.False(t, s.IsRunning())
}

func TestScheduleAndStart(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.ScheduleEvaluation("0 6 * * *", noopRunner()))
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.True(t, s.IsRunning())
	assert.False(t, s.NextRun().IsZero())

	// Double start and scheduling while running are both rejected.
	assert.Error(t, s.Start())
	assert.Error(t, s.ScheduleEvaluation("@hourly", noopRunner()))
}

func TestInvalidCronSpec(t *testing.T) {
	s := newTestScheduler()
	assert.Error(t, s.ScheduleEvaluation("not a cron spec", noopRunner()))
}

func TestStopIdempotent(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.ScheduleEvaluation("@daily", noopRunner()))
	require.NoError(t, s.Start())

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	require.NoError(t, s.Stop())
	assert.True(t, s.NextRun().IsZero())
}
