package worker_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"codeberg.org/mutker/droidmon/internal/errors"
	"codeberg.org/mutker/droidmon/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleFirstRunImmediate(t *testing.T) {
	p := worker.NewPool(2)
	defer p.Shutdown(time.Second)
	s := worker.NewScheduler(p)
	defer s.Stop()

	fired := make(chan time.Time, 1)
	begin := time.Now()
	_, err := s.ScheduleFixedRate("slow", time.Hour, func(context.Context) {
		select {
		case fired <- time.Now():
		default:
		}
	})
	require.NoError(t, err)

	select {
	case at := <-fired:
		assert.Less(t, at.Sub(begin), 500*time.Millisecond)
	case <-time.After(2 * time.Second):
		t.Fatal("first run did not happen immediately")
	}
}

func TestScheduleRepeats(t *testing.T) {
	p := worker.NewPool(2)
	defer p.Shutdown(time.Second)
	s := worker.NewScheduler(p)
	defer s.Stop()

	var runs atomic.Int32
	_, err := s.ScheduleFixedRate("fast", 10*time.Millisecond, func(context.Context) {
		runs.Add(1)
	})
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
}

func TestScheduleCancel(t *testing.T) {
	p := worker.NewPool(2)
	defer p.Shutdown(time.Second)
	s := worker.NewScheduler(p)
	defer s.Stop()

	var runs atomic.Int32
	cancel, err := s.ScheduleFixedRate("fast", 10*time.Millisecond, func(context.Context) {
		runs.Add(1)
	})
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return runs.Load() >= 1 }, 2*time.Second, 5*time.Millisecond)

	cancel()
	cancel()
	assert.Equal(t, 0, s.Active())

	// allow any in-flight run to land
	time.Sleep(30 * time.Millisecond)
	after := runs.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, runs.Load())
}

func TestScheduleFailingJobKeepsSchedule(t *testing.T) {
	p := worker.NewPool(2)
	defer p.Shutdown(time.Second)
	s := worker.NewScheduler(p)
	defer s.Stop()

	var runs atomic.Int32
	_, err := s.ScheduleFixedRate("panicky", 10*time.Millisecond, func(context.Context) {
		runs.Add(1)
		panic("tick failed")
	})
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
}

func TestScheduleValidation(t *testing.T) {
	p := worker.NewPool(1)
	defer p.Shutdown(time.Second)
	s := worker.NewScheduler(p)

	_, err := s.ScheduleFixedRate("zero", 0, func(context.Context) {})
	assert.True(t, errors.HasCode(err, errors.ErrInvalidInterval))

	_, err = s.ScheduleFixedRate("dup", time.Hour, func(context.Context) {})
	require.NoError(t, err)
	_, err = s.ScheduleFixedRate("dup", time.Hour, func(context.Context) {})
	assert.True(t, errors.HasCode(err, worker.ErrDuplicateSchedule))

	s.Stop()
	assert.Equal(t, 0, s.Active())
	_, err = s.ScheduleFixedRate("late", time.Hour, func(context.Context) {})
	assert.True(t, errors.HasCode(err, worker.ErrSchedulerStopped))
}
