package scheduler_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/thiagogitai/sinconsult-crm/internal/scheduler"
)

func newScheduler(interval time.Duration, sweepFunc func(context.Context) error) *scheduler.Scheduler {
	return scheduler.NewScheduler(zap.NewNop(), interval, sweepFunc)
}

func TestScheduler_StartAndStop(t *testing.T) {
	s := newScheduler(time.Hour, func(ctx context.Context) error { return nil })

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())

	assert.ErrorIs(t, s.Start(context.Background()), scheduler.ErrSchedulerAlreadyRunning)

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())

	assert.ErrorIs(t, s.Stop(), scheduler.ErrSchedulerNotRunning)
}

func TestScheduler_SweepsImmediatelyOnStart(t *testing.T) {
	var sweeps atomic.Int32
	s := newScheduler(time.Hour, func(ctx context.Context) error {
		sweeps.Add(1)
		return nil
	})

	require.NoError(t, s.Start(context.Background()))
	defer func() { _ = s.Stop() }()

	assert.Eventually(t, func() bool {
		return sweeps.Load() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestScheduler_SweepsOnInterval(t *testing.T) {
	var sweeps atomic.Int32
	s := newScheduler(50*time.Millisecond, func(ctx context.Context) error {
		sweeps.Add(1)
		return nil
	})

	require.NoError(t, s.Start(context.Background()))
	defer func() { _ = s.Stop() }()

	// Initial sweep plus at least two ticks.
	assert.Eventually(t, func() bool {
		return sweeps.Load() >= 3
	}, 2*time.Second, 10*time.Millisecond)
}

func TestScheduler_KeepsRunningAfterSweepError(t *testing.T) {
	var sweeps atomic.Int32
	s := newScheduler(30*time.Millisecond, func(ctx context.Context) error {
		sweeps.Add(1)
		return assert.AnError
	})

	require.NoError(t, s.Start(context.Background()))
	defer func() { _ = s.Stop() }()

	assert.Eventually(t, func() bool {
		return sweeps.Load() >= 2
	}, 2*time.Second, 10*time.Millisecond)
	assert.True(t, s.IsRunning())
}

func TestScheduler_ContextCancellationStopsLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s := newScheduler(20*time.Millisecond, func(ctx context.Context) error { return nil })
	require.NoError(t, s.Start(ctx))

	cancel()

	assert.Eventually(t, func() bool {
		return !s.IsRunning()
	}, time.Second, 10*time.Millisecond)
}

func TestScheduler_StopWaitsForInFlightSweep(t *testing.T) {
	var finished atomic.Bool

	started := make(chan struct{})
	s := newScheduler(time.Hour, func(ctx context.Context) error {
		close(started)
		time.Sleep(100 * time.Millisecond)
		finished.Store(true)
		return nil
	})

	require.NoError(t, s.Start(context.Background()))

	<-started
	require.NoError(t, s.Stop())

	assert.True(t, finished.Load())
}

func TestScheduler_SweepDeadlineBoundedByInterval(t *testing.T) {
	deadlineSeen := make(chan time.Duration, 1)
	s := newScheduler(200*time.Millisecond, func(ctx context.Context) error {
		if deadline, ok := ctx.Deadline(); ok {
			select {
			case deadlineSeen <- time.Until(deadline):
			default:
			}
		}
		return nil
	})

	require.NoError(t, s.Start(context.Background()))
	defer func() { _ = s.Stop() }()

	select {
	case remaining := <-deadlineSeen:
		assert.LessOrEqual(t, remaining, 200*time.Millisecond)
	case <-time.After(time.Second):
		t.Fatal("sweep never ran")
	}
}

func TestScheduler_RestartAfterStop(t *testing.T) {
	var sweeps atomic.Int32
	s := newScheduler(time.Hour, func(ctx context.Context) error {
		sweeps.Add(1)
		return nil
	})

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Stop())

	require.NoError(t, s.Start(context.Background()))
	defer func() { _ = s.Stop() }()

	assert.Eventually(t, func() bool {
		return sweeps.Load() >= 2
	}, time.Second, 10*time.Millisecond)
}
