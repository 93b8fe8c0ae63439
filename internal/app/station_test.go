package app

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/air_monitor/internal/config"
)

func TestLoopSurvivesErrorsAndPanics(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	l := &Loop{
		Tick: func() (bool, error) {
			switch calls.Add(1) {
			case 1:
				return true, errBoom
			case 2:
				panic("bus exploded")
			case 5:
				cancel()
			}
			return true, nil
		},
		Interval: time.Millisecond,
		Backoff:  time.Millisecond,
		Log:      quietLogger(),
	}

	done := make(chan struct{})
	go func() {
		l.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not stop")
	}
	assert.Equal(t, int32(5), calls.Load())
}

func TestLoopStopsBeforeFirstTickWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	l := &Loop{
		Tick:     func() (bool, error) { called = true; return false, nil },
		Interval: time.Hour,
		Log:      quietLogger(),
	}
	l.Run(ctx)
	assert.False(t, called)
}

func TestLoopFinishesCycleInProgress(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	finished := false
	l := &Loop{
		Tick: func() (bool, error) {
			cancel()
			time.Sleep(20 * time.Millisecond)
			finished = true
			return true, nil
		},
		Interval: time.Hour,
		Log:      quietLogger(),
	}
	l.Run(ctx)
	assert.True(t, finished)
}

func TestSchedulerOptions(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	opts := SchedulerOptions(cfg)
	assert.Equal(t, 300*time.Second, opts.Period)
	assert.Equal(t, 3*time.Second, opts.SettleDelay)
	assert.Equal(t, 100*time.Millisecond, opts.PollInterval)
	assert.Equal(t, 50, opts.MaxPolls)
	assert.Equal(t, 3, opts.ReadsPerCycle)
	assert.False(t, opts.AcquireOnStart)
}
