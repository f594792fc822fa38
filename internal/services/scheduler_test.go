package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type runnerFunc func(ctx context.Context) error

func (f runnerFunc) RunAll(ctx context.Context) error { return f(ctx) }

func TestSchedulerStopReturnsWithRebuildInFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	scheduler := NewSchedulerService(runnerFunc(func(ctx context.Context) error {
		close(started)
		<-release
		return errors.New("extract went away")
	}), nil, "@every 10ms", quietLogger())

	require.NoError(t, scheduler.Start())
	<-started

	stopped := make(chan struct{})
	go func() {
		scheduler.Stop()
		close(stopped)
	}()

	// Let Stop park on the cron drain before the rebuild finishes.
	time.Sleep(20 * time.Millisecond)
	close(release)

	select {
	case <-stopped:
	case <-time.After(3 * time.Second):
		t.Fatal("Stop did not return after the in-flight rebuild finished")
	}

	status := scheduler.Status()
	assert.Equal(t, false, status["is_running"])
	assert.Equal(t, "extract went away", status["last_error"])
}

func TestSchedulerStartTwice(t *testing.T) {
	scheduler := NewSchedulerService(runnerFunc(func(ctx context.Context) error {
		return nil
	}), nil, "@daily", quietLogger())

	require.NoError(t, scheduler.Start())
	defer scheduler.Stop()
	assert.Error(t, scheduler.Start())
}
