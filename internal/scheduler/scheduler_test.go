package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScheduler() *Scheduler {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRegister(t *testing.T) {
	s := newScheduler()
	ctx := context.Background()

	require.NoError(t, s.Register(ctx, "sweep", "0 3 * * *", func(context.Context) {}))
	require.NoError(t, s.Register(ctx, "janitor", "", func(context.Context) {}))
	assert.Equal(t, 1, s.Len())

	err := s.Register(ctx, "rusak", "bukan jadwal", func(context.Context) {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rusak")
}

func TestJob_SkipsOverlappingRun(t *testing.T) {
	s := newScheduler()

	var runs atomic.Int32
	release := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, s.Register(context.Background(), "sweep", "@daily", func(context.Context) {
		if runs.Add(1) == 1 {
			close(started)
			<-release
		}
	}))
	job := s.cron.Entries()[0].WrappedJob

	done := make(chan struct{})
	go func() {
		job.Run()
		close(done)
	}()
	<-started

	job.Run()
	close(release)
	<-done

	assert.Equal(t, int32(1), runs.Load())
}

func TestJob_RecoversPanic(t *testing.T) {
	s := newScheduler()
	require.NoError(t, s.Register(context.Background(), "panik", "@daily", func(context.Context) {
		panic("aduh")
	}))

	assert.NotPanics(t, s.cron.Entries()[0].WrappedJob.Run)
}

func TestJob_ContextCancelledWithParent(t *testing.T) {
	s := newScheduler()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var jobErr error
	require.NoError(t, s.Register(ctx, "sweep", "@daily", func(jobCtx context.Context) {
		jobErr = jobCtx.Err()
	}))
	s.cron.Entries()[0].WrappedJob.Run()

	assert.ErrorIs(t, jobErr, context.Canceled)
}

func TestStartStop(t *testing.T) {
	s := newScheduler()
	s.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Stop(ctx))
}
