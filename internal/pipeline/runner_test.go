package pipeline_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lumenvault/photovault/internal/apperr"
	"github.com/lumenvault/photovault/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunnerExecutesEnqueuedTasks(t *testing.T) {
	r := pipeline.NewRunner(2, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.Start(ctx)
	defer r.Stop()

	var count atomic.Int64
	for i := 0; i < 10; i++ {
		err := r.Enqueue(pipeline.Task{
			Name: "increment",
			Run: func(ctx context.Context) error {
				count.Add(1)
				return nil
			},
		})
		require.NoError(t, err)
	}

	require.Eventually(t, func() bool {
		return count.Load() == 10
	}, time.Second, 2*time.Millisecond)
}

func TestRunnerSurvivesPanickingTask(t *testing.T) {
	r := pipeline.NewRunner(1, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.Start(ctx)
	defer r.Stop()

	require.NoError(t, r.Enqueue(pipeline.Task{
		Name: "boom",
		Run: func(ctx context.Context) error {
			panic("boom")
		},
	}))

	var ran atomic.Bool
	require.NoError(t, r.Enqueue(pipeline.Task{
		Name: "after",
		Run: func(ctx context.Context) error {
			ran.Store(true)
			return nil
		},
	}))

	require.Eventually(t, func() bool {
		return ran.Load()
	}, time.Second, 2*time.Millisecond)
}

func TestEnqueueFailsAfterStop(t *testing.T) {
	r := pipeline.NewRunner(1, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.Start(ctx)
	r.Stop()

	err := r.Enqueue(pipeline.Task{Name: "late", Run: func(ctx context.Context) error { return nil }})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindShuttingDown))
}

func TestQueuedAndRunningCountsDrainToZero(t *testing.T) {
	r := pipeline.NewRunner(1, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.Start(ctx)
	defer r.Stop()

	release := make(chan struct{})
	require.NoError(t, r.Enqueue(pipeline.Task{
		Name: "blocker",
		Run: func(ctx context.Context) error {
			<-release
			return nil
		},
	}))

	require.Eventually(t, func() bool {
		return r.RunningCount() == 1
	}, time.Second, 2*time.Millisecond)

	close(release)

	require.Eventually(t, func() bool {
		return r.RunningCount() == 0 && r.QueuedCount() == 0
	}, time.Second, 2*time.Millisecond)
}
