// Package pipeline contains the bounded-concurrency background task
// runner (spec §4.1) and the ingest pipeline built on top of it (spec
// §4.4).
package pipeline

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/lumenvault/photovault/internal/apperr"
)

// emptyQueueSleep bounds the worst-case wake latency of an idle
// worker and the idle CPU burned while draining (spec §4.1
// rationale).
const emptyQueueSleep = 5 * time.Millisecond

// Task is a named unit of asynchronous work. Name is used purely for
// logging; Run does the actual work and returns any failure.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Runner is a bounded-concurrency FIFO worker pool. The zero value is
// not usable; construct with NewRunner.
type Runner struct {
	parallelism int
	logger      *zap.Logger

	mu    sync.Mutex
	queue []Task

	running  atomic.Int64
	queued   atomic.Int64
	starting sync.Once
	started  atomic.Bool
	stopping atomic.Bool

	wg sync.WaitGroup
}

// NewRunner builds a Runner with parallelism workers (clamped to at
// least 1).
func NewRunner(parallelism int, logger *zap.Logger) *Runner {
	if parallelism < 1 {
		parallelism = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{parallelism: parallelism, logger: logger}
}

// Enqueue appends task to the FIFO queue. It fails with
// apperr.KindShuttingDown once Stop has been called.
func (r *Runner) Enqueue(task Task) error {
	if r.stopping.Load() {
		return apperr.New(apperr.KindShuttingDown, "pipeline.Runner.Enqueue", errShuttingDown)
	}

	r.mu.Lock()
	r.queue = append(r.queue, task)
	r.mu.Unlock()
	r.queued.Add(1)
	return nil
}

// Start spawns the worker pool. It is idempotent while running: a
// second call while already started is a no-op.
func (r *Runner) Start(ctx context.Context) {
	if r.started.Swap(true) {
		return
	}
	r.stopping.Store(false)

	for i := 0; i < r.parallelism; i++ {
		r.wg.Add(1)
		go r.workerLoop(ctx)
	}
}

// Stop initiates graceful shutdown: new Enqueue calls fail, workers
// drain the remaining queue, and Stop returns once every worker has
// exited.
func (r *Runner) Stop() {
	r.stopping.Store(true)
	r.wg.Wait()
	r.started.Store(false)
}

// RunningCount returns the number of tasks currently executing.
func (r *Runner) RunningCount() int64 { return r.running.Load() }

// QueuedCount returns the number of tasks waiting to run.
func (r *Runner) QueuedCount() int64 { return r.queued.Load() }

func (r *Runner) workerLoop(ctx context.Context) {
	defer r.wg.Done()

	for {
		task, ok := r.tryTakeNext()
		if ok {
			r.execute(ctx, task)
			continue
		}

		if r.stopping.Load() && r.queued.Load() == 0 {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(emptyQueueSleep):
		}
	}
}

func (r *Runner) tryTakeNext() (Task, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.queue) == 0 {
		return Task{}, false
	}
	task := r.queue[0]
	r.queue = r.queue[1:]
	r.queued.Add(-1)
	return task, true
}

func (r *Runner) execute(ctx context.Context, task Task) {
	r.running.Add(1)
	defer r.running.Add(-1)

	err := runSupervised(ctx, task)
	if err != nil {
		r.logger.Error("background task failed",
			zap.String("task", task.Name),
			zap.Error(err))
	}
}

// runSupervised executes task.Run, recovering a panic into an error so
// one task's failure never takes down a worker or affects other
// tasks.
func runSupervised(ctx context.Context, task Task) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = apperr.Newf(apperr.KindInternal, "pipeline.Runner", "task %q panicked: %v", task.Name, rec)
		}
	}()
	return task.Run(ctx)
}

var errShuttingDown = &shutdownError{}

type shutdownError struct{}

func (*shutdownError) Error() string { return "runner is shutting down" }
