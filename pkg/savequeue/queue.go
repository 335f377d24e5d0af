// Package savequeue implements a bounded-memory job queue that saves
// individual frames to independent image files without stalling the
// capture loop.
package savequeue

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/semaphore"

	"github.com/user/framepipe/pkg/ports"
)

// DefaultMaxQueuedBytes caps the pixel memory held by queued saves.
const DefaultMaxQueuedBytes = 500 * 1024 * 1024

// drainPoll is the sleep interval of the shutdown wait loop.
const drainPoll = 10 * time.Millisecond

// Job is one frame save: an owned pixel buffer and its destination path.
type Job struct {
	Path   string
	Width  int
	Height int
	Pixels []byte
}

// Queue runs frame saves on a fixed-size worker pool while capping the
// total bytes held by queued and in-flight jobs. When a submission would
// cross the cap, the save executes synchronously on the calling goroutine:
// a brief stall is preferred over unbounded memory growth. Under the cap,
// Submit never blocks; the pending list is unbounded because the byte
// budget already bounds its memory.
type Queue struct {
	writer   ports.ImageWriter
	logger   ports.Logger
	maxBytes int64
	budget   *semaphore.Weighted
	queued   atomic.Int64
	inflight atomic.Int64

	mu      sync.Mutex
	cond    *sync.Cond
	pending []Job
	closed  bool

	workers sync.WaitGroup
}

// Options configures a Queue.
type Options struct {
	// MaxQueuedBytes is the memory ceiling for queued pixel data. Zero or
	// negative disables the asynchronous path entirely: every save runs
	// synchronously on the caller.
	MaxQueuedBytes int64

	// Workers is the worker pool size. Zero or negative selects
	// max(1, NumCPU-1).
	Workers int
}

// New creates a Queue and starts its worker pool.
func New(writer ports.ImageWriter, logger ports.Logger, opts Options) *Queue {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU() - 1
		if workers < 1 {
			workers = 1
		}
	}

	q := &Queue{
		writer:   writer,
		logger:   logger.WithComponent("savequeue"),
		maxBytes: opts.MaxQueuedBytes,
	}
	q.cond = sync.NewCond(&q.mu)
	if q.maxBytes > 0 {
		q.budget = semaphore.NewWeighted(q.maxBytes)
	}

	q.workers.Add(workers)
	for i := 0; i < workers; i++ {
		go q.worker()
	}
	return q
}

// InFlight returns the number of jobs accepted but not yet completed.
func (q *Queue) InFlight() int64 {
	return q.inflight.Load()
}

// QueuedBytes returns the pixel bytes currently held by asynchronous jobs.
func (q *Queue) QueuedBytes() int64 {
	return q.queued.Load()
}

// Submit accepts one save job and returns without blocking when the byte
// budget allows queueing it. When the budget is exhausted, or the queue is
// configured fully synchronous, the save runs on the calling goroutine
// before Submit returns. Either way the in-flight counter is decremented
// exactly once when the job finishes, regardless of success or failure.
func (q *Queue) Submit(job Job) {
	q.inflight.Add(1)

	size := int64(len(job.Pixels))
	if q.budget != nil && size > 0 && q.budget.TryAcquire(size) {
		q.queued.Add(size)
		q.mu.Lock()
		q.pending = append(q.pending, job)
		q.cond.Signal()
		q.mu.Unlock()
		return
	}

	// Synchronous fallback: either the queue is configured synchronous or
	// the budget is exhausted. Deliberate backpressure, not an error.
	q.run(job)
	q.inflight.Add(-1)
}

func (q *Queue) worker() {
	defer q.workers.Done()
	for {
		q.mu.Lock()
		for len(q.pending) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.pending) == 0 {
			q.mu.Unlock()
			return
		}
		job := q.pending[0]
		q.pending[0] = Job{}
		q.pending = q.pending[1:]
		if len(q.pending) == 0 {
			q.pending = nil
		}
		q.mu.Unlock()

		q.run(job)
		size := int64(len(job.Pixels))
		q.queued.Add(-size)
		q.budget.Release(size)
		q.inflight.Add(-1)
	}
}

func (q *Queue) run(job Job) {
	if err := q.writer.WritePNG(job.Path, job.Width, job.Height, job.Pixels); err != nil {
		q.logger.Error("Failed to save %s: %s", job.Path, err)
	}
}

// Drain blocks until the in-flight counter reaches zero, so every frame
// already captured reaches disk before the process exits.
func (q *Queue) Drain() {
	if n := q.inflight.Load(); n > 0 {
		q.logger.Info("Saving %d remaining frames (%s queued), this might take a while...",
			n, humanize.IBytes(uint64(q.queued.Load())))
	}
	for q.inflight.Load() > 0 {
		time.Sleep(drainPoll)
	}
}

// Close drains pending jobs and stops the worker pool. Producers must have
// stopped submitting before Close is called.
func (q *Queue) Close() {
	q.Drain()
	q.mu.Lock()
	q.closed = true
	q.cond.Broadcast()
	q.mu.Unlock()
	q.workers.Wait()
}
