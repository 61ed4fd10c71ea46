package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dfcamargo/extracto-pipeline/internal/event"
	"github.com/dfcamargo/extracto-pipeline/internal/pipeline"
)

// Job is one queued delivery: a storage notification plus trace identity.
type Job struct {
	Notification event.Notification
	SubmittedAt  time.Time
	TraceID      string
}

// NewJob wraps a notification with a fresh trace id.
func NewJob(n event.Notification) Job {
	return Job{Notification: n, SubmittedAt: time.Now().UTC(), TraceID: uuid.NewString()}
}

// ProcessorQueue fans queued notifications out to a fixed worker pool.
// The pool size is the local analog of the queue's concurrency limit:
// each document's pipeline stays strictly sequential inside one worker.
type ProcessorQueue struct {
	proc    *pipeline.Processor
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*ProcessorQueue)

func WithWorkers(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(q *ProcessorQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewProcessorQueue(proc *pipeline.Processor, logger *slog.Logger, opts ...Option) *ProcessorQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ProcessorQueue{
		proc:    proc,
		logger:  logger,
		workers: 4,
		timeout: 3 * time.Minute,
		ch:      make(chan Job, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ProcessorQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("worker started", "worker_id", workerID)

				for job := range q.ch {
					ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
					err := q.proc.Process(ctx, job.Notification)
					cancel()

					if err != nil {
						q.logger.Error("processing failed",
							"worker_id", workerID, "trace_id", job.TraceID,
							"key", job.Notification.Key, "error", err)
					} else {
						q.logger.Info("delivery handled",
							"worker_id", workerID, "trace_id", job.TraceID,
							"key", job.Notification.Key,
							"wait_ms", time.Since(job.SubmittedAt).Milliseconds())
					}
				}

				q.logger.Info("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *ProcessorQueue) Enqueue(_ context.Context, job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "key", job.Notification.Key)
		return nil
	}
	select {
	case q.ch <- job:
		q.logger.Info("queued delivery", "trace_id", job.TraceID, "key", job.Notification.Key)
	default:
		q.logger.Warn("queue full, applying backpressure", "key", job.Notification.Key)
		q.ch <- job
	}
	return nil
}

func (q *ProcessorQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
