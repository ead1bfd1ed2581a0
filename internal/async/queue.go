package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/reisekosten/reisekosten/internal/metrics"
)

// Job is one receipt waiting to be parsed.
type Job struct {
	ReceiptID uuid.UUID
}

// Processor is the work a queue worker performs per job.
type Processor interface {
	Process(ctx context.Context, receiptID uuid.UUID) error
}

// Queue fans parsing jobs out to a fixed worker pool. Uploads return as soon
// as the job is queued; parsing happens in the background.
type Queue struct {
	proc    Processor
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan Job
	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once

	mu      sync.Mutex
	closed  bool
	senders sync.WaitGroup
}

type Option func(*Queue)

func WithWorkers(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}
func WithProcessTimeout(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewQueue(proc Processor, logger *slog.Logger, opts ...Option) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &Queue{
		proc:    proc,
		logger:  logger,
		workers: 4,
		timeout: 3 * time.Minute,
		ch:      make(chan Job, 256),
		done:    make(chan struct{}),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *Queue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("worker started", "worker_id", workerID)

				for job := range q.ch {
					metrics.QueueDepth.Dec()
					ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
					err := q.proc.Process(ctx, job.ReceiptID)
					cancel()

					if err != nil {
						q.logger.Error("processing failed", "worker_id", workerID, "receipt_id", job.ReceiptID, "error", err)
					} else {
						q.logger.Info("processed receipt", "worker_id", workerID, "receipt_id", job.ReceiptID)
					}
				}

				q.logger.Info("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

// Enqueue queues a job, blocking when the buffer is full. Jobs enqueued
// after shutdown began are dropped with a warning. The blocking send happens
// outside the mutex so a full queue never stalls other producers or Shutdown.
func (q *Queue) Enqueue(_ context.Context, job Job) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.logger.Warn("cannot enqueue: queue is shutting down", "receipt_id", job.ReceiptID)
		return nil
	}
	q.senders.Add(1)
	q.mu.Unlock()
	defer q.senders.Done()

	select {
	case q.ch <- job:
		metrics.QueueDepth.Inc()
		q.logger.Info("queued receipt for parsing", "receipt_id", job.ReceiptID)
		return nil
	default:
	}

	q.logger.Warn("queue full, applying backpressure", "receipt_id", job.ReceiptID)
	select {
	case q.ch <- job:
		metrics.QueueDepth.Inc()
		q.logger.Info("queued receipt for parsing", "receipt_id", job.ReceiptID)
	case <-q.done:
		q.logger.Warn("cannot enqueue: queue is shutting down", "receipt_id", job.ReceiptID)
	}
	return nil
}

// Shutdown stops intake and waits for in-flight jobs until ctx expires.
// The job channel is closed only after all pending Enqueue calls returned,
// so a producer can never send on a closed channel.
func (q *Queue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.done)
	q.mu.Unlock()

	q.senders.Wait()
	close(q.ch)

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
