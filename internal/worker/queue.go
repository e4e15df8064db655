// Package worker runs pipeline jobs on a bounded pool of goroutines.
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fadilmartias/plan-analyzer/internal/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrQueueClosed = errors.New("queue is shutting down")

// Processor handles one submission. It is called with a context bounded by
// the queue's process timeout.
type Processor func(ctx context.Context, submissionID uuid.UUID) error

type Queue struct {
	logger  *zap.Logger
	workers int
	timeout time.Duration

	ch   chan uuid.UUID
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.RWMutex
	closed bool
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
			q.ch = make(chan uuid.UUID, n)
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

func NewQueue(logger *zap.Logger, opts ...Option) *Queue {
	q := &Queue{
		logger:  logger,
		workers: 4,
		timeout: 5 * time.Minute,
		ch:      make(chan uuid.UUID, 128),
	}
	for _, o := range opts {
		o(q)
	}
	return q
}

// Start launches the workers. Calling it more than once has no effect.
func (q *Queue) Start(proc Processor) {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go q.run(i+1, proc)
		}
	})
}

func (q *Queue) run(workerID int, proc Processor) {
	defer q.wg.Done()
	log := q.logger.With(zap.Int("worker_id", workerID))
	log.Info("worker started")

	for id := range q.ch {
		metrics.QueueDepth.Dec()
		ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
		err := proc(ctx, id)
		cancel()

		if err != nil {
			log.Error("processing failed", zap.Stringer("submission_id", id), zap.Error(err))
		} else {
			log.Info("processed submission", zap.Stringer("submission_id", id))
		}
	}

	log.Info("worker stopped")
}

// Enqueue schedules a submission. It blocks while the queue is full unless
// ctx is done first.
func (q *Queue) Enqueue(ctx context.Context, submissionID uuid.UUID) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", zap.Stringer("submission_id", submissionID))
		return ErrQueueClosed
	}

	metrics.QueueDepth.Inc()
	select {
	case q.ch <- submissionID:
	default:
		q.logger.Warn("queue full, applying backpressure", zap.Stringer("submission_id", submissionID))
		select {
		case q.ch <- submissionID:
		case <-ctx.Done():
			metrics.QueueDepth.Dec()
			return ctx.Err()
		}
	}
	q.logger.Debug("queued submission for processing", zap.Stringer("submission_id", submissionID))
	return nil
}

// Shutdown stops accepting jobs and waits for queued ones to drain or for ctx to end.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
		return ctx.Err()
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
		return nil
	}
}
