package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrQueueClosed is returned by Enqueue before Start and after Stop.
	ErrQueueClosed = errors.New("queue closed")
	// ErrQueueFull is returned by Enqueue when the buffer has no room.
	ErrQueueFull = errors.New("queue full")
)

// Job is one unit of background work.
type Job struct {
	ID       string
	Type     string
	Payload  interface{}
	Attempt  int
	Enqueued time.Time
}

// Handler processes a job. A returned error schedules a retry.
type Handler func(context.Context, Job) error

// QueueConfig tunes a Queue. Zero values select defaults.
type QueueConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	// RetryDelay is multiplied by the attempt number before each retry.
	RetryDelay time.Duration
	// JobTimeout bounds one handler call; zero leaves it unbounded.
	JobTimeout time.Duration
	// DrainTimeout is how long Stop keeps working on buffered and retrying jobs.
	DrainTimeout time.Duration
	Logger       *zap.Logger
	// OnExhausted is called once a job has failed MaxRetries+1 times.
	OnExhausted func(Job, error)
}

// Queue runs jobs on a fixed pool of goroutines with linear-backoff retries.
// Stop drains outstanding work before returning, bounded by DrainTimeout.
type Queue struct {
	name    string
	handler Handler
	cfg     QueueConfig
	logger  *zap.Logger
	jobs    chan Job

	mu      sync.RWMutex
	open    bool
	started bool
	ctx     context.Context
	cancel  context.CancelFunc

	workers     sync.WaitGroup
	outstanding sync.WaitGroup
}

// NewQueue builds a queue around handler. It accepts jobs once started.
func NewQueue(name string, handler Handler, cfg QueueConfig) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 16
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{
		name:    name,
		handler: handler,
		cfg:     cfg,
		logger:  logger.With(zap.String("queue", name)),
		jobs:    make(chan Job, cfg.BufferSize),
	}
}

// Start launches the workers. Later calls are no-ops.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.ctx, q.cancel = context.WithCancel(context.WithoutCancel(ctx))
	for i := 0; i < q.cfg.Workers; i++ {
		q.workers.Add(1)
		go q.work()
	}
	q.started, q.open = true, true
	q.logger.Info("queue started", zap.Int("workers", q.cfg.Workers))
}

// Stop refuses new jobs, waits for outstanding ones up to DrainTimeout and
// then shuts the workers down. Jobs still pending at the deadline are dropped.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.open {
		q.mu.Unlock()
		return
	}
	q.open = false
	q.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		q.outstanding.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-time.After(q.cfg.DrainTimeout):
		q.logger.Warn("queue drain timed out", zap.Duration("timeout", q.cfg.DrainTimeout), zap.Int("buffered", len(q.jobs)))
	}
	q.cancel()
	q.workers.Wait()
	q.logger.Info("queue stopped")
}

// Enqueue hands job to the workers. It never waits: a full buffer fails
// with ErrQueueFull.
func (q *Queue) Enqueue(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("enqueue on %s: %w", q.name, err)
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now().UTC()
	}

	q.mu.RLock()
	defer q.mu.RUnlock()
	if !q.open {
		return fmt.Errorf("enqueue on %s: %w", q.name, ErrQueueClosed)
	}
	q.outstanding.Add(1)
	select {
	case q.jobs <- job:
		return nil
	default:
		q.outstanding.Done()
		return fmt.Errorf("enqueue on %s: %w", q.name, ErrQueueFull)
	}
}

func (q *Queue) work() {
	defer q.workers.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case job := <-q.jobs:
			q.run(job)
		}
	}
}

func (q *Queue) run(job Job) {
	ctx := q.ctx
	if q.cfg.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.cfg.JobTimeout)
		defer cancel()
	}
	err := q.handler(ctx, job)
	if err == nil {
		q.outstanding.Done()
		return
	}

	job.Attempt++
	fields := []zap.Field{zap.String("job_id", job.ID), zap.String("type", job.Type), zap.Int("attempt", job.Attempt), zap.Error(err)}
	if job.Attempt > q.cfg.MaxRetries {
		q.logger.Error("job exceeded retries", fields...)
		if q.cfg.OnExhausted != nil {
			q.cfg.OnExhausted(job, err)
		}
		q.outstanding.Done()
		return
	}
	q.logger.Warn("job failed, retrying", fields...)
	go q.retry(job)
}

// retry re-queues job after its backoff without touching the outstanding
// count, so Stop keeps waiting for it.
func (q *Queue) retry(job Job) {
	timer := time.NewTimer(q.cfg.RetryDelay * time.Duration(job.Attempt))
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-q.ctx.Done():
		q.logger.Warn("retry dropped on shutdown", zap.String("job_id", job.ID))
		q.outstanding.Done()
		return
	}
	select {
	case q.jobs <- job:
	case <-q.ctx.Done():
		q.logger.Warn("retry dropped on shutdown", zap.String("job_id", job.ID))
		q.outstanding.Done()
	}
}
