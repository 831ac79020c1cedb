package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/mentor-site-api/pkg/jobs"
)

const jobTypeEmail = "email"

// Message is a single outbound email.
type Message struct {
	ToName  string
	ToEmail string
	Subject string
	Text    string
	HTML    string
}

// Mailer delivers one message synchronously.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Dispatcher hands messages to a background queue so request handlers never
// wait on the mail provider.
type Dispatcher struct {
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewDispatcher wires mailer into a retrying job queue. The queue must be
// started by the caller.
func NewDispatcher(mailer Mailer, cfg jobs.QueueConfig) *Dispatcher {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	logger := cfg.Logger
	handler := func(ctx context.Context, job jobs.Job) error {
		msg, ok := job.Payload.(Message)
		if !ok {
			logger.Error("unexpected notification payload", zap.String("job_id", job.ID))
			return nil
		}
		return mailer.Send(ctx, msg)
	}
	return &Dispatcher{queue: jobs.NewQueue("notifications", handler, cfg), logger: logger}
}

// Queue exposes the underlying job queue for lifecycle management.
func (d *Dispatcher) Queue() *jobs.Queue {
	return d.queue
}

// Dispatch enqueues msg for delivery. It fails fast with jobs.ErrQueueFull
// when the provider is backed up.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) error {
	if msg.ToEmail == "" {
		return fmt.Errorf("notification recipient missing")
	}
	return d.queue.Enqueue(ctx, jobs.Job{Type: jobTypeEmail, Payload: msg})
}

// LogMailer writes messages to the log instead of sending them. Used when
// no provider is configured.
type LogMailer struct {
	Logger *zap.Logger
}

// Send logs the message envelope.
func (m LogMailer) Send(_ context.Context, msg Message) error {
	logger := m.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("notification suppressed",
		zap.String("to", msg.ToEmail),
		zap.String("subject", msg.Subject),
	)
	return nil
}
