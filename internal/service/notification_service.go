package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/mentor-site-api/internal/models"
	"github.com/noah-isme/mentor-site-api/pkg/notify"
)

// Dispatcher queues outbound email.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg notify.Message) error
}

// NotificationService tells the site owner about new public submissions.
// Failures never reach the visitor; they are logged and counted.
type NotificationService struct {
	dispatcher Dispatcher
	adminName  string
	adminEmail string
	metrics    *MetricsService
	logger     *zap.Logger
}

// NewNotificationService constructs the service. A nil dispatcher or empty
// admin address disables notifications.
func NewNotificationService(dispatcher Dispatcher, adminName, adminEmail string, metrics *MetricsService, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		adminName:  adminName,
		adminEmail: adminEmail,
		metrics:    metrics,
		logger:     logger,
	}
}

func (s *NotificationService) enabled() bool {
	return s != nil && s.dispatcher != nil && s.adminEmail != ""
}

// ReviewSubmitted announces a review awaiting moderation.
func (s *NotificationService) ReviewSubmitted(ctx context.Context, review *models.Review) {
	if s != nil {
		s.metrics.RecordSubmission("review")
	}
	if !s.enabled() || review == nil {
		return
	}
	s.send(ctx, notify.Message{
		Subject: fmt.Sprintf("New %s review awaiting moderation", review.ProgramType),
		Text: fmt.Sprintf("%s <%s> rated %d/5: %s\n\n%s",
			review.Name, review.Email, review.Rating, review.Title, review.Content),
	})
}

// ContactReceived forwards a new contact message.
func (s *NotificationService) ContactReceived(ctx context.Context, msg *models.ContactMessage) {
	if s != nil {
		s.metrics.RecordSubmission("contact")
	}
	if !s.enabled() || msg == nil {
		return
	}
	subject := msg.Subject
	if subject == "" {
		subject = "(no subject)"
	}
	s.send(ctx, notify.Message{
		Subject: "New contact message: " + subject,
		Text:    fmt.Sprintf("From %s <%s>\n\n%s", msg.Name, msg.Email, msg.Message),
	})
}

func (s *NotificationService) send(ctx context.Context, msg notify.Message) {
	msg.ToName = s.adminName
	msg.ToEmail = s.adminEmail
	if err := s.dispatcher.Dispatch(ctx, msg); err != nil {
		s.metrics.RecordNotification("dropped")
		s.logger.Warn("notification not queued", zap.String("subject", msg.Subject), zap.Error(err))
	}
}

type meteredMailer struct {
	next    notify.Mailer
	metrics *MetricsService
}

// NewMeteredMailer counts successful deliveries of next.
func NewMeteredMailer(next notify.Mailer, metrics *MetricsService) notify.Mailer {
	return meteredMailer{next: next, metrics: metrics}
}

func (m meteredMailer) Send(ctx context.Context, msg notify.Message) error {
	if err := m.next.Send(ctx, msg); err != nil {
		return err
	}
	m.metrics.RecordNotification("sent")
	return nil
}
