package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type sendgridClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendGridMailer delivers messages through the SendGrid v3 API.
type SendGridMailer struct {
	client sendgridClient
	from   *mail.Email
}

// NewSendGridMailer builds a mailer for apiKey sending as fromName <fromEmail>.
func NewSendGridMailer(apiKey, fromName, fromEmail string) (*SendGridMailer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("SENDGRID_API_KEY not set")
	}
	if fromEmail == "" {
		return nil, fmt.Errorf("NOTIFY_FROM_EMAIL not set")
	}
	return newSendGridMailer(sendgrid.NewSendClient(apiKey), fromName, fromEmail), nil
}

func newSendGridMailer(client sendgridClient, fromName, fromEmail string) *SendGridMailer {
	return &SendGridMailer{client: client, from: mail.NewEmail(fromName, fromEmail)}
}

// Send delivers msg. Any 4xx or 5xx response is an error so the queue retries.
func (m *SendGridMailer) Send(ctx context.Context, msg Message) error {
	to := mail.NewEmail(msg.ToName, msg.ToEmail)
	payload := mail.NewSingleEmail(m.from, msg.Subject, to, msg.Text, msg.HTML)

	resp, err := m.client.SendWithContext(ctx, payload)
	if err != nil {
		return fmt.Errorf("sendgrid send to %s: %w", msg.ToEmail, err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
