package mailer

import (
	"context"
	"errors"
	"net/http"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"

	"github.com/oksasatya/go-user-accounts/pkg/retry"
)

// Sender delivers a rendered email.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// Mailgun delivers rendered email through the Mailgun API.
type Mailgun struct {
	Sender  string
	Timeout time.Duration
	client  *mg.MailgunImpl
}

func NewMailgun(domain, apiKey, sender string) *Mailgun {
	return &Mailgun{Sender: sender, Timeout: 10 * time.Second, client: mg.NewMailgun(domain, apiKey)}
}

// Send sends an email via Mailgun. html is optional; if provided it will be used as HTML body.
func (m *Mailgun) Send(ctx context.Context, to, subject, text, html string) error {
	msg := m.client.NewMessage(m.Sender, subject, text, to)
	if html != "" {
		msg.SetHtml(html)
	}
	c, cancel := context.WithTimeout(ctx, m.Timeout)
	defer cancel()
	_, _, err := m.client.Send(c, msg)
	return Classify(err)
}

// Classify marks Mailgun rejections that will never succeed (4xx other than
// 429) as permanent so the worker does not retry them.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var ure *mg.UnexpectedResponseError
	if errors.As(err, &ure) {
		if ure.Actual >= 400 && ure.Actual < 500 && ure.Actual != http.StatusTooManyRequests {
			return retry.Permanent(err)
		}
	}
	return err
}
