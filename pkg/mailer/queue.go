package mailer

import (
	"context"
	"errors"
)

// Message is a templated email as seen by the application layer.
type Message struct {
	To       string
	Subject  string
	Template string
	Context  map[string]any
}

// ErrSendDisabled is returned when mail sending is switched off by config.
var ErrSendDisabled = errors.New("mail sending disabled")

// Publisher puts a JSON body on the mail queue.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// QueueMailer hands messages to the email worker through a queue.
// Delivery (rendering, transport, retries) happens in the worker.
type QueueMailer struct {
	Pub     Publisher
	Enabled bool
}

func NewQueueMailer(pub Publisher, enabled bool) *QueueMailer {
	return &QueueMailer{Pub: pub, Enabled: enabled}
}

func (m *QueueMailer) SendMail(ctx context.Context, msg Message) error {
	if !m.Enabled {
		return ErrSendDisabled
	}
	if m.Pub == nil {
		return errors.New("mail queue not configured")
	}
	if msg.To == "" {
		return errors.New("mail recipient is empty")
	}
	job := EmailJob{
		To:       msg.To,
		Subject:  msg.Subject,
		Template: msg.Template,
		Data:     msg.Context,
	}
	return m.Pub.PublishJSON(ctx, job)
}
