package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-accounts/config"
	"github.com/oksasatya/go-user-accounts/pkg/helpers"
	"github.com/oksasatya/go-user-accounts/pkg/mailer"
	mailtpl "github.com/oksasatya/go-user-accounts/pkg/mailer/templates"
	"github.com/oksasatya/go-user-accounts/pkg/metrics"
	"github.com/oksasatya/go-user-accounts/pkg/retry"
)

// Failure reasons used as the metrics label.
const (
	reasonDecode    = "decode"
	reasonRender    = "render"
	reasonInvalid   = "invalid"
	reasonPermanent = "permanent"
	reasonExhausted = "exhausted"
	reasonBreaker   = "breaker_open"
)

var errInvalidJob = errors.New("invalid email job")

// processor turns one queued EmailJob into a delivered email.
type processor struct {
	cfg         *config.Config
	sender      mailer.Sender
	logger      *logrus.Logger
	retry       retry.Config
	sendTimeout time.Duration
}

func newProcessor(cfg *config.Config, sender mailer.Sender, logger *logrus.Logger) *processor {
	return &processor{
		cfg:    cfg,
		sender: sender,
		logger: logger,
		retry: retry.Config{
			MaxRetries:   cfg.MailMaxRetries,
			InitialDelay: cfg.MailRetryInitialDelay,
			MaxDelay:     cfg.MailRetryMaxDelay,
		},
		sendTimeout: 15 * time.Second,
	}
}

type rendered struct {
	subject, text, html string
}

// handle returns nil when the email was delivered. Any error means the
// message should be dropped; transient failures were already retried.
func (p *processor) handle(ctx context.Context, body []byte) error {
	var job mailer.EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		metrics.RecordMailFailed("unknown", reasonDecode)
		return fmt.Errorf("decode job: %w", err)
	}
	helpers.NormalizeTemplate(&job)
	helpers.EnsureRecipient(&job)

	label := job.Template
	if label == "" {
		label = "raw"
	}
	metrics.RecordMailConsumed(label)
	log := p.logger.WithFields(logrus.Fields{"to": job.To, "template": label})

	if job.To == "" {
		metrics.RecordMailFailed(label, reasonInvalid)
		return fmt.Errorf("%w: missing recipient", errInvalidJob)
	}

	out, err := p.render(job)
	if err != nil {
		metrics.RecordMailFailed(label, reasonRender)
		return err
	}

	cfg := p.retry
	cfg.OnRetry = func(attempt int, err error) {
		metrics.RecordMailRetry(label)
		log.WithError(err).WithField("attempt", attempt).Warn("retrying email send")
	}

	start := time.Now()
	err = retry.Do(ctx, cfg, func(ctx context.Context) error {
		c, cancel := context.WithTimeout(ctx, p.sendTimeout)
		defer cancel()
		return p.sender.Send(c, job.To, out.subject, out.text, out.html)
	})
	if err != nil {
		reason := reasonPermanent
		switch {
		case mailer.IsOpen(err):
			reason = reasonBreaker
		case errors.Is(err, retry.ErrMaxRetries):
			reason = reasonExhausted
		}
		metrics.RecordMailFailed(label, reason)
		return fmt.Errorf("send: %w", err)
	}
	metrics.RecordMailSent(label, time.Since(start))
	log.Info("email sent")
	return nil
}

// render prefers the job's own subject over the template's.
func (p *processor) render(job mailer.EmailJob) (rendered, error) {
	if job.Template == "" {
		if strings.TrimSpace(job.Subject) == "" || (job.Text == "" && job.HTML == "") {
			return rendered{}, fmt.Errorf("%w: raw job needs subject and body", errInvalidJob)
		}
		return rendered{subject: job.Subject, text: job.Text, html: job.HTML}, nil
	}
	if !mailtpl.Exists(job.Template) {
		return rendered{}, fmt.Errorf("%w: unknown template %q", errInvalidJob, job.Template)
	}

	data := mailtpl.FromContext(p.cfg, job.To, job.Data)
	subject, text, html, err := mailtpl.Render(job.Template, data)
	if err != nil {
		return rendered{}, fmt.Errorf("render %s: %w", job.Template, err)
	}
	if s := strings.TrimSpace(job.Subject); s != "" {
		subject = s
	}
	return rendered{subject: subject, text: text, html: html}, nil
}
