package mailer

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/oksasatya/go-user-accounts/pkg/retry"
)

// BreakerSender stops calling the transport after maxFailures consecutive
// transient failures and probes it again after timeout.
type BreakerSender struct {
	next Sender
	cb   *gobreaker.CircuitBreaker
}

func NewBreakerSender(next Sender, maxFailures uint32, timeout time.Duration, logger *logrus.Logger) *BreakerSender {
	if maxFailures == 0 {
		maxFailures = 5
	}
	st := gobreaker.Settings{
		Name:        "mail-transport",
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		// a rejected message says nothing about transport health
		IsSuccessful: func(err error) bool {
			return err == nil || !retry.IsRetryable(err)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if logger != nil {
				logger.WithFields(logrus.Fields{"name": name, "from": from.String(), "to": to.String()}).Warn("circuit breaker state")
			}
		},
	}
	return &BreakerSender{next: next, cb: gobreaker.NewCircuitBreaker(st)}
}

func (b *BreakerSender) Send(ctx context.Context, to, subject, text, html string) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.next.Send(ctx, to, subject, text, html)
	})
	return err
}

// IsOpen reports whether err came from an open (or half-open and busy) breaker.
func IsOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
