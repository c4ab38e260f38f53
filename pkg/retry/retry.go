package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// Config holds retry configuration
type Config struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration

	// OnRetry is called before each retry with the upcoming attempt number (1-based).
	OnRetry func(attempt int, err error)
}

// ErrMaxRetries is wrapped by Do when every attempt failed.
var ErrMaxRetries = errors.New("max retries exceeded")

type permanentError struct{ err error }

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsRetryable checks if an error is retryable. Unknown errors are.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var p *permanentError
	if errors.As(err, &p) {
		return false
	}
	return !errors.Is(err, context.Canceled)
}

// CalculateDelay calculates exponential backoff delay
func CalculateDelay(attempt int, cfg Config) time.Duration {
	delay := time.Duration(float64(cfg.InitialDelay) * math.Pow(2, float64(attempt)))
	if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
		delay = cfg.MaxDelay
	}
	return delay
}

// Do executes fn, retrying retryable failures up to cfg.MaxRetries times.
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			if cfg.OnRetry != nil {
				cfg.OnRetry(attempt, lastErr)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(CalculateDelay(attempt-1, cfg)):
			}
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return err
		}
	}

	return fmt.Errorf("%w: %w", ErrMaxRetries, lastErr)
}
