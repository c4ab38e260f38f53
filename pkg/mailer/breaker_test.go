package mailer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/oksasatya/go-user-accounts/pkg/retry"
)

type flakySender struct {
	err   error
	calls int
}

func (f *flakySender) Send(context.Context, string, string, string, string) error {
	f.calls++
	return f.err
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	next := &flakySender{err: errors.New("502 bad gateway")}
	b := NewBreakerSender(next, 2, time.Minute, nil)
	ctx := context.Background()

	assert.Error(t, b.Send(ctx, "a@b.c", "s", "t", ""))
	assert.Error(t, b.Send(ctx, "a@b.c", "s", "t", ""))

	err := b.Send(ctx, "a@b.c", "s", "t", "")
	assert.True(t, IsOpen(err))
	assert.Equal(t, 2, next.calls)
}

func TestBreakerIgnoresPermanentErrors(t *testing.T) {
	next := &flakySender{err: retry.Permanent(errors.New("400 bad address"))}
	b := NewBreakerSender(next, 1, time.Minute, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err := b.Send(ctx, "a@b.c", "s", "t", "")
		assert.False(t, IsOpen(err))
		assert.False(t, retry.IsRetryable(err))
	}
	assert.Equal(t, 3, next.calls)
}

func TestBreakerPassesThrough(t *testing.T) {
	next := &flakySender{}
	b := NewBreakerSender(next, 0, time.Minute, nil)
	assert.NoError(t, b.Send(context.Background(), "a@b.c", "s", "t", ""))
	assert.False(t, IsOpen(nil))
}
