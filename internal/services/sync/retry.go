package sync

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/finsync/internal/models"
)

// RetryPolicy retries remote calls that failed with models.ErrRemoteUnavailable
// after a fixed delay. Other errors fail immediately.
type RetryPolicy struct {
	Retries int
	Delay   time.Duration
	sleep   func(ctx context.Context, d time.Duration) error
}

// Execute calls fn until it succeeds, returns a non-retryable error, or the retries are exhausted.
func (p *RetryPolicy) Execute(ctx context.Context, logger arbor.ILogger, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= p.Retries; attempt++ {
		if attempt > 0 {
			logger.Debug().
				Int("attempt", attempt+1).
				Err(lastErr).
				Dur("delay", p.Delay).
				Msg("Retrying after delay")
			if err := p.sleep(ctx, p.Delay); err != nil {
				return err
			}
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !isRetryable(ctx, lastErr) {
			return lastErr
		}
	}
	return lastErr
}

func isRetryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	return errors.Is(err, models.ErrRemoteUnavailable)
}

// pacer spaces consecutive remote calls by a fixed delay plus random jitter.
// The first call of a cycle is not delayed.
type pacer struct {
	delay  time.Duration
	jitter time.Duration
	sleep  func(ctx context.Context, d time.Duration) error
	called bool
}

func (p *pacer) Wait(ctx context.Context) error {
	if !p.called {
		p.called = true
		return ctx.Err()
	}
	d := p.delay
	if p.jitter > 0 {
		d += time.Duration(rand.Int63n(int64(p.jitter) + 1))
	}
	return p.sleep(ctx, d)
}

// sleepContext blocks for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
