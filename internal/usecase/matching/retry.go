package matching

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/Satyam-Vyas/order-book/pkg/errors"
	"github.com/Satyam-Vyas/order-book/pkg/logger"
)

// retry runs fn until it succeeds, fails with anything other than a
// concurrency conflict, or the retry budget is spent.
func (u *usecase) retry(ctx context.Context, fn func() error) error {
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil || !errors.HasCode(err, errors.ConcurrencyConflictError) || attempt >= u.opts.MaxRetries {
			return err
		}

		delay := backoff(attempt, u.opts.RetryBaseDelay, u.opts.RetryMaxDelay)
		u.logger.WarnContext(ctx, "matching conflict, retrying",
			logger.NewField("attempt", attempt+1),
			logger.NewField("delay", delay.String()),
			logger.NewField("error", err.Error()),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
}

// backoff doubles base per attempt, caps it at maxDelay and keeps a random
// half of it so concurrent retries spread out.
func backoff(attempt int, base, maxDelay time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}

	d := base
	for i := 0; i < attempt && d < maxDelay; i++ {
		d *= 2
	}
	if maxDelay > 0 && d > maxDelay {
		d = maxDelay
	}

	half := d / 2
	return half + rand.N(d-half+1)
}
