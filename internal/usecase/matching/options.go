package matching

import (
	"time"

	"github.com/shopspring/decimal"

	orderv1 "github.com/Satyam-Vyas/order-book/internal/domain/order/v1"
)

// Options tunes validation and conflict retries.
type Options struct {
	// MaxRetries is how many times a submission that hit a concurrency
	// conflict is tried again. Zero surfaces the first conflict.
	MaxRetries int
	// RetryBaseDelay is the backoff before the first retry; it doubles on
	// every further attempt up to RetryMaxDelay.
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
	// MaxNotional caps price times quantity.
	MaxNotional decimal.Decimal
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() *Options {
	return &Options{
		MaxRetries:     5,
		RetryBaseDelay: 10 * time.Millisecond,
		RetryMaxDelay:  500 * time.Millisecond,
		MaxNotional:    orderv1.DefaultMaxNotional,
	}
}
