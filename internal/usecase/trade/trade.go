// Package trade reads the trade history.
package trade

import (
	"context"
	"time"

	ledgerv1 "github.com/Satyam-Vyas/order-book/internal/domain/ledger/v1"
	"github.com/Satyam-Vyas/order-book/internal/domain/order"
	orderv1 "github.com/Satyam-Vyas/order-book/internal/domain/order/v1"
	"github.com/Satyam-Vyas/order-book/pkg/errors"
)

// DefaultWindow is used when neither the caller nor the config picks one.
const DefaultWindow = 24 * time.Hour

type usecase struct {
	ledger        ledgerv1.Ledger
	defaultWindow time.Duration
	maxWindow     time.Duration
	now           func() time.Time
}

var _ order.TradeUsecase = (*usecase)(nil)

// NewUsecase creates a new trade usecase. A zero maxWindow leaves the
// window unbounded.
func NewUsecase(ledger ledgerv1.Ledger, defaultWindow, maxWindow time.Duration) *usecase {
	if defaultWindow <= 0 {
		defaultWindow = DefaultWindow
	}
	return &usecase{
		ledger:        ledger,
		defaultWindow: defaultWindow,
		maxWindow:     maxWindow,
		now:           time.Now,
	}
}

// Recent lists trades executed within window of now, newest first. Zero
// selects the default window, and windows above the maximum are clamped.
func (u *usecase) Recent(ctx context.Context, window time.Duration) ([]*orderv1.Trade, error) {
	switch {
	case window < 0:
		return nil, errors.NewValidationError("window must not be negative", "window")
	case window == 0:
		window = u.defaultWindow
	case u.maxWindow > 0 && window > u.maxWindow:
		window = u.maxWindow
	}

	var trades []*orderv1.Trade
	err := u.ledger.WithinReadTx(ctx, func(ctx context.Context) error {
		var err error
		trades, err = u.ledger.Trades().Since(ctx, u.now().Add(-window))
		return err
	})
	if err != nil {
		return nil, err
	}
	return trades, nil
}
