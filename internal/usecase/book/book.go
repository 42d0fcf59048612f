// Package book reads the live order book.
package book

import (
	"context"
	"time"

	ledgerv1 "github.com/Satyam-Vyas/order-book/internal/domain/ledger/v1"
	"github.com/Satyam-Vyas/order-book/internal/domain/order"
	orderv1 "github.com/Satyam-Vyas/order-book/internal/domain/order/v1"
)

type usecase struct {
	ledger ledgerv1.Ledger
	now    func() time.Time
}

var _ order.BookUsecase = (*usecase)(nil)

// NewUsecase creates a new book usecase.
func NewUsecase(ledger ledgerv1.Ledger) *usecase {
	return &usecase{ledger: ledger, now: time.Now}
}

// Snapshot reads both sides inside one read-only unit, so a concurrent
// match is either fully visible or not at all.
func (u *usecase) Snapshot(ctx context.Context) (*orderv1.Book, error) {
	var bids, asks []*orderv1.Order
	err := u.ledger.WithinReadTx(ctx, func(ctx context.Context) error {
		var err error
		if bids, err = u.ledger.Orders().ActiveBySide(ctx, orderv1.SideBid); err != nil {
			return err
		}
		asks, err = u.ledger.Orders().ActiveBySide(ctx, orderv1.SideAsk)
		return err
	})
	if err != nil {
		return nil, err
	}

	return orderv1.NewBook(bids, asks, u.now()), nil
}

// Depth aggregates a snapshot into price levels.
func (u *usecase) Depth(ctx context.Context) (*orderv1.Depth, error) {
	b, err := u.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return b.Depth(), nil
}
