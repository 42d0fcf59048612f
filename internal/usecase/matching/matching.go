// Package matching executes incoming limit orders against the ledger.
package matching

import (
	"context"
	"fmt"
	"time"

	ledgerv1 "github.com/Satyam-Vyas/order-book/internal/domain/ledger/v1"
	"github.com/Satyam-Vyas/order-book/internal/domain/order"
	orderv1 "github.com/Satyam-Vyas/order-book/internal/domain/order/v1"
	"github.com/Satyam-Vyas/order-book/internal/event"
	"github.com/Satyam-Vyas/order-book/pkg/errors"
	"github.com/Satyam-Vyas/order-book/pkg/logger"
)

// IDGenerator hands out order and trade IDs.
type IDGenerator interface {
	NewID() string
}

type usecase struct {
	ledger ledgerv1.Ledger
	ids    IDGenerator
	bus    event.Publisher
	logger logger.Interface
	opts   *Options
	now    func() time.Time
}

var _ order.MatchingUsecase = (*usecase)(nil)

// NewUsecase creates a new matching usecase.
func NewUsecase(ledger ledgerv1.Ledger, ids IDGenerator, bus event.Publisher, log logger.Interface, opts *Options) *usecase {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &usecase{
		ledger: ledger,
		ids:    ids,
		bus:    bus,
		logger: log,
		opts:   opts,
		now:    time.Now,
	}
}

// SubmitOrder validates req and matches it in one atomic unit. Events are
// published only after the unit commits.
func (u *usecase) SubmitOrder(ctx context.Context, req *orderv1.PlaceOrderRequest) (*orderv1.SubmitResult, error) {
	if err := req.Validate(u.opts.MaxNotional); err != nil {
		u.logger.InfoContext(ctx, "order rejected",
			logger.NewField("owner", req.Owner),
			logger.NewField("error", err.Error()),
		)
		return nil, err
	}

	var result *orderv1.SubmitResult
	err := u.retry(ctx, func() error {
		var err error
		result, err = u.match(ctx, req)
		return err
	})
	if err != nil {
		u.logger.ErrorContext(ctx, err,
			logger.NewField("action", "submit_order"),
			logger.NewField("owner", req.Owner),
		)
		return nil, err
	}

	u.logger.InfoContext(ctx, "order matched",
		logger.NewField("order_id", result.Order.ID),
		logger.NewField("side", string(result.Order.Side)),
		logger.NewField("price", result.Order.PriceString()),
		logger.NewField("filled", result.Filled()),
		logger.NewField("trades", len(result.Trades)),
	)

	for _, t := range result.Trades {
		u.bus.Publish(ctx, event.TopicTradeExecuted, t)
	}
	u.bus.Publish(ctx, event.TopicOrderMatched, event.OrderMatched{
		Order:  result.Order,
		Trades: result.Trades,
	})

	return result, nil
}

// match runs one attempt. The order is stamped inside the unit, so
// created-at follows the order in which submissions enter the book.
func (u *usecase) match(ctx context.Context, req *orderv1.PlaceOrderRequest) (*orderv1.SubmitResult, error) {
	var (
		incoming *orderv1.Order
		trades   []*orderv1.Trade
	)

	err := u.ledger.WithinTx(ctx, func(ctx context.Context) error {
		incoming = orderv1.NewOrder(u.ids.NewID(), req.Owner, req.Side, req.Price, req.Quantity, u.now())
		trades = make([]*orderv1.Trade, 0)

		if err := u.ledger.Orders().Insert(ctx, incoming); err != nil {
			return err
		}

		candidates, err := u.ledger.Orders().LockEligible(ctx, incoming)
		if err != nil {
			return err
		}

		for i, maker := range candidates {
			if incoming.IsFilled() {
				break
			}
			if err := checkCandidate(incoming, maker); err != nil {
				return err
			}
			if i > 0 && orderv1.HasPriority(maker, candidates[i-1]) {
				return errors.NewInvariantError(fmt.Sprintf("order %s is out of priority order", maker.ID))
			}

			fill := min(incoming.Quantity, maker.Quantity)
			trade := orderv1.NewTrade(u.ids.NewID(), incoming, maker, fill, u.now())

			if err := maker.Fill(fill); err != nil {
				return errors.NewInvariantError(err.Error())
			}
			if err := u.ledger.Orders().Update(ctx, maker); err != nil {
				return err
			}
			if err := u.ledger.Trades().Insert(ctx, trade); err != nil {
				return err
			}
			if err := incoming.Fill(fill); err != nil {
				return errors.NewInvariantError(err.Error())
			}
			trades = append(trades, trade)
		}

		if len(trades) == 0 {
			return nil
		}
		return u.ledger.Orders().Update(ctx, incoming)
	})
	if err != nil {
		return nil, err
	}

	return &orderv1.SubmitResult{Order: incoming, Trades: trades}, nil
}

// checkCandidate rejects a locked order the ledger should never have
// returned for incoming.
func checkCandidate(incoming, maker *orderv1.Order) error {
	switch {
	case !maker.Active:
		return errors.NewInvariantError(fmt.Sprintf("eligible order %s is inactive", maker.ID))
	case maker.Quantity <= 0:
		return errors.NewInvariantError(fmt.Sprintf("eligible order %s has non-positive quantity %d", maker.ID, maker.Quantity))
	case maker.Owner == incoming.Owner:
		return errors.NewInvariantError(fmt.Sprintf("eligible order %s belongs to the submitter", maker.ID))
	case !incoming.Crosses(maker):
		return errors.NewInvariantError(fmt.Sprintf("eligible order %s does not cross %s", maker.ID, incoming.ID))
	}
	return nil
}
