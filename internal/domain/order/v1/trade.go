package orderv1

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade is an immutable execution between one bid and one ask. Price is
// always the resting (maker) order's price.
type Trade struct {
	ID         string          `json:"id"`
	BidOwner   string          `json:"buyer"`
	AskOwner   string          `json:"seller"`
	BidOrderID string          `json:"bid_order_id"`
	AskOrderID string          `json:"ask_order_id"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int64           `json:"quantity"`
	TakerSide  Side            `json:"taker_side"`
	CreatedAt  time.Time       `json:"created_at"`
}

// NewTrade records a fill of qty between the incoming taker and the resting maker.
func NewTrade(id string, taker, maker *Order, qty int64, at time.Time) *Trade {
	bid, ask := taker, maker
	if taker.IsAsk() {
		bid, ask = maker, taker
	}

	return &Trade{
		ID:         id,
		BidOwner:   bid.Owner,
		AskOwner:   ask.Owner,
		BidOrderID: bid.ID,
		AskOrderID: ask.ID,
		Price:      maker.Price,
		Quantity:   qty,
		TakerSide:  taker.Side,
		CreatedAt:  at,
	}
}

// Notional is price times quantity.
func (t *Trade) Notional() decimal.Decimal {
	return t.Price.Mul(decimal.NewFromInt(t.Quantity))
}

// SubmitResult is the outcome of one submission: the incoming order in its
// final state and the trades it produced, in execution order.
type SubmitResult struct {
	Order  *Order   `json:"order"`
	Trades []*Trade `json:"trades"`
}

// Filled is the quantity the incoming order traded.
func (r *SubmitResult) Filled() int64 {
	var n int64
	for _, t := range r.Trades {
		n += t.Quantity
	}
	return n
}
