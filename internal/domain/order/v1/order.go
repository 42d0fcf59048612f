package orderv1

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Side is the direction of an order.
type Side string

const (
	// SideBid is a buy order.
	SideBid Side = "BID"
	// SideAsk is a sell order.
	SideAsk Side = "ASK"
)

// ParseSide accepts BID or ASK in any letter case.
func ParseSide(s string) (Side, bool) {
	switch Side(strings.ToUpper(strings.TrimSpace(s))) {
	case SideBid:
		return SideBid, true
	case SideAsk:
		return SideAsk, true
	}
	return "", false
}

// Opposite returns the counter side.
func (s Side) Opposite() Side {
	if s == SideBid {
		return SideAsk
	}
	return SideBid
}

// Order is a resting or incoming limit order. Side, Price, OriginalQuantity,
// CreatedAt and Sequence never change after insert. Quantity only decreases,
// and Active turns false exactly when Quantity reaches zero.
type Order struct {
	ID               string          `json:"id"`
	Owner            string          `json:"owner"`
	Side             Side            `json:"order_type"`
	Price            decimal.Decimal `json:"price"`
	Quantity         int64           `json:"quantity"`
	OriginalQuantity int64           `json:"original_quantity"`
	Active           bool            `json:"is_active"`
	CreatedAt        time.Time       `json:"created_at"`
	Sequence         int64           `json:"-"`
}

// NewOrder creates an active order with its full quantity remaining.
func NewOrder(id, owner string, side Side, price decimal.Decimal, quantity int64, createdAt time.Time) *Order {
	return &Order{
		ID:               id,
		Owner:            owner,
		Side:             side,
		Price:            price,
		Quantity:         quantity,
		OriginalQuantity: quantity,
		Active:           true,
		CreatedAt:        createdAt,
	}
}

// IsBid checks if the order is a bid (buy) order.
func (o *Order) IsBid() bool {
	return o.Side == SideBid
}

// IsAsk checks if the order is an ask (sell) order.
func (o *Order) IsAsk() bool {
	return o.Side == SideAsk
}

// IsFilled checks if nothing remains to be matched.
func (o *Order) IsFilled() bool {
	return o.Quantity == 0
}

// Crosses reports whether o, as the incoming order, may trade against
// counter: opposite sides and a bid price at or above the ask price.
func (o *Order) Crosses(counter *Order) bool {
	switch {
	case o.Side == counter.Side:
		return false
	case o.IsBid():
		return counter.Price.LessThanOrEqual(o.Price)
	default:
		return counter.Price.GreaterThanOrEqual(o.Price)
	}
}

// Fill removes qty from the remaining quantity and deactivates the order
// once nothing remains.
func (o *Order) Fill(qty int64) error {
	if qty <= 0 {
		return fmt.Errorf("fill quantity must be positive, got %d", qty)
	}
	if qty > o.Quantity {
		return fmt.Errorf("fill of %d exceeds remaining %d on order %s", qty, o.Quantity, o.ID)
	}

	o.Quantity -= qty
	if o.Quantity == 0 {
		o.Active = false
	}
	return nil
}

// Clone returns a copy that shares nothing mutable with o.
func (o *Order) Clone() *Order {
	c := *o
	return &c
}

// PriceString renders the price with exactly two decimals.
func (o *Order) PriceString() string {
	return o.Price.StringFixed(2)
}
