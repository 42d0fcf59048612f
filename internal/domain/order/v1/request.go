package orderv1

import (
	"fmt"
	"unicode/utf8"

	"github.com/Satyam-Vyas/order-book/pkg/errors"
	"github.com/shopspring/decimal"
)

// MaxPrice is the largest price a NUMERIC(10,2) column holds.
var MaxPrice = decimal.RequireFromString("99999999.99")

// MaxOwnerLength is the width of the owner columns, in characters.
const MaxOwnerLength = 64

// DefaultMaxNotional bounds price times quantity when no limit is configured.
var DefaultMaxNotional = decimal.NewFromInt(1_000_000_000)

// PlaceOrderRequest is a validated-on-entry limit order submission.
type PlaceOrderRequest struct {
	Owner    string          `json:"owner"`
	Side     Side            `json:"order_type"`
	Price    decimal.Decimal `json:"price"`
	Quantity int64           `json:"quantity"`
}

// Validate collects every problem with the request. It returns nil or a
// *errors.BaseError whose details all carry OrderValidationError.
func (r *PlaceOrderRequest) Validate(maxNotional decimal.Decimal) error {
	if maxNotional.IsZero() {
		maxNotional = DefaultMaxNotional
	}

	base := errors.NewBaseError()
	add := func(message, field string) {
		base.AddErrorDetails(errors.NewErrorDetails(message, string(errors.OrderValidationError), field))
	}

	switch n := utf8.RuneCountInString(r.Owner); {
	case n == 0:
		add("owner is required", "owner")
	case n > MaxOwnerLength:
		add(fmt.Sprintf("owner must be at most %d characters", MaxOwnerLength), "owner")
	}

	if r.Side != SideBid && r.Side != SideAsk {
		add("order_type must be BID or ASK", "order_type")
	}

	priceOK := true
	switch {
	case !r.Price.IsPositive():
		add("price must be greater than zero", "price")
		priceOK = false
	case !r.Price.Equal(r.Price.Truncate(2)):
		add("price must have at most 2 decimal places", "price")
		priceOK = false
	case r.Price.GreaterThan(MaxPrice):
		add("price must not exceed 99999999.99", "price")
		priceOK = false
	}

	if r.Quantity < 1 {
		add("quantity must be at least 1", "quantity")
	} else if priceOK && r.Price.Mul(decimal.NewFromInt(r.Quantity)).GreaterThan(maxNotional) {
		add("order value must not exceed "+maxNotional.String(), "notional")
	}

	if base.HasDetails() {
		return base
	}
	return nil
}
