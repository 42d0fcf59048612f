package v1

import (
	"time"

	"github.com/shopspring/decimal"

	orderv1 "github.com/Satyam-Vyas/order-book/internal/domain/order/v1"
)

// PlaceOrderEvent is a limit order submitted through the orders topic.
type PlaceOrderEvent struct {
	EventID   string          `json:"event_id"`
	Timestamp time.Time       `json:"timestamp"`
	UserID    string          `json:"user_id"`
	OrderType string          `json:"order_type"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
}

// ToRequest converts the event into a submission. An unknown order type is
// left empty for validation to reject.
func (e *PlaceOrderEvent) ToRequest() *orderv1.PlaceOrderRequest {
	side, _ := orderv1.ParseSide(e.OrderType)
	return &orderv1.PlaceOrderRequest{
		Owner:    e.UserID,
		Side:     side,
		Price:    e.Price,
		Quantity: e.Quantity,
	}
}
