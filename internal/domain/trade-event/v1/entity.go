package tradeeventv1

import (
	"encoding/json"
	"time"

	orderv1 "github.com/Satyam-Vyas/order-book/internal/domain/order/v1"
)

// TradeEvent is the wire form of an executed trade.
type TradeEvent struct {
	TradeID     string    `json:"trade_id"`
	BuyOrderID  string    `json:"buy_order_id"`
	SellOrderID string    `json:"sell_order_id"`
	Buyer       string    `json:"buyer"`
	Seller      string    `json:"seller"`
	Price       string    `json:"price"`
	Quantity    int64     `json:"quantity"`
	TakerSide   string    `json:"taker_side"`
	ExecutedAt  time.Time `json:"executed_at"`
}

// FromTrade creates a trade event from a committed trade.
func FromTrade(trade *orderv1.Trade) *TradeEvent {
	return &TradeEvent{
		TradeID:     trade.ID,
		BuyOrderID:  trade.BidOrderID,
		SellOrderID: trade.AskOrderID,
		Buyer:       trade.BidOwner,
		Seller:      trade.AskOwner,
		Price:       trade.Price.StringFixed(2),
		Quantity:    trade.Quantity,
		TakerSide:   string(trade.TakerSide),
		ExecutedAt:  trade.CreatedAt.UTC(),
	}
}

// ToBytes converts the trade event to a byte array.
func ToBytes(event *TradeEvent) []byte {
	data, err := json.Marshal(event)
	if err != nil {
		return nil
	}

	return data
}

// FromBytes converts a byte array to a trade event.
func FromBytes(data []byte) *TradeEvent {
	var event TradeEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil
	}
	return &event
}
