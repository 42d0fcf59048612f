package orderv1

import (
	"time"

	"github.com/shopspring/decimal"
)

// Book is a consistent view of every active order. Bids are sorted by
// price descending, asks by price ascending, both then by time.
type Book struct {
	Bids      []*Order  `json:"bids"`
	Asks      []*Order  `json:"asks"`
	Timestamp time.Time `json:"timestamp"`
}

// NewBook sorts both sides by priority and stamps the view.
func NewBook(bids, asks []*Order, at time.Time) *Book {
	SortByPriority(bids)
	SortByPriority(asks)
	return &Book{Bids: bids, Asks: asks, Timestamp: at}
}

// Level aggregates every resting order at one price.
type Level struct {
	Price         decimal.Decimal `json:"price"`
	TotalQuantity int64           `json:"total_quantity"`
	Orders        int             `json:"orders"`
}

// Depth is the book aggregated into price levels.
type Depth struct {
	Bids      []Level   `json:"bids"`
	Asks      []Level   `json:"asks"`
	Timestamp time.Time `json:"timestamp"`
}

// Depth collapses the book into price levels, keeping side order.
func (b *Book) Depth() *Depth {
	return &Depth{
		Bids:      levels(b.Bids),
		Asks:      levels(b.Asks),
		Timestamp: b.Timestamp,
	}
}

// BestBid returns the highest bid, or nil.
func (b *Book) BestBid() *Order {
	if len(b.Bids) == 0 {
		return nil
	}
	return b.Bids[0]
}

// BestAsk returns the lowest ask, or nil.
func (b *Book) BestAsk() *Order {
	if len(b.Asks) == 0 {
		return nil
	}
	return b.Asks[0]
}

func levels(orders []*Order) []Level {
	out := make([]Level, 0)
	for _, o := range orders {
		if n := len(out); n > 0 && out[n-1].Price.Equal(o.Price) {
			out[n-1].TotalQuantity += o.Quantity
			out[n-1].Orders++
			continue
		}
		out = append(out, Level{Price: o.Price, TotalQuantity: o.Quantity, Orders: 1})
	}
	return out
}
