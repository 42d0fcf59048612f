package event

import orderv1 "github.com/Satyam-Vyas/order-book/internal/domain/order/v1"

// Topics published after a match commits.
const (
	// TopicOrderMatched carries an OrderMatched once per submission.
	TopicOrderMatched = "order.matched"
	// TopicTradeExecuted carries one *orderv1.Trade per trade, in execution order.
	TopicTradeExecuted = "trade.executed"
	// TopicBookUpdated carries the *orderv1.Book read after a submission.
	TopicBookUpdated = "book.updated"
)

// OrderMatched describes one committed submission.
type OrderMatched struct {
	Order  *orderv1.Order
	Trades []*orderv1.Trade
}
