package bootstrap

import "github.com/Satyam-Vyas/order-book/internal/event"

// subscribe connects every consumer of the bus. Handlers run in
// subscription order on the submitting goroutine.
func (b *Bootstrap) subscribe() {
	bus := b.Bus

	bus.Subscribe(event.TopicTradeExecuted, b.Metrics.HandleTradeExecuted)
	bus.Subscribe(event.TopicTradeExecuted, b.Hub.HandleTradeExecuted)

	bus.Subscribe(event.TopicOrderMatched, b.Metrics.HandleOrderMatched)
	switch {
	case b.Infrastructure.Outbox != nil:
		bus.Subscribe(event.TopicOrderMatched, b.Infrastructure.Outbox.Handle)
	case b.Infrastructure.TradePublisher != nil:
		bus.Subscribe(event.TopicTradeExecuted, b.Infrastructure.TradePublisher.Handle)
	}
	bus.Subscribe(event.TopicOrderMatched, b.Usecase.BookRefresher.Handle)

	bus.Subscribe(event.TopicBookUpdated, b.Metrics.HandleBookUpdated)
	bus.Subscribe(event.TopicBookUpdated, b.Hub.HandleBookUpdated)
	if store := b.Infrastructure.SnapshotStore; store != nil {
		bus.Subscribe(event.TopicBookUpdated, store.Handle)
	}
}
