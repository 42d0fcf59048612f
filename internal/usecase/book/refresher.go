package book

import (
	"context"

	"github.com/Satyam-Vyas/order-book/internal/domain/order"
	"github.com/Satyam-Vyas/order-book/internal/event"
	"github.com/Satyam-Vyas/order-book/pkg/logger"
)

// Refresher turns every committed submission into a book.updated event
// carrying a fresh snapshot.
type Refresher struct {
	book   order.BookUsecase
	bus    event.Publisher
	logger logger.Interface
}

// NewRefresher creates a new Refresher.
func NewRefresher(book order.BookUsecase, bus event.Publisher, log logger.Interface) *Refresher {
	return &Refresher{book: book, bus: bus, logger: log}
}

// Handle is subscribed to event.TopicOrderMatched.
func (r *Refresher) Handle(ctx context.Context, _ any) {
	b, err := r.book.Snapshot(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, err, logger.NewField("action", "refresh_book"))
		return
	}
	r.bus.Publish(ctx, event.TopicBookUpdated, b)
}
