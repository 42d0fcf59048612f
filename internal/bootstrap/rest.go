package bootstrap

import (
	"context"

	orderv1 "github.com/Satyam-Vyas/order-book/internal/domain/order/v1"
	"github.com/Satyam-Vyas/order-book/internal/rest"
	"github.com/Satyam-Vyas/order-book/internal/ws"
)

// REST holds the HTTP handlers.
type REST struct {
	Handlers *rest.Handlers
}

func (b *Bootstrap) registerREST() {
	b.REST.Handlers = &rest.Handlers{
		Order: rest.NewOrderHandler(b.Usecase.MatchingUsecase, b.Usecase.BookUsecase, b.Logger),
		Book:  rest.NewBookHandler(b.Usecase.BookUsecase, b.Logger),
		Trade: rest.NewTradeHandler(b.Usecase.TradeUsecase, b.Config.TradeHistory.DefaultWindow, b.Logger),
	}

	sources := make([]ws.SnapshotSource, 0, 2)
	if store := b.Infrastructure.SnapshotStore; store != nil {
		sources = append(sources, store.Load)
	}
	sources = append(sources, func(ctx context.Context) (*orderv1.Book, error) {
		return b.Usecase.BookUsecase.Snapshot(ctx)
	})
	b.Hub = ws.NewHub(b.Logger, sources...)
}
