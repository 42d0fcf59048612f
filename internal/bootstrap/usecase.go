package bootstrap

import (
	"github.com/Satyam-Vyas/order-book/internal/domain/order"
	"github.com/Satyam-Vyas/order-book/internal/pkg/idgen"
	"github.com/Satyam-Vyas/order-book/internal/usecase/book"
	"github.com/Satyam-Vyas/order-book/internal/usecase/matching"
	"github.com/Satyam-Vyas/order-book/internal/usecase/trade"
)

// Usecase holds the application services.
type Usecase struct {
	MatchingUsecase order.MatchingUsecase
	BookUsecase     order.BookUsecase
	TradeUsecase    order.TradeUsecase
	BookRefresher   *book.Refresher
}

func (b *Bootstrap) registerUsecase() {
	cfg := b.Config

	b.Usecase.MatchingUsecase = matching.NewUsecase(b.Ledger, idgen.New(), b.Bus, b.Logger, &matching.Options{
		MaxRetries:     cfg.Matching.MaxRetries,
		RetryBaseDelay: cfg.Matching.RetryBaseDelay,
		RetryMaxDelay:  cfg.Matching.RetryMaxDelay,
		MaxNotional:    cfg.Matching.MaxNotional,
	})
	b.Usecase.BookUsecase = book.NewUsecase(b.Ledger)
	b.Usecase.TradeUsecase = trade.NewUsecase(b.Ledger, cfg.TradeHistory.DefaultWindow, cfg.TradeHistory.MaxWindow)
	b.Usecase.BookRefresher = book.NewRefresher(b.Usecase.BookUsecase, b.Bus, b.Logger)
}
