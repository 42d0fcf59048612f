package order

import (
	"context"
	"time"

	orderv1 "github.com/Satyam-Vyas/order-book/internal/domain/order/v1"
)

//go:generate mockgen -source=interface.go -destination=mock/interface_mock.go -package=mock

// MatchingUsecase accepts limit orders and matches them against the book.
type MatchingUsecase interface {
	SubmitOrder(ctx context.Context, req *orderv1.PlaceOrderRequest) (*orderv1.SubmitResult, error)
}

// BookUsecase reads the live book.
type BookUsecase interface {
	Snapshot(ctx context.Context) (*orderv1.Book, error)
	Depth(ctx context.Context) (*orderv1.Depth, error)
}

// TradeUsecase reads the trade history.
type TradeUsecase interface {
	// Recent lists trades executed within window of now, newest first.
	// A zero window selects the default.
	Recent(ctx context.Context, window time.Duration) ([]*orderv1.Trade, error)
}
