package ledgerv1

import (
	"context"
	"time"

	orderv1 "github.com/Satyam-Vyas/order-book/internal/domain/order/v1"
)

//go:generate mockgen -source=interface.go -destination=mock/interface_mock.go -package=mock

// Transactor runs a unit of work against the ledger. The transaction travels
// inside the context handed to fn; repositories called with that context
// join it. fn's error, or a commit failure, rolls back every write.
type Transactor interface {
	// WithinTx runs fn in a read-write transaction.
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
	// WithinReadTx runs fn against one consistent, read-only snapshot.
	WithinReadTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// OrderRepository persists orders.
type OrderRepository interface {
	// Insert stores a new active order and assigns its Sequence.
	Insert(ctx context.Context, order *orderv1.Order) error
	// LockEligible returns and locks every active counter-side order that
	// incoming crosses and that another owner holds, best priority first.
	LockEligible(ctx context.Context, incoming *orderv1.Order) ([]*orderv1.Order, error)
	// Update persists Quantity and Active.
	Update(ctx context.Context, order *orderv1.Order) error
	// ActiveBySide lists active orders on side, best priority first.
	ActiveBySide(ctx context.Context, side orderv1.Side) ([]*orderv1.Order, error)
}

// TradeRepository persists trades. Trades are never updated or deleted.
type TradeRepository interface {
	Insert(ctx context.Context, trade *orderv1.Trade) error
	// Since lists trades created at or after since, newest first.
	Since(ctx context.Context, since time.Time) ([]*orderv1.Trade, error)
}

// Ledger bundles one storage backend.
type Ledger interface {
	Transactor
	Orders() OrderRepository
	Trades() TradeRepository
	Ping(ctx context.Context) error
	Close() error
}
