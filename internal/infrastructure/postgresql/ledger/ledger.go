// Package ledger stores orders and trades in PostgreSQL.
package ledger

import (
	"context"

	"github.com/Satyam-Vyas/order-book/pkg/errors"
	"github.com/Satyam-Vyas/order-book/pkg/logger"
	"github.com/Satyam-Vyas/order-book/pkg/postgresql"

	ledgerv1 "github.com/Satyam-Vyas/order-book/internal/domain/ledger/v1"
)

// Ledger is the PostgreSQL ledger. Every write unit first takes the
// transaction-scoped advisory lock on the book, so write units run one at a
// time and each statement of the holder sees every earlier commit. Read
// units run on a REPEATABLE READ snapshot and never take the lock.
type Ledger struct {
	db     postgresql.PostgreSQLClient
	logger logger.Interface

	orders *orderRepository
	trades *tradeRepository
}

var _ ledgerv1.Ledger = (*Ledger)(nil)

// bookLockKey identifies the book in pg_advisory_xact_lock. There is one
// instrument, so one key.
const bookLockKey int64 = 0x6f72646572626f6f

const lockBookQuery = `SELECT pg_advisory_xact_lock($1)`

// NewLedger creates a new PostgreSQL ledger.
func NewLedger(db postgresql.PostgreSQLClient, log logger.Interface) *Ledger {
	return &Ledger{
		db:     db,
		logger: log,
		orders: NewOrderRepository(db, log),
		trades: NewTradeRepository(db, log),
	}
}

// WithinTx runs fn in a read-write transaction holding the book lock. A call
// made with a context that already carries a transaction joins it.
func (l *Ledger) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := postgresql.GetTx(ctx); ok {
		return fn(ctx)
	}
	return wrapError(postgresql.WithTxOptions(ctx, l.db, postgresql.MatchingTxOptions(), func(ctx context.Context) error {
		if _, err := l.db.Exec(ctx, lockBookQuery, bookLockKey); err != nil {
			return err
		}
		return fn(ctx)
	}))
}

// WithinReadTx runs fn in a read-only snapshot transaction.
func (l *Ledger) WithinReadTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := postgresql.GetTx(ctx); ok {
		return fn(ctx)
	}
	return wrapError(postgresql.WithTxOptions(ctx, l.db, postgresql.SnapshotTxOptions(), fn))
}

// Orders returns the order repository.
func (l *Ledger) Orders() ledgerv1.OrderRepository { return l.orders }

// Trades returns the trade repository.
func (l *Ledger) Trades() ledgerv1.TradeRepository { return l.trades }

// Ping runs a probe query and warns when the pool is exhausted.
func (l *Ledger) Ping(ctx context.Context) error {
	status, err := postgresql.Probe(ctx, l.db)
	if err != nil {
		return err
	}
	if status.Saturated() {
		l.logger.WarnContext(ctx, "postgres pool saturated",
			logger.NewField("acquired", status.Acquired),
			logger.NewField("max", status.Max),
			logger.NewField("latency", status.Latency.String()),
		)
	}
	return nil
}

// Close closes the connection pool.
func (l *Ledger) Close() error {
	l.db.Close()
	return nil
}

// wrapError classifies driver errors. Lock timeouts, deadlocks and
// serialization failures become ConcurrencyConflictError; errors that
// already carry a code pass through untouched.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Code(err) != errors.GeneralInternalServerError {
		return err
	}
	if postgresql.IsConflict(err) {
		return errors.NewConflictError(err)
	}
	if _, ok := err.(*errors.ErrorTracer); ok {
		return err
	}
	return errors.TracerFromError(err)
}
