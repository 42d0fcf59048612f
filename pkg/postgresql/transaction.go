package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

type contextKey string

const txKey contextKey = "postgresql_transaction"

// GetTx returns the transaction WithTxOptions stored in ctx.
func GetTx(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txKey).(pgx.Tx)
	return tx, ok && tx != nil
}

func withoutTx(ctx context.Context) context.Context {
	if _, ok := GetTx(ctx); !ok {
		return ctx
	}
	return context.WithValue(ctx, txKey, nil)
}

// WithTxOptions runs fn inside one transaction. Client calls made with the
// context handed to fn join it. The transaction is rolled back when fn
// returns an error or panics, and committed otherwise.
func WithTxOptions(ctx context.Context, db PostgreSQLClient, txOptions pgx.TxOptions, fn func(ctx context.Context) error) error {
	tx, err := db.BeginTx(ctx, txOptions)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	txCtx := context.WithValue(ctx, txKey, tx)

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
			panic(p)
		}
	}()

	if err := fn(txCtx); err != nil {
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
			return fmt.Errorf("transaction failed: %w, rollback failed: %v", err, rbErr)
		}
		return err
	}

	return tx.Commit(ctx)
}

// MatchingTxOptions is READ COMMITTED read-write. Callers that need write
// units to see each other's inserts must serialize them themselves, for
// example with pg_advisory_xact_lock as their first statement.
func MatchingTxOptions() pgx.TxOptions {
	return pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	}
}

// SnapshotTxOptions returns a read-only REPEATABLE READ transaction so
// every statement inside it sees the same committed snapshot.
func SnapshotTxOptions() pgx.TxOptions {
	return pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	}
}
