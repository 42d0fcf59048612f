// Package sqlite stores orders and trades in an embedded SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"net/url"
	"time"

	"github.com/mattn/go-sqlite3"

	ledgerv1 "github.com/Satyam-Vyas/order-book/internal/domain/ledger/v1"
	"github.com/Satyam-Vyas/order-book/pkg/errors"
	"github.com/Satyam-Vyas/order-book/pkg/logger"
)

type txKey struct{}

// Options configures the database file.
type Options struct {
	Path        string
	BusyTimeout time.Duration
}

// Ledger keeps two pools over the same WAL file. Writes go through a pool
// whose transactions start with BEGIN IMMEDIATE, so at most one write unit
// holds the database at a time. Reads go through a query-only pool with
// deferred transactions, which see one snapshot for their whole duration.
type Ledger struct {
	writer *sql.DB
	reader *sql.DB
	logger logger.Interface

	orders *orderRepository
	trades *tradeRepository
}

var _ ledgerv1.Ledger = (*Ledger)(nil)

// NewLedger opens the database at opts.Path and creates the schema.
func NewLedger(ctx context.Context, opts Options, log logger.Interface) (*Ledger, error) {
	writer, err := sql.Open("sqlite3", dsn(opts, "immediate", false))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite writer: %w", err)
	}

	if _, err := writer.ExecContext(ctx, schema); err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("failed to create sqlite schema: %w", err)
	}

	reader, err := sql.Open("sqlite3", dsn(opts, "deferred", true))
	if err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("failed to open sqlite reader: %w", err)
	}

	l := &Ledger{
		writer: writer,
		reader: reader,
		logger: log,
	}
	l.orders = &orderRepository{l: l}
	l.trades = &tradeRepository{l: l}

	log.Info("sqlite ledger opened", logger.NewField("path", opts.Path))
	return l, nil
}

func dsn(opts Options, txlock string, queryOnly bool) string {
	q := url.Values{}
	q.Set("_foreign_keys", "on")
	q.Set("_txlock", txlock)
	q.Set("_busy_timeout", fmt.Sprint(opts.BusyTimeout.Milliseconds()))
	if queryOnly {
		q.Set("_query_only", "true")
	} else {
		// WAL is persistent in the file; the reader inherits it.
		q.Set("_journal_mode", "WAL")
	}
	return "file:" + opts.Path + "?" + q.Encode()
}

// WithinTx runs fn in a BEGIN IMMEDIATE transaction. Nested calls join the
// outer unit; a write inside a read unit fails.
func (l *Ledger) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if tx := txFrom(ctx); tx != nil {
		return fn(ctx)
	}
	return l.run(ctx, l.writer, fn)
}

// WithinReadTx runs fn in a deferred, query-only transaction.
func (l *Ledger) WithinReadTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if tx := txFrom(ctx); tx != nil {
		return fn(ctx)
	}
	return l.run(ctx, l.reader, fn)
}

func (l *Ledger) run(ctx context.Context, db *sql.DB, fn func(ctx context.Context) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return wrapError(err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			l.logger.Warn("sqlite rollback failed", logger.NewField("error", rbErr.Error()))
		}
		return wrapError(err)
	}

	return wrapError(tx.Commit())
}

// Orders returns the order repository.
func (l *Ledger) Orders() ledgerv1.OrderRepository { return l.orders }

// Trades returns the trade repository.
func (l *Ledger) Trades() ledgerv1.TradeRepository { return l.trades }

// Ping checks both pools.
func (l *Ledger) Ping(ctx context.Context) error {
	if err := l.writer.PingContext(ctx); err != nil {
		return err
	}
	return l.reader.PingContext(ctx)
}

// Close closes both pools.
func (l *Ledger) Close() error {
	return stderrors.Join(l.reader.Close(), l.writer.Close())
}

func txFrom(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(txKey{}).(*sql.Tx)
	return tx
}

// wrapError maps SQLITE_BUSY and SQLITE_LOCKED to ConcurrencyConflictError.
// Errors that already carry a code pass through untouched.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Code(err) != errors.GeneralInternalServerError {
		return err
	}

	var sqliteErr sqlite3.Error
	if stderrors.As(err, &sqliteErr) &&
		(sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked) {
		return errors.NewConflictError(err)
	}

	if _, ok := err.(*errors.ErrorTracer); ok {
		return err
	}
	return errors.TracerFromError(err)
}
