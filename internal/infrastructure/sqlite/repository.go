package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	orderv1 "github.com/Satyam-Vyas/order-book/internal/domain/order/v1"
)

const (
	upsertUserQuery  = `INSERT INTO users (id) VALUES (?) ON CONFLICT (id) DO NOTHING`
	insertOrderQuery = `INSERT INTO orders (id, owner, side, price_cents, quantity, original_quantity, active, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	updateOrderQuery = `UPDATE orders SET quantity = ?, active = ? WHERE id = ?`
	selectOrders     = `SELECT seq, id, owner, side, price_cents, quantity, original_quantity, active, created_at FROM orders`
	insertTradeQuery = `INSERT INTO trades (id, bid_owner, ask_owner, bid_order_id, ask_order_id, price_cents, quantity, taker_side, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	selectTrades     = `SELECT id, bid_owner, ask_owner, bid_order_id, ask_order_id, price_cents, quantity, taker_side, created_at FROM trades WHERE created_at >= ? ORDER BY created_at DESC, id DESC`
)

func toCents(d decimal.Decimal) int64 {
	return d.Shift(2).IntPart()
}

func fromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

// priorityOrder is the ORDER BY clause for one side of the book.
func priorityOrder(side orderv1.Side) string {
	if side == orderv1.SideBid {
		return " ORDER BY price_cents DESC, created_at ASC, seq ASC"
	}
	return " ORDER BY price_cents ASC, created_at ASC, seq ASC"
}

type orderRepository struct {
	l *Ledger
}

func (r *orderRepository) Insert(ctx context.Context, order *orderv1.Order) error {
	return r.l.WithinTx(ctx, func(ctx context.Context) error {
		tx := txFrom(ctx)
		if _, err := tx.ExecContext(ctx, upsertUserQuery, order.Owner); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, insertOrderQuery,
			order.ID,
			order.Owner,
			string(order.Side),
			toCents(order.Price),
			order.Quantity,
			order.OriginalQuantity,
			order.Active,
			order.CreatedAt.UnixNano(),
		)
		if err != nil {
			return err
		}

		seq, err := res.LastInsertId()
		if err != nil {
			return err
		}
		order.Sequence = seq
		return nil
	})
}

// LockEligible runs inside the unit's IMMEDIATE transaction, which already
// excludes every other writer, so a plain SELECT is enough.
func (r *orderRepository) LockEligible(ctx context.Context, incoming *orderv1.Order) ([]*orderv1.Order, error) {
	cmp := "<="
	if incoming.IsAsk() {
		cmp = ">="
	}
	counter := incoming.Side.Opposite()
	query := selectOrders +
		fmt.Sprintf(" WHERE side = ? AND active = 1 AND owner <> ? AND price_cents %s ?", cmp) +
		priorityOrder(counter)

	var out []*orderv1.Order
	err := r.l.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		out, err = r.list(ctx, query, string(counter), incoming.Owner, toCents(incoming.Price))
		return err
	})
	return out, err
}

func (r *orderRepository) Update(ctx context.Context, order *orderv1.Order) error {
	return r.l.WithinTx(ctx, func(ctx context.Context) error {
		res, err := txFrom(ctx).ExecContext(ctx, updateOrderQuery, order.Quantity, order.Active, order.ID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("order %s not found", order.ID)
		}
		return nil
	})
}

func (r *orderRepository) ActiveBySide(ctx context.Context, side orderv1.Side) ([]*orderv1.Order, error) {
	query := selectOrders + " WHERE side = ? AND active = 1" + priorityOrder(side)

	var out []*orderv1.Order
	err := r.l.WithinReadTx(ctx, func(ctx context.Context) error {
		var err error
		out, err = r.list(ctx, query, string(side))
		return err
	})
	return out, err
}

func (r *orderRepository) list(ctx context.Context, query string, args ...any) ([]*orderv1.Order, error) {
	rows, err := txFrom(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]*orderv1.Order, 0)
	for rows.Next() {
		var (
			o         orderv1.Order
			side      string
			cents     int64
			createdAt int64
		)
		if err := rows.Scan(&o.Sequence, &o.ID, &o.Owner, &side, &cents, &o.Quantity, &o.OriginalQuantity, &o.Active, &createdAt); err != nil {
			return nil, err
		}
		o.Side = orderv1.Side(side)
		o.Price = fromCents(cents)
		o.CreatedAt = fromNanos(createdAt)
		orders = append(orders, &o)
	}
	return orders, rows.Err()
}

type tradeRepository struct {
	l *Ledger
}

func (r *tradeRepository) Insert(ctx context.Context, trade *orderv1.Trade) error {
	return r.l.WithinTx(ctx, func(ctx context.Context) error {
		_, err := txFrom(ctx).ExecContext(ctx, insertTradeQuery,
			trade.ID,
			trade.BidOwner,
			trade.AskOwner,
			trade.BidOrderID,
			trade.AskOrderID,
			toCents(trade.Price),
			trade.Quantity,
			string(trade.TakerSide),
			trade.CreatedAt.UnixNano(),
		)
		return err
	})
}

func (r *tradeRepository) Since(ctx context.Context, since time.Time) ([]*orderv1.Trade, error) {
	trades := make([]*orderv1.Trade, 0)
	err := r.l.WithinReadTx(ctx, func(ctx context.Context) error {
		rows, err := txFrom(ctx).QueryContext(ctx, selectTrades, sinceNanos(since))
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var (
				t         orderv1.Trade
				takerSide string
				cents     int64
				createdAt int64
			)
			if err := rows.Scan(&t.ID, &t.BidOwner, &t.AskOwner, &t.BidOrderID, &t.AskOrderID, &cents, &t.Quantity, &takerSide, &createdAt); err != nil {
				return err
			}
			t.TakerSide = orderv1.Side(takerSide)
			t.Price = fromCents(cents)
			t.CreatedAt = fromNanos(createdAt)
			trades = append(trades, &t)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return trades, nil
}

// sinceNanos clamps times outside the int64 nanosecond range, such as the
// zero time.
func sinceNanos(t time.Time) int64 {
	if t.Before(time.Unix(0, 0)) {
		return 0
	}
	return t.UnixNano()
}
