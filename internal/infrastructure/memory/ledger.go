package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	ledgerv1 "github.com/Satyam-Vyas/order-book/internal/domain/ledger/v1"
	orderv1 "github.com/Satyam-Vyas/order-book/internal/domain/order/v1"
)

type txKey struct{}

type txMode int

const (
	readMode txMode = iota + 1
	writeMode
)

// Ledger keeps orders and trades in process memory. One RWMutex serializes
// write units. Each write records how to undo itself, so a failed unit
// costs only what it touched.
type Ledger struct {
	mu     sync.RWMutex
	orders map[string]*orderv1.Order
	active map[string]*orderv1.Order
	trades []*orderv1.Trade
	seq    int64
	undo   []func()

	orderRepo *orderRepository
	tradeRepo *tradeRepository
}

var _ ledgerv1.Ledger = (*Ledger)(nil)

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	l := &Ledger{
		orders: make(map[string]*orderv1.Order),
		active: make(map[string]*orderv1.Order),
	}
	l.orderRepo = &orderRepository{l: l}
	l.tradeRepo = &tradeRepository{l: l}
	return l
}

// WithinTx runs fn under the write lock. Nested calls join the outer unit.
func (l *Ledger) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	switch txModeOf(ctx) {
	case writeMode:
		return fn(ctx)
	case readMode:
		return fmt.Errorf("write attempted inside a read-only transaction")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	trades, seq := len(l.trades), l.seq

	committed := false
	defer func() {
		if !committed {
			for i := len(l.undo) - 1; i >= 0; i-- {
				l.undo[i]()
			}
			clear(l.trades[trades:])
			l.trades = l.trades[:trades]
			l.seq = seq
		}
		clear(l.undo)
		l.undo = l.undo[:0]
	}()

	if err := fn(context.WithValue(ctx, txKey{}, writeMode)); err != nil {
		return err
	}
	committed = true
	return nil
}

// WithinReadTx runs fn under the read lock.
func (l *Ledger) WithinReadTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if txModeOf(ctx) != 0 {
		return fn(ctx)
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	return fn(context.WithValue(ctx, txKey{}, readMode))
}

// Orders returns the order repository.
func (l *Ledger) Orders() ledgerv1.OrderRepository { return l.orderRepo }

// Trades returns the trade repository.
func (l *Ledger) Trades() ledgerv1.TradeRepository { return l.tradeRepo }

// Ping always succeeds.
func (l *Ledger) Ping(context.Context) error { return nil }

// Close is a no-op.
func (l *Ledger) Close() error { return nil }

// track sets o's place in the active index.
func (l *Ledger) track(o *orderv1.Order) {
	if o.Active {
		l.active[o.ID] = o
	} else {
		delete(l.active, o.ID)
	}
}

func txModeOf(ctx context.Context) txMode {
	m, _ := ctx.Value(txKey{}).(txMode)
	return m
}

type orderRepository struct {
	l *Ledger
}

func (r *orderRepository) Insert(ctx context.Context, order *orderv1.Order) error {
	return r.l.WithinTx(ctx, func(context.Context) error {
		if _, ok := r.l.orders[order.ID]; ok {
			return fmt.Errorf("order %s already exists", order.ID)
		}
		r.l.seq++
		order.Sequence = r.l.seq
		stored := order.Clone()
		r.l.orders[order.ID] = stored
		r.l.track(stored)

		r.l.undo = append(r.l.undo, func() {
			delete(r.l.orders, stored.ID)
			delete(r.l.active, stored.ID)
		})
		return nil
	})
}

func (r *orderRepository) LockEligible(ctx context.Context, incoming *orderv1.Order) ([]*orderv1.Order, error) {
	var out []*orderv1.Order
	err := r.l.WithinTx(ctx, func(context.Context) error {
		for _, o := range r.l.active {
			if o.Owner != incoming.Owner && incoming.Crosses(o) {
				out = append(out, o.Clone())
			}
		}
		return nil
	})
	orderv1.SortByPriority(out)
	return out, err
}

func (r *orderRepository) Update(ctx context.Context, order *orderv1.Order) error {
	return r.l.WithinTx(ctx, func(context.Context) error {
		stored, ok := r.l.orders[order.ID]
		if !ok {
			return fmt.Errorf("order %s not found", order.ID)
		}
		quantity, active := stored.Quantity, stored.Active
		r.l.undo = append(r.l.undo, func() {
			stored.Quantity, stored.Active = quantity, active
			r.l.track(stored)
		})

		stored.Quantity = order.Quantity
		stored.Active = order.Active
		r.l.track(stored)
		return nil
	})
}

func (r *orderRepository) ActiveBySide(ctx context.Context, side orderv1.Side) ([]*orderv1.Order, error) {
	out := make([]*orderv1.Order, 0)
	err := r.l.WithinReadTx(ctx, func(context.Context) error {
		for _, o := range r.l.active {
			if o.Side == side {
				out = append(out, o.Clone())
			}
		}
		return nil
	})
	orderv1.SortByPriority(out)
	return out, err
}

type tradeRepository struct {
	l *Ledger
}

func (r *tradeRepository) Insert(ctx context.Context, trade *orderv1.Trade) error {
	return r.l.WithinTx(ctx, func(context.Context) error {
		t := *trade
		r.l.trades = append(r.l.trades, &t)
		return nil
	})
}

func (r *tradeRepository) Since(ctx context.Context, since time.Time) ([]*orderv1.Trade, error) {
	out := make([]*orderv1.Trade, 0)
	err := r.l.WithinReadTx(ctx, func(context.Context) error {
		for i := len(r.l.trades) - 1; i >= 0; i-- {
			if t := r.l.trades[i]; !t.CreatedAt.Before(since) {
				c := *t
				out = append(out, &c)
			}
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, err
}
