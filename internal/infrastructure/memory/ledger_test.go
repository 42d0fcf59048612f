package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	ledgerv1 "github.com/Satyam-Vyas/order-book/internal/domain/ledger/v1"
	orderv1 "github.com/Satyam-Vyas/order-book/internal/domain/order/v1"
	"github.com/Satyam-Vyas/order-book/internal/infrastructure/ledgertest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type memoryLedgerSuite struct {
	ledgertest.LedgerSuite
}

func TestMemoryLedger(t *testing.T) {
	s := &memoryLedgerSuite{}
	s.NewLedger = func() ledgerv1.Ledger { return NewLedger() }
	suite.Run(t, s)
}

func TestLedger_WriteInsideReadTxFails(t *testing.T) {
	l := NewLedger()
	ctx := context.Background()

	err := l.WithinReadTx(ctx, func(ctx context.Context) error {
		o := orderv1.NewOrder("o1", "alice", orderv1.SideBid, decimal.NewFromInt(1), 1, time.Now())
		return l.Orders().Insert(ctx, o)
	})
	assert.Error(t, err)

	bids, err := l.Orders().ActiveBySide(ctx, orderv1.SideBid)
	require.NoError(t, err)
	assert.Empty(t, bids)
}

func TestLedger_RollbackOnPanic(t *testing.T) {
	l := NewLedger()
	ctx := context.Background()

	assert.Panics(t, func() {
		_ = l.WithinTx(ctx, func(ctx context.Context) error {
			o := orderv1.NewOrder("o1", "alice", orderv1.SideBid, decimal.NewFromInt(1), 1, time.Now())
			if err := l.Orders().Insert(ctx, o); err != nil {
				return err
			}
			panic("boom")
		})
	})

	bids, err := l.Orders().ActiveBySide(ctx, orderv1.SideBid)
	require.NoError(t, err)
	assert.Empty(t, bids)
}

func TestLedger_ReturnsCopies(t *testing.T) {
	l := NewLedger()
	ctx := context.Background()

	o := orderv1.NewOrder("o1", "alice", orderv1.SideBid, decimal.NewFromInt(1), 3, time.Now())
	require.NoError(t, l.Orders().Insert(ctx, o))
	o.Quantity = 1

	bids, err := l.Orders().ActiveBySide(ctx, orderv1.SideBid)
	require.NoError(t, err)
	require.Len(t, bids, 1)
	assert.Equal(t, int64(3), bids[0].Quantity)

	bids[0].Quantity = 0
	again, err := l.Orders().ActiveBySide(ctx, orderv1.SideBid)
	require.NoError(t, err)
	assert.Equal(t, int64(3), again[0].Quantity)
}

func TestOrderRepository_DuplicateAndMissing(t *testing.T) {
	l := NewLedger()
	ctx := context.Background()

	o := orderv1.NewOrder("o1", "alice", orderv1.SideBid, decimal.NewFromInt(1), 3, time.Now())
	require.NoError(t, l.Orders().Insert(ctx, o))
	assert.Error(t, l.Orders().Insert(ctx, o))

	ghost := orderv1.NewOrder("ghost", "bob", orderv1.SideAsk, decimal.NewFromInt(1), 3, time.Now())
	assert.Error(t, l.Orders().Update(ctx, ghost))
}

func TestLedger_RollbackUndoesOnlyTouchedOrders(t *testing.T) {
	l := NewLedger()
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

	maker := orderv1.NewOrder("maker", "bob", orderv1.SideAsk, decimal.NewFromInt(10), 3, at)
	filled := orderv1.NewOrder("filled", "carol", orderv1.SideAsk, decimal.NewFromInt(9), 1, at)
	require.NoError(t, l.Orders().Insert(ctx, maker))
	require.NoError(t, l.Orders().Insert(ctx, filled))
	filled.Quantity, filled.Active = 0, false
	require.NoError(t, l.Orders().Update(ctx, filled))

	boom := errors.New("boom")
	err := l.WithinTx(ctx, func(ctx context.Context) error {
		taker := orderv1.NewOrder("taker", "alice", orderv1.SideBid, decimal.NewFromInt(10), 3, at)
		if err := l.Orders().Insert(ctx, taker); err != nil {
			return err
		}
		m := maker.Clone()
		m.Quantity, m.Active = 0, false
		if err := l.Orders().Update(ctx, m); err != nil {
			return err
		}
		if err := l.Trades().Insert(ctx, orderv1.NewTrade("t-1", taker, m, 3, at)); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Empty(t, l.undo)

	asks, err := l.Orders().ActiveBySide(ctx, orderv1.SideAsk)
	require.NoError(t, err)
	require.Len(t, asks, 1)
	assert.Equal(t, "maker", asks[0].ID)
	assert.Equal(t, int64(3), asks[0].Quantity)

	bids, err := l.Orders().ActiveBySide(ctx, orderv1.SideBid)
	require.NoError(t, err)
	assert.Empty(t, bids)

	trades, err := l.Trades().Since(ctx, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, trades)

	again := orderv1.NewOrder("taker", "alice", orderv1.SideBid, decimal.NewFromInt(1), 1, at)
	require.NoError(t, l.Orders().Insert(ctx, again))
	assert.Equal(t, int64(3), again.Sequence)
	assert.Len(t, l.active, 2)
}
