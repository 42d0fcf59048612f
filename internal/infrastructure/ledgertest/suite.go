// Package ledgertest holds the behaviour every ledger backend must share.
package ledgertest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	ledgerv1 "github.com/Satyam-Vyas/order-book/internal/domain/ledger/v1"
	orderv1 "github.com/Satyam-Vyas/order-book/internal/domain/order/v1"
	"github.com/Satyam-Vyas/order-book/internal/event"
	"github.com/Satyam-Vyas/order-book/internal/pkg/idgen"
	"github.com/Satyam-Vyas/order-book/internal/usecase/matching"
	"github.com/Satyam-Vyas/order-book/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// Base is the instant every fixture is created relative to. Microsecond
// precision keeps it exact on every backend.
var Base = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

// LedgerSuite exercises a ledgerv1.Ledger. Embed it and set NewLedger.
type LedgerSuite struct {
	suite.Suite

	// NewLedger returns an empty ledger for each test.
	NewLedger func() ledgerv1.Ledger

	ledger ledgerv1.Ledger
	ctx    context.Context
	n      int
}

// SetupTest gives every test a fresh ledger.
func (s *LedgerSuite) SetupTest() {
	s.ctx = context.Background()
	s.ledger = s.NewLedger()
	s.n = 0
}

// Order builds an active order offset from Base by at.
func (s *LedgerSuite) Order(owner string, side orderv1.Side, price string, qty int64, at time.Duration) *orderv1.Order {
	s.n++
	return orderv1.NewOrder(
		fmt.Sprintf("%s-%s-%03d", owner, side, s.n),
		owner, side, decimal.RequireFromString(price), qty, Base.Add(at),
	)
}

func (s *LedgerSuite) insert(orders ...*orderv1.Order) {
	for _, o := range orders {
		s.Require().NoError(s.ledger.WithinTx(s.ctx, func(ctx context.Context) error {
			return s.ledger.Orders().Insert(ctx, o)
		}))
	}
}

func ids(orders []*orderv1.Order) []string {
	out := make([]string, len(orders))
	for i, o := range orders {
		out[i] = o.ID
	}
	return out
}

func (s *LedgerSuite) TestInsertAssignsIncreasingSequence() {
	a := s.Order("alice", orderv1.SideBid, "10.00", 1, 0)
	b := s.Order("bob", orderv1.SideBid, "10.00", 1, 0)
	s.insert(a, b)

	s.Positive(a.Sequence)
	s.Greater(b.Sequence, a.Sequence)
}

func (s *LedgerSuite) TestActiveBySideIsPriorityOrdered() {
	low := s.Order("alice", orderv1.SideBid, "9.50", 3, 0)
	highLate := s.Order("bob", orderv1.SideBid, "10.25", 2, 2*time.Second)
	highEarly := s.Order("carol", orderv1.SideBid, "10.25", 1, time.Second)
	ask := s.Order("dave", orderv1.SideAsk, "11.00", 1, 0)
	s.insert(low, highLate, highEarly, ask)

	bids, err := s.ledger.Orders().ActiveBySide(s.ctx, orderv1.SideBid)
	s.Require().NoError(err)
	s.Equal([]string{highEarly.ID, highLate.ID, low.ID}, ids(bids))

	got := bids[0]
	s.Equal("carol", got.Owner)
	s.Equal(orderv1.SideBid, got.Side)
	s.Equal("10.25", got.PriceString())
	s.Equal(int64(1), got.Quantity)
	s.Equal(int64(1), got.OriginalQuantity)
	s.True(got.Active)
	s.True(Base.Add(time.Second).Equal(got.CreatedAt))

	asks, err := s.ledger.Orders().ActiveBySide(s.ctx, orderv1.SideAsk)
	s.Require().NoError(err)
	s.Equal([]string{ask.ID}, ids(asks))
}

func (s *LedgerSuite) TestLockEligibleFiltersAndOrders() {
	cheapLate := s.Order("bob", orderv1.SideAsk, "10.00", 1, 3*time.Second)
	cheapEarly := s.Order("carol", orderv1.SideAsk, "10.00", 1, time.Second)
	cheapest := s.Order("dave", orderv1.SideAsk, "9.00", 1, 4*time.Second)
	own := s.Order("alice", orderv1.SideAsk, "8.00", 1, 0)
	tooExpensive := s.Order("erin", orderv1.SideAsk, "10.01", 1, 0)
	sameSide := s.Order("frank", orderv1.SideBid, "10.00", 1, 0)
	filled := s.Order("gina", orderv1.SideAsk, "9.50", 1, 0)
	s.insert(cheapLate, cheapEarly, cheapest, own, tooExpensive, sameSide, filled)

	s.Require().NoError(s.ledger.WithinTx(s.ctx, func(ctx context.Context) error {
		filled.Quantity, filled.Active = 0, false
		return s.ledger.Orders().Update(ctx, filled)
	}))

	incoming := s.Order("alice", orderv1.SideBid, "10.00", 5, 5*time.Second)
	s.Require().NoError(s.ledger.WithinTx(s.ctx, func(ctx context.Context) error {
		if err := s.ledger.Orders().Insert(ctx, incoming); err != nil {
			return err
		}
		eligible, err := s.ledger.Orders().LockEligible(ctx, incoming)
		if err != nil {
			return err
		}
		s.Equal([]string{cheapest.ID, cheapEarly.ID, cheapLate.ID}, ids(eligible))
		return nil
	}))
}

func (s *LedgerSuite) TestLockEligibleForAsk() {
	high := s.Order("bob", orderv1.SideBid, "12.00", 1, 0)
	atLimit := s.Order("carol", orderv1.SideBid, "11.00", 1, 0)
	below := s.Order("dave", orderv1.SideBid, "10.99", 1, 0)
	s.insert(high, atLimit, below)

	incoming := s.Order("alice", orderv1.SideAsk, "11.00", 5, time.Second)
	s.Require().NoError(s.ledger.WithinTx(s.ctx, func(ctx context.Context) error {
		eligible, err := s.ledger.Orders().LockEligible(ctx, incoming)
		if err != nil {
			return err
		}
		s.Equal([]string{high.ID, atLimit.ID}, ids(eligible))
		return nil
	}))
}

func (s *LedgerSuite) TestUpdatePersistsQuantityAndActive() {
	o := s.Order("alice", orderv1.SideAsk, "10.00", 5, 0)
	s.insert(o)

	s.Require().NoError(s.ledger.WithinTx(s.ctx, func(ctx context.Context) error {
		o.Quantity = 2
		return s.ledger.Orders().Update(ctx, o)
	}))
	asks, err := s.ledger.Orders().ActiveBySide(s.ctx, orderv1.SideAsk)
	s.Require().NoError(err)
	s.Require().Len(asks, 1)
	s.Equal(int64(2), asks[0].Quantity)
	s.Equal(int64(5), asks[0].OriginalQuantity)

	s.Require().NoError(s.ledger.WithinTx(s.ctx, func(ctx context.Context) error {
		o.Quantity, o.Active = 0, false
		return s.ledger.Orders().Update(ctx, o)
	}))
	asks, err = s.ledger.Orders().ActiveBySide(s.ctx, orderv1.SideAsk)
	s.Require().NoError(err)
	s.Empty(asks)
}

func (s *LedgerSuite) TestFailedUnitRollsBack() {
	resting := s.Order("bob", orderv1.SideAsk, "10.00", 5, 0)
	s.insert(resting)

	boom := errors.New("boom")
	err := s.ledger.WithinTx(s.ctx, func(ctx context.Context) error {
		incoming := s.Order("alice", orderv1.SideBid, "10.00", 5, time.Second)
		if err := s.ledger.Orders().Insert(ctx, incoming); err != nil {
			return err
		}
		resting.Quantity, resting.Active = 0, false
		if err := s.ledger.Orders().Update(ctx, resting); err != nil {
			return err
		}
		trade := orderv1.NewTrade("trade-rolled-back", incoming, resting, 5, Base.Add(time.Second))
		if err := s.ledger.Trades().Insert(ctx, trade); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	asks, err := s.ledger.Orders().ActiveBySide(s.ctx, orderv1.SideAsk)
	s.Require().NoError(err)
	s.Require().Len(asks, 1)
	s.Equal(int64(5), asks[0].Quantity)

	bids, err := s.ledger.Orders().ActiveBySide(s.ctx, orderv1.SideBid)
	s.Require().NoError(err)
	s.Empty(bids)

	trades, err := s.ledger.Trades().Since(s.ctx, time.Time{})
	s.Require().NoError(err)
	s.Empty(trades)
}

func (s *LedgerSuite) TestTradesSinceNewestFirst() {
	bid := s.Order("alice", orderv1.SideBid, "10.00", 3, 0)
	ask := s.Order("bob", orderv1.SideAsk, "10.00", 3, 0)
	s.insert(bid, ask)

	old := orderv1.NewTrade("t-old", bid, ask, 1, Base.Add(-48*time.Hour))
	mid := orderv1.NewTrade("t-mid", bid, ask, 1, Base.Add(-time.Hour))
	recent := orderv1.NewTrade("t-new", bid, ask, 1, Base)
	s.Require().NoError(s.ledger.WithinTx(s.ctx, func(ctx context.Context) error {
		for _, t := range []*orderv1.Trade{old, mid, recent} {
			if err := s.ledger.Trades().Insert(ctx, t); err != nil {
				return err
			}
		}
		return nil
	}))

	trades, err := s.ledger.Trades().Since(s.ctx, Base.Add(-24*time.Hour))
	s.Require().NoError(err)
	s.Require().Len(trades, 2)
	s.Equal("t-new", trades[0].ID)
	s.Equal("t-mid", trades[1].ID)

	got := trades[0]
	s.Equal("alice", got.BidOwner)
	s.Equal("bob", got.AskOwner)
	s.Equal(bid.ID, got.BidOrderID)
	s.Equal(ask.ID, got.AskOrderID)
	s.Equal("10.00", got.Price.StringFixed(2))
	s.Equal(orderv1.SideBid, got.TakerSide)
	s.True(Base.Equal(got.CreatedAt))

	trades, err = s.ledger.Trades().Since(s.ctx, time.Time{})
	s.Require().NoError(err)
	s.Len(trades, 3)
}

func (s *LedgerSuite) TestReadTxSeesCommittedState() {
	s.insert(s.Order("alice", orderv1.SideBid, "10.00", 1, 0))

	s.Require().NoError(s.ledger.WithinReadTx(s.ctx, func(ctx context.Context) error {
		bids, err := s.ledger.Orders().ActiveBySide(ctx, orderv1.SideBid)
		if err != nil {
			return err
		}
		s.Len(bids, 1)
		return nil
	}))
	s.NoError(s.ledger.Ping(s.ctx))
}

// Orders submitted at the same time must still see each other: every bid
// here crosses every ask of another owner, so nothing may be left resting.
func (s *LedgerSuite) TestConcurrentCrossingOrdersAllTrade() {
	const n = 16

	u := matching.NewUsecase(s.ledger, idgen.New(), event.NewBus(logger.NewNop()), logger.NewNop(), &matching.Options{
		MaxRetries:     20,
		RetryBaseDelay: time.Millisecond,
		RetryMaxDelay:  20 * time.Millisecond,
		MaxNotional:    orderv1.DefaultMaxNotional,
	})

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		side := orderv1.SideBid
		if i%2 == 1 {
			side = orderv1.SideAsk
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := u.SubmitOrder(s.ctx, &orderv1.PlaceOrderRequest{
				Owner:    fmt.Sprintf("owner-%02d", i),
				Side:     side,
				Price:    decimal.RequireFromString("10.00"),
				Quantity: 1,
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		s.Require().NoError(err)
	}

	trades, err := s.ledger.Trades().Since(s.ctx, time.Time{})
	s.Require().NoError(err)
	s.Len(trades, n/2)

	bids, err := s.ledger.Orders().ActiveBySide(s.ctx, orderv1.SideBid)
	s.Require().NoError(err)
	s.Empty(bids)

	asks, err := s.ledger.Orders().ActiveBySide(s.ctx, orderv1.SideAsk)
	s.Require().NoError(err)
	s.Empty(asks)
}
