package outbox

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orderv1 "github.com/Satyam-Vyas/order-book/internal/domain/order/v1"
	tradeeventv1 "github.com/Satyam-Vyas/order-book/internal/domain/trade-event/v1"
	"github.com/Satyam-Vyas/order-book/internal/event"
	"github.com/Satyam-Vyas/order-book/pkg/logger"
)

func openOutbox(t *testing.T, dir string) *Outbox {
	t.Helper()
	o, err := Open(dir, logger.NewNop())
	require.NoError(t, err)
	return o
}

func ids(records []Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Event.TradeID)
	}
	return out
}

func TestOutbox_AppendPendingAck(t *testing.T) {
	o := openOutbox(t, t.TempDir())
	defer o.Close()

	require.NoError(t, o.Append(
		&tradeeventv1.TradeEvent{TradeID: "t-1"},
		&tradeeventv1.TradeEvent{TradeID: "t-2"},
		&tradeeventv1.TradeEvent{TradeID: "t-3"},
	))

	records, err := o.Pending(2)
	require.NoError(t, err)
	assert.Equal(t, []string{"t-1", "t-2"}, ids(records))
	assert.Equal(t, uint64(1), records[0].Seq)

	require.NoError(t, o.Ack(records[0].Seq, records[1].Seq))

	records, err = o.Pending(0)
	require.NoError(t, err)
	assert.Equal(t, []string{"t-3"}, ids(records))
}

func TestOutbox_ResumesSequenceAfterReopen(t *testing.T) {
	dir := t.TempDir()

	o := openOutbox(t, dir)
	require.NoError(t, o.Append(&tradeeventv1.TradeEvent{TradeID: "t-1"}, &tradeeventv1.TradeEvent{TradeID: "t-2"}))
	require.NoError(t, o.Close())

	o = openOutbox(t, dir)
	defer o.Close()
	require.NoError(t, o.Append(&tradeeventv1.TradeEvent{TradeID: "t-3"}))

	records, err := o.Pending(0)
	require.NoError(t, err)
	assert.Equal(t, []string{"t-1", "t-2", "t-3"}, ids(records))
	assert.Equal(t, uint64(3), records[2].Seq)
}

func TestOutbox_KeysSortNumerically(t *testing.T) {
	o := openOutbox(t, t.TempDir())
	defer o.Close()

	for i := 0; i < 12; i++ {
		require.NoError(t, o.Append(&tradeeventv1.TradeEvent{Quantity: int64(i)}))
	}

	records, err := o.Pending(0)
	require.NoError(t, err)
	require.Len(t, records, 12)
	for i, r := range records {
		assert.Equal(t, uint64(i+1), r.Seq)
		assert.Equal(t, int64(i), r.Event.Quantity)
	}
}

func TestOutbox_Handle(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	bid := orderv1.NewOrder("bid-1", "alice", orderv1.SideBid, decimal.RequireFromString("10"), 2, at)
	ask := orderv1.NewOrder("ask-1", "bob", orderv1.SideAsk, decimal.RequireFromString("10"), 2, at)
	trades := []*orderv1.Trade{
		orderv1.NewTrade("t-1", bid, ask, 1, at),
		orderv1.NewTrade("t-2", bid, ask, 1, at),
	}

	o := openOutbox(t, t.TempDir())
	defer o.Close()

	ctx := context.Background()
	o.Handle(ctx, event.OrderMatched{Order: bid, Trades: trades})
	o.Handle(ctx, event.OrderMatched{Order: bid})
	o.Handle(ctx, trades[0])

	records, err := o.Pending(0)
	require.NoError(t, err)
	assert.Equal(t, []string{"t-1", "t-2"}, ids(records))
	assert.Equal(t, "10.00", records[0].Event.Price)
}

type tradeSource struct {
	trades []*orderv1.Trade
	since  time.Time
}

// Since mirrors the ledger: newest first, at or after since.
func (s *tradeSource) Since(_ context.Context, since time.Time) ([]*orderv1.Trade, error) {
	s.since = since
	out := make([]*orderv1.Trade, 0, len(s.trades))
	for i := len(s.trades) - 1; i >= 0; i-- {
		if !s.trades[i].CreatedAt.Before(since) {
			out = append(out, s.trades[i])
		}
	}
	return out, nil
}

func TestOutbox_Recover(t *testing.T) {
	now := time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC)
	bid := orderv1.NewOrder("bid-1", "alice", orderv1.SideBid, decimal.RequireFromString("10"), 9, now)
	ask := orderv1.NewOrder("ask-1", "bob", orderv1.SideAsk, decimal.RequireFromString("10"), 9, now)
	trade := func(id string, ago time.Duration) *orderv1.Trade {
		return orderv1.NewTrade(id, bid, ask, 1, now.Add(-ago))
	}

	testCases := []struct {
		name     string
		opened   time.Duration
		handled  []*orderv1.Trade
		ledger   []*orderv1.Trade
		assertFn func(t *testing.T, o *Outbox, src *tradeSource, recovered int)
	}{
		{
			name:    "appends committed trades the outbox never saw, oldest first",
			opened:  72 * time.Hour,
			handled: []*orderv1.Trade{trade("t-1", 3*time.Hour)},
			ledger: []*orderv1.Trade{
				trade("t-0", 30*time.Hour),
				trade("t-1", 3*time.Hour),
				trade("t-2", 2*time.Hour),
				trade("t-3", time.Hour),
			},
			assertFn: func(t *testing.T, o *Outbox, src *tradeSource, recovered int) {
				assert.Equal(t, 2, recovered)
				assert.True(t, now.Add(-24*time.Hour).Equal(src.since))

				records, err := o.Pending(0)
				require.NoError(t, err)
				assert.Equal(t, []string{"t-1", "t-2", "t-3"}, ids(records))

				again, err := o.Recover(context.Background(), src, 24*time.Hour)
				require.NoError(t, err)
				assert.Zero(t, again)
			},
		},
		{
			name:   "never reaches back before the first open",
			opened: time.Hour,
			ledger: []*orderv1.Trade{
				trade("t-old", 2*time.Hour),
				trade("t-new", 30*time.Minute),
			},
			assertFn: func(t *testing.T, o *Outbox, src *tradeSource, recovered int) {
				assert.Equal(t, 1, recovered)
				assert.True(t, now.Add(-time.Hour).Equal(src.since))

				records, err := o.Pending(0)
				require.NoError(t, err)
				assert.Equal(t, []string{"t-new"}, ids(records))
			},
		},
		{
			name:    "drops marks older than the window",
			opened:  72 * time.Hour,
			handled: []*orderv1.Trade{trade("t-stale", 48*time.Hour), trade("t-fresh", time.Hour)},
			assertFn: func(t *testing.T, o *Outbox, _ *tradeSource, recovered int) {
				assert.Zero(t, recovered)

				stale, err := o.seen("t-stale")
				require.NoError(t, err)
				assert.False(t, stale)

				fresh, err := o.seen("t-fresh")
				require.NoError(t, err)
				assert.True(t, fresh)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			o := openOutbox(t, t.TempDir())
			defer o.Close()
			o.now = func() time.Time { return now }
			o.opened = now.Add(-tc.opened)

			if len(tc.handled) > 0 {
				o.Handle(context.Background(), event.OrderMatched{Order: bid, Trades: tc.handled})
			}

			src := &tradeSource{trades: tc.ledger}
			recovered, err := o.Recover(context.Background(), src, 24*time.Hour)
			require.NoError(t, err)

			tc.assertFn(t, o, src, recovered)
		})
	}
}

func TestOutbox_KeepsFirstOpenTime(t *testing.T) {
	dir := t.TempDir()

	o := openOutbox(t, dir)
	first := o.opened
	require.NoError(t, o.Close())
	require.False(t, first.IsZero())

	o = openOutbox(t, dir)
	defer o.Close()
	assert.True(t, first.Equal(o.opened))
}
