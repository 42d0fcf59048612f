package book

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mockLedger "github.com/Satyam-Vyas/order-book/internal/domain/ledger/v1/mock"
	mockOrder "github.com/Satyam-Vyas/order-book/internal/domain/order/mock"
	orderv1 "github.com/Satyam-Vyas/order-book/internal/domain/order/v1"
	"github.com/Satyam-Vyas/order-book/internal/event"
	mockEvent "github.com/Satyam-Vyas/order-book/internal/event/mock"
	"github.com/Satyam-Vyas/order-book/internal/infrastructure/memory"
	"github.com/Satyam-Vyas/order-book/pkg/logger"
	mockLogger "github.com/Satyam-Vyas/order-book/pkg/logger/mock"
)

var at = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func insert(t *testing.T, l *memory.Ledger, id, owner string, side orderv1.Side, price string, qty int64, offset time.Duration) {
	t.Helper()
	o := orderv1.NewOrder(id, owner, side, decimal.RequireFromString(price), qty, at.Add(offset))
	require.NoError(t, l.Orders().Insert(context.Background(), o))
}

func TestUsecase_Snapshot(t *testing.T) {
	l := memory.NewLedger()
	insert(t, l, "b1", "a", orderv1.SideBid, "99.00", 1, 0)
	insert(t, l, "b2", "b", orderv1.SideBid, "100.00", 2, time.Second)
	insert(t, l, "b3", "c", orderv1.SideBid, "100.00", 3, 2*time.Second)
	insert(t, l, "a1", "d", orderv1.SideAsk, "101.00", 4, 0)
	insert(t, l, "a2", "e", orderv1.SideAsk, "100.50", 5, time.Second)

	u := NewUsecase(l)
	u.now = func() time.Time { return at }

	b, err := u.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, at, b.Timestamp)

	var bids, asks []string
	for _, o := range b.Bids {
		bids = append(bids, o.ID)
	}
	for _, o := range b.Asks {
		asks = append(asks, o.ID)
	}
	assert.Equal(t, []string{"b2", "b3", "b1"}, bids)
	assert.Equal(t, []string{"a2", "a1"}, asks)

	d, err := u.Depth(context.Background())
	require.NoError(t, err)
	require.Len(t, d.Bids, 2)
	assert.Equal(t, "100.00", d.Bids[0].Price.StringFixed(2))
	assert.Equal(t, int64(5), d.Bids[0].TotalQuantity)
	assert.Equal(t, 2, d.Bids[0].Orders)
	require.Len(t, d.Asks, 2)
	assert.Equal(t, "100.50", d.Asks[0].Price.StringFixed(2))
}

func TestUsecase_SnapshotError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	l := mockLedger.NewMockLedger(ctrl)
	l.EXPECT().WithinReadTx(gomock.Any(), gomock.Any()).Return(fmt.Errorf("connection refused"))

	b, err := NewUsecase(l).Snapshot(context.Background())
	assert.Nil(t, b)
	assert.Error(t, err)

	l.EXPECT().WithinReadTx(gomock.Any(), gomock.Any()).Return(fmt.Errorf("connection refused"))
	d, err := NewUsecase(l).Depth(context.Background())
	assert.Nil(t, d)
	assert.Error(t, err)
}

func TestRefresher_Handle(t *testing.T) {
	ctx := context.Background()
	testCases := []struct {
		name   string
		mockFn func(book *mockOrder.MockBookUsecase, bus *mockEvent.MockPublisher, log *mockLogger.MockInterface)
	}{
		{
			name: "publishes the snapshot",
			mockFn: func(book *mockOrder.MockBookUsecase, bus *mockEvent.MockPublisher, log *mockLogger.MockInterface) {
				b := orderv1.NewBook(nil, nil, at)
				book.EXPECT().Snapshot(ctx).Return(b, nil)
				bus.EXPECT().Publish(ctx, event.TopicBookUpdated, b)
			},
		},
		{
			name: "logs a failed snapshot",
			mockFn: func(book *mockOrder.MockBookUsecase, bus *mockEvent.MockPublisher, log *mockLogger.MockInterface) {
				err := fmt.Errorf("connection refused")
				book.EXPECT().Snapshot(ctx).Return(nil, err)
				log.EXPECT().ErrorContext(ctx, err, logger.NewField("action", "refresh_book"))
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			book := mockOrder.NewMockBookUsecase(ctrl)
			bus := mockEvent.NewMockPublisher(ctrl)
			log := mockLogger.NewMockInterface(ctrl)
			tc.mockFn(book, bus, log)

			NewRefresher(book, bus, log).Handle(ctx, event.OrderMatched{})
		})
	}
}
