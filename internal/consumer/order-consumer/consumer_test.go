package consumer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orderMock "github.com/Satyam-Vyas/order-book/internal/domain/order/mock"
	orderv1 "github.com/Satyam-Vyas/order-book/internal/domain/order/v1"
	"github.com/Satyam-Vyas/order-book/pkg/errors"
	"github.com/Satyam-Vyas/order-book/pkg/logger"
	"github.com/Satyam-Vyas/order-book/pkg/util"
)

type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []int64
	closed    bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		msg := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()

	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error {
	r.closed = true
	return nil
}

func (r *fakeReader) commits() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

func message(offset int64, value string) kafka.Message {
	return kafka.Message{Offset: offset, Value: []byte(value)}
}

func result(id string) *orderv1.SubmitResult {
	return &orderv1.SubmitResult{
		Order: orderv1.NewOrder(id, "alice", orderv1.SideBid, decimal.RequireFromString("10"), 1, time.Now()),
	}
}

func TestOrderConsumer_Handle(t *testing.T) {
	valid := `{"event_id":"evt-1","user_id":"alice","order_type":"bid","price":"10.25","quantity":3}`

	testCases := []struct {
		name     string
		value    string
		mockFn   func(m *orderMock.MockMatchingUsecase)
		assertFn func(t *testing.T, err error)
	}{
		{
			name:  "submits with owner and request id",
			value: valid,
			mockFn: func(m *orderMock.MockMatchingUsecase) {
				m.EXPECT().SubmitOrder(gomock.Any(), gomock.Any()).
					DoAndReturn(func(ctx context.Context, req *orderv1.PlaceOrderRequest) (*orderv1.SubmitResult, error) {
						assert.Equal(t, "evt-1", util.GetRequestID(ctx))
						assert.Equal(t, "alice", util.GetOwner(ctx))
						assert.Equal(t, orderv1.SideBid, req.Side)
						assert.True(t, decimal.RequireFromString("10.25").Equal(req.Price))
						assert.Equal(t, int64(3), req.Quantity)
						return result("o-1"), nil
					})
			},
			assertFn: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name:   "malformed payload is skipped",
			value:  `{"quantity":"lots"`,
			mockFn: func(m *orderMock.MockMatchingUsecase) {},
			assertFn: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name:  "invalid order is skipped",
			value: valid,
			mockFn: func(m *orderMock.MockMatchingUsecase) {
				m.EXPECT().SubmitOrder(gomock.Any(), gomock.Any()).
					Return(nil, errors.NewValidationError("price must be greater than zero", "price"))
			},
			assertFn: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name:  "invariant violation is skipped",
			value: valid,
			mockFn: func(m *orderMock.MockMatchingUsecase) {
				m.EXPECT().SubmitOrder(gomock.Any(), gomock.Any()).
					Return(nil, errors.NewInvariantError("eligible order x is inactive"))
			},
			assertFn: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name:  "conflict is retried",
			value: valid,
			mockFn: func(m *orderMock.MockMatchingUsecase) {
				m.EXPECT().SubmitOrder(gomock.Any(), gomock.Any()).
					Return(nil, errors.NewConflictError(context.DeadlineExceeded))
			},
			assertFn: func(t *testing.T, err error) {
				assert.True(t, errors.HasCode(err, errors.ConcurrencyConflictError))
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			matching := orderMock.NewMockMatchingUsecase(ctrl)
			tc.mockFn(matching)

			c := &OrderConsumer{reader: &fakeReader{}, matching: matching, logger: logger.NewNop()}
			tc.assertFn(t, c.Handle(context.Background(), message(7, tc.value)))
		})
	}
}

func TestOrderConsumer_StartCommitsInOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	reader := &fakeReader{queue: []kafka.Message{
		message(1, `{"user_id":"alice","order_type":"BID","price":"10","quantity":1}`),
		message(2, `not json`),
		message(3, `{"user_id":"bob","order_type":"ASK","price":"10","quantity":1}`),
	}}

	matching := orderMock.NewMockMatchingUsecase(ctrl)
	gomock.InOrder(
		matching.EXPECT().SubmitOrder(gomock.Any(), gomock.Any()).Return(result("o-1"), nil),
		matching.EXPECT().SubmitOrder(gomock.Any(), gomock.Any()).Return(nil, errors.NewConflictError(context.DeadlineExceeded)),
		matching.EXPECT().SubmitOrder(gomock.Any(), gomock.Any()).Return(result("o-3"), nil),
	)

	c := &OrderConsumer{reader: reader, matching: matching, logger: logger.NewNop(), backoff: time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	require.Eventually(t, func() bool { return len(reader.commits()) == 3 }, time.Second, time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, []int64{1, 2, 3}, reader.commits())

	require.NoError(t, c.Stop())
	assert.True(t, reader.closed)
}
