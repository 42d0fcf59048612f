package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orderMock "github.com/Satyam-Vyas/order-book/internal/domain/order/mock"
	orderv1 "github.com/Satyam-Vyas/order-book/internal/domain/order/v1"
	"github.com/Satyam-Vyas/order-book/pkg/errors"
	"github.com/Satyam-Vyas/order-book/pkg/logger"
	loggerMock "github.com/Satyam-Vyas/order-book/pkg/logger/mock"
	"github.com/Satyam-Vyas/order-book/pkg/util"
)

var at = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

type mocks struct {
	matching *orderMock.MockMatchingUsecase
	book     *orderMock.MockBookUsecase
	trade    *orderMock.MockTradeUsecase
	logger   *loggerMock.MockInterface
}

func newTestApp(t *testing.T) (*fiber.App, *mocks) {
	t.Helper()
	ctrl := gomock.NewController(t)

	m := &mocks{
		matching: orderMock.NewMockMatchingUsecase(ctrl),
		book:     orderMock.NewMockBookUsecase(ctrl),
		trade:    orderMock.NewMockTradeUsecase(ctrl),
		logger:   loggerMock.NewMockInterface(ctrl),
	}

	app := fiber.New()
	app.Use(RequestContext())
	RegisterRoutes(app, &Handlers{
		Order: NewOrderHandler(m.matching, m.book, m.logger),
		Book:  NewBookHandler(m.book, m.logger),
		Trade: NewTradeHandler(m.trade, 24*time.Hour, m.logger),
	})
	return app, m
}

func do(t *testing.T, app *fiber.App, method, target, body string, headers map[string]string) (int, map[string]any, map[string][]string) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out, resp.Header
}

func matchedResult() *orderv1.SubmitResult {
	incoming := orderv1.NewOrder("01HBID", "alice", orderv1.SideBid, decimal.RequireFromString("100.50"), 5, at)
	maker := orderv1.NewOrder("01HASK", "bob", orderv1.SideAsk, decimal.RequireFromString("100.00"), 2, at)
	trade := orderv1.NewTrade("01HTRADE", incoming, maker, 2, at)
	_ = incoming.Fill(2)
	return &orderv1.SubmitResult{Order: incoming, Trades: []*orderv1.Trade{trade}}
}

func TestOrderHandler_PlaceOrder(t *testing.T) {
	owner := map[string]string{OwnerHeader: "alice"}
	validBody := `{"order_type":"bid","price":"100.50","quantity":5}`

	testCases := []struct {
		name     string
		body     string
		headers  map[string]string
		mockFn   func(m *mocks)
		assertFn func(t *testing.T, status int, body map[string]any)
	}{
		{
			name:    "created with trades and book",
			body:    validBody,
			headers: owner,
			mockFn: func(m *mocks) {
				m.matching.EXPECT().SubmitOrder(gomock.Any(), gomock.Any()).
					DoAndReturn(func(ctx context.Context, req *orderv1.PlaceOrderRequest) (*orderv1.SubmitResult, error) {
						assert.Equal(t, "alice", req.Owner)
						assert.Equal(t, orderv1.SideBid, req.Side)
						assert.True(t, decimal.RequireFromString("100.5").Equal(req.Price))
						assert.Equal(t, int64(5), req.Quantity)
						assert.NotEmpty(t, util.GetRequestID(ctx))
						return matchedResult(), nil
					})
				m.book.EXPECT().Snapshot(gomock.Any()).Return(orderv1.NewBook(nil, nil, at), nil)
			},
			assertFn: func(t *testing.T, status int, body map[string]any) {
				assert.Equal(t, fiber.StatusCreated, status)
				assert.Equal(t, "Order placed successfully", body["message"])
				assert.Equal(t, "01HBID", body["order_id"])
				trades := body["trades"].([]any)
				require.Len(t, trades, 1)
				assert.Equal(t, "100", trades[0].(map[string]any)["price"])
				assert.NotNil(t, body["order_book"])
			},
		},
		{
			name:    "numeric price",
			body:    `{"order_type":"ASK","price":99.5,"quantity":1}`,
			headers: owner,
			mockFn: func(m *mocks) {
				m.matching.EXPECT().SubmitOrder(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, req *orderv1.PlaceOrderRequest) (*orderv1.SubmitResult, error) {
						assert.Equal(t, orderv1.SideAsk, req.Side)
						assert.True(t, decimal.RequireFromString("99.50").Equal(req.Price))
						return matchedResult(), nil
					})
				m.book.EXPECT().Snapshot(gomock.Any()).Return(orderv1.NewBook(nil, nil, at), nil)
			},
			assertFn: func(t *testing.T, status int, body map[string]any) {
				assert.Equal(t, fiber.StatusCreated, status)
			},
		},
		{
			name:   "missing owner",
			body:   validBody,
			mockFn: func(m *mocks) {},
			assertFn: func(t *testing.T, status int, body map[string]any) {
				assert.Equal(t, fiber.StatusUnauthorized, status)
				assert.Equal(t, string(errors.GeneralUnauthorizedError), body["code"])
			},
		},
		{
			name:    "owner wider than the ledger column",
			body:    validBody,
			headers: map[string]string{OwnerHeader: strings.Repeat("x", orderv1.MaxOwnerLength+1)},
			mockFn: func(m *mocks) {
				m.matching.EXPECT().SubmitOrder(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, req *orderv1.PlaceOrderRequest) (*orderv1.SubmitResult, error) {
						return nil, req.Validate(decimal.Zero)
					})
			},
			assertFn: func(t *testing.T, status int, body map[string]any) {
				assert.Equal(t, fiber.StatusBadRequest, status)
				assert.Equal(t, string(errors.OrderValidationError), body["code"])
				assert.Contains(t, body["details"].(map[string]any), "owner")
			},
		},
		{
			name:    "malformed body",
			body:    `{"order_type":"BID","price":"1","quantity":1.5}`,
			headers: owner,
			mockFn:  func(m *mocks) {},
			assertFn: func(t *testing.T, status int, body map[string]any) {
				assert.Equal(t, fiber.StatusBadRequest, status)
				assert.Equal(t, string(errors.GeneralBadRequestError), body["code"])
			},
		},
		{
			name:    "validation failure lists fields",
			body:    `{"order_type":"HOLD","price":"-1","quantity":0}`,
			headers: owner,
			mockFn: func(m *mocks) {
				m.matching.EXPECT().SubmitOrder(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, req *orderv1.PlaceOrderRequest) (*orderv1.SubmitResult, error) {
						return nil, req.Validate(decimal.Zero)
					})
			},
			assertFn: func(t *testing.T, status int, body map[string]any) {
				assert.Equal(t, fiber.StatusBadRequest, status)
				assert.Equal(t, string(errors.OrderValidationError), body["code"])
				details := body["details"].(map[string]any)
				assert.Contains(t, details, "order_type")
				assert.Contains(t, details, "price")
				assert.Contains(t, details, "quantity")
			},
		},
		{
			name:    "conflict after retries",
			body:    validBody,
			headers: owner,
			mockFn: func(m *mocks) {
				m.matching.EXPECT().SubmitOrder(gomock.Any(), gomock.Any()).
					Return(nil, errors.NewConflictError(context.DeadlineExceeded))
			},
			assertFn: func(t *testing.T, status int, body map[string]any) {
				assert.Equal(t, fiber.StatusConflict, status)
				assert.Equal(t, string(errors.ConcurrencyConflictError), body["code"])
			},
		},
		{
			name:    "invariant violation is internal",
			body:    validBody,
			headers: owner,
			mockFn: func(m *mocks) {
				m.matching.EXPECT().SubmitOrder(gomock.Any(), gomock.Any()).
					Return(nil, errors.NewInvariantError("eligible order x is inactive"))
			},
			assertFn: func(t *testing.T, status int, body map[string]any) {
				assert.Equal(t, fiber.StatusInternalServerError, status)
				assert.Equal(t, "internal server error", body["error"])
			},
		},
		{
			name:    "snapshot failure still reports the order",
			body:    validBody,
			headers: owner,
			mockFn: func(m *mocks) {
				m.matching.EXPECT().SubmitOrder(gomock.Any(), gomock.Any()).Return(matchedResult(), nil)
				m.book.EXPECT().Snapshot(gomock.Any()).Return(nil, errors.NewTracer("ledger down"))
				m.logger.EXPECT().ErrorContext(gomock.Any(), gomock.Any(),
					logger.NewField("action", "snapshot_after_submit"),
					logger.NewField("order_id", "01HBID"),
				)
			},
			assertFn: func(t *testing.T, status int, body map[string]any) {
				assert.Equal(t, fiber.StatusCreated, status)
				assert.Nil(t, body["order_book"])
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			app, m := newTestApp(t)
			tc.mockFn(m)

			status, body, _ := do(t, app, fiber.MethodPost, "/api/v1/orders", tc.body, tc.headers)
			tc.assertFn(t, status, body)
		})
	}
}

func TestBookHandler(t *testing.T) {
	bid := orderv1.NewOrder("b1", "alice", orderv1.SideBid, decimal.RequireFromString("10"), 3, at)
	book := orderv1.NewBook([]*orderv1.Order{bid}, nil, at)

	t.Run("book", func(t *testing.T) {
		app, m := newTestApp(t)
		m.book.EXPECT().Snapshot(gomock.Any()).Return(book, nil)

		status, body, _ := do(t, app, fiber.MethodGet, "/api/v1/orderbook", "", nil)
		assert.Equal(t, fiber.StatusOK, status)
		assert.Len(t, body["bids"], 1)
		assert.Empty(t, body["asks"])
	})

	t.Run("depth", func(t *testing.T) {
		app, m := newTestApp(t)
		m.book.EXPECT().Depth(gomock.Any()).Return(book.Depth(), nil)

		status, body, _ := do(t, app, fiber.MethodGet, "/api/v1/orderbook/depth", "", nil)
		assert.Equal(t, fiber.StatusOK, status)
		level := body["bids"].([]any)[0].(map[string]any)
		assert.Equal(t, float64(3), level["total_quantity"])
	})

	t.Run("ledger failure", func(t *testing.T) {
		app, m := newTestApp(t)
		m.book.EXPECT().Snapshot(gomock.Any()).Return(nil, errors.NewTracer("ledger down"))
		m.logger.EXPECT().ErrorContext(gomock.Any(), gomock.Any(), logger.NewField("action", "get_book"))

		status, _, _ := do(t, app, fiber.MethodGet, "/api/v1/orderbook", "", nil)
		assert.Equal(t, fiber.StatusInternalServerError, status)
	})
}

func TestTradeHandler_GetTrades(t *testing.T) {
	testCases := []struct {
		name     string
		query    string
		mockFn   func(m *mocks)
		assertFn func(t *testing.T, status int, body map[string]any)
	}{
		{
			name:  "default window",
			query: "",
			mockFn: func(m *mocks) {
				m.trade.EXPECT().Recent(gomock.Any(), time.Duration(0)).Return([]*orderv1.Trade{}, nil)
			},
			assertFn: func(t *testing.T, status int, body map[string]any) {
				assert.Equal(t, fiber.StatusOK, status)
				assert.Equal(t, "24h0m0s", body["window"])
				assert.Empty(t, body["trades"])
			},
		},
		{
			name:  "explicit window",
			query: "?window=90m",
			mockFn: func(m *mocks) {
				m.trade.EXPECT().Recent(gomock.Any(), 90*time.Minute).Return([]*orderv1.Trade{{ID: "t-1"}}, nil)
			},
			assertFn: func(t *testing.T, status int, body map[string]any) {
				assert.Equal(t, fiber.StatusOK, status)
				assert.Equal(t, "1h30m0s", body["window"])
				assert.Len(t, body["trades"], 1)
			},
		},
		{
			name:   "unparseable window",
			query:  "?window=yesterday",
			mockFn: func(m *mocks) {},
			assertFn: func(t *testing.T, status int, body map[string]any) {
				assert.Equal(t, fiber.StatusBadRequest, status)
			},
		},
		{
			name:  "negative window",
			query: "?window=-1h",
			mockFn: func(m *mocks) {
				m.trade.EXPECT().Recent(gomock.Any(), -time.Hour).
					Return(nil, errors.NewValidationError("window must not be negative", "window"))
			},
			assertFn: func(t *testing.T, status int, body map[string]any) {
				assert.Equal(t, fiber.StatusBadRequest, status)
				assert.Contains(t, body["details"], "window")
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			app, m := newTestApp(t)
			tc.mockFn(m)

			status, body, _ := do(t, app, fiber.MethodGet, "/api/v1/trades"+tc.query, "", nil)
			tc.assertFn(t, status, body)
		})
	}
}

type observed struct {
	method, route string
	status        int
}

type recordingObserver struct {
	calls []observed
}

func (r *recordingObserver) ObserveHTTP(method, route string, status int, _ time.Duration) {
	r.calls = append(r.calls, observed{method, route, status})
}

func TestMiddleware(t *testing.T) {
	obs := &recordingObserver{}

	app := fiber.New()
	app.Use(RequestContext(), Metrics(obs))
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		return c.SendString(util.GetOwner(c.UserContext()) + "/" + util.GetRequestID(c.UserContext()))
	})

	req := httptest.NewRequest(fiber.MethodGet, "/items/7", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	req.Header.Set(OwnerHeader, " carol ")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, "carol/req-1", string(raw))
	assert.Equal(t, "req-1", resp.Header.Get(RequestIDHeader))
	require.Len(t, obs.calls, 1)
	assert.Equal(t, observed{"GET", "/items/:id", 200}, obs.calls[0])
}
