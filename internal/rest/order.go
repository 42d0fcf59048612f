package rest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/Satyam-Vyas/order-book/internal/domain/order"
	orderv1 "github.com/Satyam-Vyas/order-book/internal/domain/order/v1"
	"github.com/Satyam-Vyas/order-book/pkg/errors"
	"github.com/Satyam-Vyas/order-book/pkg/logger"
	"github.com/Satyam-Vyas/order-book/pkg/util"
)

// PlaceOrderBody is the JSON body of POST /orders. Price accepts a JSON
// string or number.
type PlaceOrderBody struct {
	OrderType string          `json:"order_type"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
}

// PlaceOrderResponse is returned with 201.
type PlaceOrderResponse struct {
	Message   string           `json:"message"`
	OrderID   string           `json:"order_id"`
	Order     *orderv1.Order   `json:"order"`
	Trades    []*orderv1.Trade `json:"trades"`
	OrderBook *orderv1.Book    `json:"order_book"`
}

// OrderHandler serves order submission.
type OrderHandler struct {
	matching order.MatchingUsecase
	book     order.BookUsecase
	logger   logger.Interface
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(matching order.MatchingUsecase, book order.BookUsecase, log logger.Interface) *OrderHandler {
	return &OrderHandler{
		matching: matching,
		book:     book,
		logger:   log,
	}
}

// PlaceOrder submits a limit order on behalf of the caller.
func (h *OrderHandler) PlaceOrder(c *fiber.Ctx) error {
	ctx := c.UserContext()

	owner := util.GetOwner(ctx)
	if owner == "" {
		return writeError(c, errors.NewErrorDetails("missing "+OwnerHeader+" header", string(errors.GeneralUnauthorizedError), "owner"))
	}

	var body PlaceOrderBody
	if err := c.BodyParser(&body); err != nil {
		return writeError(c, badRequest("malformed order body", "body"))
	}

	side, _ := orderv1.ParseSide(body.OrderType)
	result, err := h.matching.SubmitOrder(ctx, &orderv1.PlaceOrderRequest{
		Owner:    owner,
		Side:     side,
		Price:    body.Price,
		Quantity: body.Quantity,
	})
	if err != nil {
		return writeError(c, err)
	}

	book, err := h.book.Snapshot(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, err,
			logger.NewField("action", "snapshot_after_submit"),
			logger.NewField("order_id", result.Order.ID),
		)
	}

	return c.Status(fiber.StatusCreated).JSON(PlaceOrderResponse{
		Message:   "Order placed successfully",
		OrderID:   result.Order.ID,
		Order:     result.Order,
		Trades:    result.Trades,
		OrderBook: book,
	})
}
