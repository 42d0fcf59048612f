package rest

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Satyam-Vyas/order-book/internal/domain/order"
	orderv1 "github.com/Satyam-Vyas/order-book/internal/domain/order/v1"
	"github.com/Satyam-Vyas/order-book/pkg/errors"
	"github.com/Satyam-Vyas/order-book/pkg/logger"
)

// TradesResponse lists trades newest first.
type TradesResponse struct {
	Window string           `json:"window"`
	Trades []*orderv1.Trade `json:"trades"`
}

// TradeHandler serves the trade history.
type TradeHandler struct {
	trades        order.TradeUsecase
	defaultWindow time.Duration
	logger        logger.Interface
}

// NewTradeHandler creates a new TradeHandler. defaultWindow is only echoed
// back when the caller passes no window.
func NewTradeHandler(trades order.TradeUsecase, defaultWindow time.Duration, log logger.Interface) *TradeHandler {
	return &TradeHandler{
		trades:        trades,
		defaultWindow: defaultWindow,
		logger:        log,
	}
}

// GetTrades lists trades within ?window= (a Go duration such as 90m or 24h).
func (h *TradeHandler) GetTrades(c *fiber.Ctx) error {
	var window time.Duration
	if raw := c.Query("window"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return writeError(c, badRequest("window must be a duration such as 24h", "window"))
		}
		window = d
	}

	trades, err := h.trades.Recent(c.UserContext(), window)
	if err != nil {
		if !errors.HasCode(err, errors.OrderValidationError) {
			h.logger.ErrorContext(c.UserContext(), err, logger.NewField("action", "get_trades"))
		}
		return writeError(c, err)
	}

	if window == 0 {
		window = h.defaultWindow
	}
	return c.JSON(TradesResponse{
		Window: window.String(),
		Trades: trades,
	})
}
