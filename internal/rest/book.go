package rest

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Satyam-Vyas/order-book/internal/domain/order"
	"github.com/Satyam-Vyas/order-book/pkg/logger"
)

// BookHandler serves the live book.
type BookHandler struct {
	book   order.BookUsecase
	logger logger.Interface
}

// NewBookHandler creates a new BookHandler.
func NewBookHandler(book order.BookUsecase, log logger.Interface) *BookHandler {
	return &BookHandler{
		book:   book,
		logger: log,
	}
}

// GetBook returns every active order, bids and asks in priority order.
func (h *BookHandler) GetBook(c *fiber.Ctx) error {
	book, err := h.book.Snapshot(c.UserContext())
	if err != nil {
		h.logger.ErrorContext(c.UserContext(), err, logger.NewField("action", "get_book"))
		return writeError(c, err)
	}
	return c.JSON(book)
}

// GetDepth returns the book aggregated by price level.
func (h *BookHandler) GetDepth(c *fiber.Ctx) error {
	depth, err := h.book.Depth(c.UserContext())
	if err != nil {
		h.logger.ErrorContext(c.UserContext(), err, logger.NewField("action", "get_depth"))
		return writeError(c, err)
	}
	return c.JSON(depth)
}
