// Package rest is the HTTP transport of the order book.
package rest

import "github.com/gofiber/fiber/v2"

// OwnerHeader carries the submitting identity. Authentication happens upstream.
const OwnerHeader = "X-User-ID"

// Handlers groups every route handler.
type Handlers struct {
	Order *OrderHandler
	Book  *BookHandler
	Trade *TradeHandler
}

// RegisterRoutes mounts the v1 API on router.
func RegisterRoutes(router fiber.Router, h *Handlers) {
	v1 := router.Group("/api/v1")

	v1.Post("/orders", h.Order.PlaceOrder)
	v1.Get("/orderbook", h.Book.GetBook)
	v1.Get("/orderbook/depth", h.Book.GetDepth)
	v1.Get("/trades", h.Trade.GetTrades)
}
